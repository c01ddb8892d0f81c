package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"payout-sync/internal/models"
)

// Stream states are returned as plain 200 documents even in the error
// phase: the phase is data, the same thing a stream subscriber sees.

func (s *Server) getPayouts(c *gin.Context) {
	c.JSON(http.StatusOK, s.core.Payouts.Current())
}

func (s *Server) refreshPayouts(c *gin.Context) {
	silent := c.Query("silent") == "true"

	ctx, cancel := s.ctx(c)
	defer cancel()

	s.core.RefreshPayouts(ctx, silent)
	c.JSON(http.StatusOK, s.core.Payouts.Current())
}

func (s *Server) getPayoutDetail(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_payout_id", "message": "payout id required"}})
		return
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	s.core.FetchDetail(ctx, id)
	c.JSON(http.StatusOK, s.core.Detail.Current())
}

func (s *Server) clearPayoutDetail(c *gin.Context) {
	s.core.ClearDetail()
	c.JSON(http.StatusOK, s.core.Detail.Current())
}

func (s *Server) getUser(c *gin.Context) {
	c.JSON(http.StatusOK, s.core.Profile.Current())
}

func (s *Server) refreshUser(c *gin.Context) {
	silent := c.Query("silent") == "true"

	ctx, cancel := s.ctx(c)
	defer cancel()

	s.core.RefreshProfile(ctx, silent)
	c.JSON(http.StatusOK, s.core.Profile.Current())
}

func (s *Server) getWidget(c *gin.Context) {
	ctx, cancel := s.ctx(c)
	defer cancel()

	c.JSON(http.StatusOK, s.widget.Summary(ctx))
}

type credentialRequest struct {
	AccessToken *string `json:"access_token"`
}

func (s *Server) setCredential(c *gin.Context) {
	var req credentialRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AccessToken == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_body", "message": "access_token field required"}})
		return
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	if err := s.core.SetCredential(ctx, strings.TrimSpace(*req.AccessToken)); err != nil {
		s.log.Error("credential_save_failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "storage_error", "message": "failed to persist credential"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) clearCredential(c *gin.Context) {
	ctx, cancel := s.ctx(c)
	defer cancel()

	if err := s.core.ClearCredential(ctx); err != nil {
		s.log.Error("credential_clear_failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "storage_error", "message": "failed to clear credential"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type intervalRequest struct {
	// null or absent means manual refresh only
	Minutes *int64 `json:"minutes"`
}

func (s *Server) setInterval(c *gin.Context) {
	var req intervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_body", "message": "body must be json"}})
		return
	}

	iv := models.IntervalFromMinutes(req.Minutes)

	ctx, cancel := s.ctx(c)
	defer cancel()

	if err := s.core.SetInterval(ctx, iv); err != nil {
		s.log.Error("interval_save_failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "storage_error", "message": "failed to persist interval"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"interval": iv.String(), "minutes": iv.Minutes, "timer_armed": s.core.TimerArmed()})
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := s.ctx(c)
	defer cancel()

	dbStatus := "connected"
	if err := s.db.Pool.Ping(ctx); err != nil {
		dbStatus = "unreachable"
	}
	redisStatus := "connected"
	if err := s.redis.Ping(ctx); err != nil {
		redisStatus = "unreachable"
	}

	status := http.StatusOK
	overall := "healthy"
	if dbStatus != "connected" || redisStatus != "connected" {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status":           overall,
		"database":         dbStatus,
		"redis":            redisStatus,
		"timer_armed":      s.core.TimerArmed(),
		"stream_consumers": s.hub.ClientCount(),
	})
}
