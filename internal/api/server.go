package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"payout-sync/internal/config"
	"payout-sync/internal/core"
	"payout-sync/internal/db"
	"payout-sync/internal/redis"
	"payout-sync/internal/security"
	"payout-sync/internal/widget"
)

type Server struct {
	log     *slog.Logger
	cfg     config.Config
	db      *db.DB
	redis   *redis.Client
	core    *core.Core
	widget  *widget.Provider
	limiter *security.LimiterStore
	hub     *Hub
	router  *gin.Engine
}

func NewServer(log *slog.Logger, cfg config.Config, dbConn *db.DB, redisClient *redis.Client, syncCore *core.Core, widgetProvider *widget.Provider) *Server {
	s := &Server{
		log:     log,
		cfg:     cfg,
		db:      dbConn,
		redis:   redisClient,
		core:    syncCore,
		widget:  widgetProvider,
		limiter: security.NewLimiterStore(rate.Limit(2), 60, 10*time.Minute),
		hub:     NewHub(log, cfg, syncCore),
		router:  gin.New(),
	}

	gin.SetMode(gin.ReleaseMode)
	r := s.router
	r.Use(gin.Recovery())
	r.Use(s.corsMiddleware())
	r.Use(s.loggingMiddleware())
	r.Use(s.inputValidationMiddleware())
	r.Use(s.rateLimitMiddleware())

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/payouts", s.getPayouts)
		v1.POST("/payouts/refresh", s.refreshPayouts)
		v1.GET("/payouts/:id", s.getPayoutDetail)
		v1.DELETE("/payouts/detail", s.clearPayoutDetail)
		v1.GET("/user", s.getUser)
		v1.POST("/user/refresh", s.refreshUser)
		v1.GET("/widget", s.getWidget)
		v1.GET("/stream", s.hub.Serve)
		v1.GET("/health", s.health)

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(s.adminAuthMiddleware())
		{
			admin.PUT("/credential", s.setCredential)
			admin.DELETE("/credential", s.clearCredential)
			admin.PUT("/interval", s.setInterval)
		}
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	return s
}

// Start runs the websocket hub's stream forwarder.
func (s *Server) Start() {
	s.hub.Run()
}

// Stop closes the hub and all connected stream consumers.
func (s *Server) Stop() {
	s.hub.Stop()
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 60*time.Second)
}
