package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"payout-sync/internal/config"
	"payout-sync/internal/core"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingPeriod   = 30 * time.Second
	wsSendBuffer   = 32
)

// streamEvent is one pushed state publication.
type streamEvent struct {
	Stream string `json:"stream"`
	State  any    `json:"state"`
}

// Hub forwards every core stream publication to all connected
// websocket consumers. A slow consumer gets events dropped, never
// blocking the forwarder; the latest state is always re-readable over
// the plain endpoints.
type Hub struct {
	log      *slog.Logger
	core     *core.Core
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]struct{}

	stop chan struct{}
	done chan struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan streamEvent
}

func NewHub(log *slog.Logger, cfg config.Config, syncCore *core.Core) *Hub {
	origins := cfg.CORSOrigins
	return &Hub{
		log:  log,
		core: syncCore,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range origins {
					if origin == allowed || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		clients: make(map[*wsClient]struct{}),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Run forwards stream publications until Stop. Call in a goroutine or
// rely on it starting its own; it returns immediately.
func (h *Hub) Run() {
	go h.forward()
}

func (h *Hub) Stop() {
	close(h.stop)
	<-h.done

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		close(cl.send)
		delete(h.clients, cl)
	}
}

func (h *Hub) forward() {
	defer close(h.done)

	payouts, cancelPayouts := h.core.Payouts.Subscribe(wsSendBuffer)
	defer cancelPayouts()
	detail, cancelDetail := h.core.Detail.Subscribe(wsSendBuffer)
	defer cancelDetail()
	profile, cancelProfile := h.core.Profile.Subscribe(wsSendBuffer)
	defer cancelProfile()
	interval, cancelInterval := h.core.Interval.Subscribe(wsSendBuffer)
	defer cancelInterval()

	for {
		select {
		case <-h.stop:
			return
		case state := <-payouts:
			h.broadcast(streamEvent{Stream: "payouts", State: state})
		case state := <-detail:
			h.broadcast(streamEvent{Stream: "detail", State: state})
		case state := <-profile:
			h.broadcast(streamEvent{Stream: "profile", State: state})
		case iv := <-interval:
			h.broadcast(streamEvent{Stream: "interval", State: gin.H{"interval": iv.String(), "minutes": iv.Minutes}})
		}
	}
}

func (h *Hub) broadcast(ev streamEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for cl := range h.clients {
		select {
		case cl.send <- ev:
		default:
			// consumer too slow; drop the event
		}
	}
}

// ClientCount reports connected stream consumers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Serve upgrades the request and streams state publications until the
// consumer disconnects. The current state of every stream is sent
// first so a fresh consumer never starts blind.
func (h *Hub) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws_upgrade_failed", "error", err, "client_ip", c.ClientIP())
		return
	}

	cl := &wsClient{
		conn: conn,
		send: make(chan streamEvent, wsSendBuffer),
	}

	// snapshot before registration so the snapshot always precedes
	// live publications on the wire
	snapshot := []streamEvent{
		{Stream: "payouts", State: h.core.Payouts.Current()},
		{Stream: "detail", State: h.core.Detail.Current()},
		{Stream: "profile", State: h.core.Profile.Current()},
	}
	for _, ev := range snapshot {
		cl.send <- ev
	}

	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
	h.log.Info("ws_client_connected", "client_ip", c.ClientIP(), "total", h.ClientCount())

	go h.writeLoop(cl)
	go h.readLoop(cl)
}

func (h *Hub) writeLoop(cl *wsClient) {
	ping := time.NewTicker(wsPingPeriod)
	defer func() {
		ping.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if !ok {
				cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ping.C:
			cl.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop only watches for disconnect; consumers send nothing.
func (h *Hub) readLoop(cl *wsClient) {
	defer h.drop(cl)

	cl.conn.SetReadLimit(512)
	cl.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	cl.conn.SetPongHandler(func(string) error {
		cl.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		return nil
	})

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(cl *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
	h.mu.Unlock()
	cl.conn.Close()
	h.log.Info("ws_client_disconnected", "total", h.ClientCount())
}
