package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/avelex/snipebot/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SnapshotPublisher receives each broadcast snapshot; used to mirror the
// stream onto redis for external consumers.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snap domain.StatusSnapshot) error
}

// Hub streams status snapshots to every connected WebSocket client at a
// fixed cadence. All clients see the same frames; there is no per-client
// subscription state.
type Hub struct {
	snapshots *Snapshotter
	interval  time.Duration
	publisher SnapshotPublisher // optional

	mu      sync.Mutex
	clients map[*wsClient]bool

	logger *slog.Logger
}

// NewHub creates the hub. publisher may be nil.
func NewHub(snapshots *Snapshotter, interval time.Duration, publisher SnapshotPublisher, logger *slog.Logger) *Hub {
	return &Hub{
		snapshots: snapshots,
		interval:  interval,
		publisher: publisher,
		clients:   make(map[*wsClient]bool),
		logger:    logger.With(slog.String("component", "ws_hub")),
	}
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Run broadcasts until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return ctx.Err()

		case <-ticker.C:
			h.broadcast(ctx)
		}
	}
}

func (h *Hub) broadcast(ctx context.Context) {
	snap := h.snapshots.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error("snapshot marshal failed", slog.String("error", err.Error()))
		return
	}

	if h.publisher != nil {
		if err := h.publisher.Publish(ctx, snap); err != nil {
			h.logger.Debug("snapshot publish failed", slog.String("error", err.Error()))
		}
	}

	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Slow client; skip this frame for it.
		}
	}
	h.mu.Unlock()
}

// HandleWS upgrades the request and registers the client.
// GET /ws
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, sendBufferSize)}

	// Queue the first frame before registering, so the client doesn't wait a
	// full interval and a concurrent shutdown can't close the channel under
	// us.
	if data, err := json.Marshal(h.snapshots.Snapshot()); err == nil {
		c.send <- data
	}

	h.mu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("ws client connected", slog.Int("total", total))

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) drop(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("ws client disconnected", slog.Int("total", total))
}

// readPump discards inbound frames; the stream is one-way. It exists to
// react to closes and keep the pong handler serviced.
func (h *Hub) readPump(c *wsClient) {
	defer func() {
		h.drop(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
