package stream

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/solstrike/chipgate/internal/pkg/logger"
)

// Event is the wire frame pushed to subscribers.
type Event struct {
	Type      string         `json:"type"`
	Fields    map[string]any `json:"fields,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Hub fans trade, reserve and reward events out to websocket subscribers.
// Session-ledger consumers reconcile off-platform chip balances from this feed.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Publish sends an event to every connected subscriber. Slow subscribers
// are dropped rather than allowed to stall the trade path.
func (h *Hub) Publish(event string, fields map[string]any) {
	ev := Event{
		Type:      event,
		Fields:    fields,
		Timestamp: time.Now().UTC(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			go h.remove(c)
		}
	}
}

// Handler upgrades GET /v1/stream to a websocket subscription.
func (h *Hub) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "error", err, "client_ip", c.ClientIP())
			return
		}

		cl := &client{
			conn: conn,
			send: make(chan Event, 64),
		}

		h.mu.Lock()
		h.clients[cl] = struct{}{}
		h.mu.Unlock()

		go h.writeLoop(cl)
		go h.readLoop(cl)
	}
}

func (h *Hub) writeLoop(c *client) {
	defer h.remove(c)
	for ev := range c.send {
		if err := c.conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

// readLoop drains control frames and detects closed peers.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}

// Close disconnects all subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		c.conn.Close()
	}
}
