package notify

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rafipicu1/bartertalco-sub000/internal/observability"
)

const writeWait = 10 * time.Second

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// client serializes writes; gorilla connections allow one concurrent writer.
type client struct {
	conn Conn
	mu   sync.Mutex
}

func (c *client) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub keeps the open notification sockets of each user.
type Hub struct {
	users  map[uint64]map[Conn]*client
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		users:  make(map[uint64]map[Conn]*client),
		logger: logger.With("component", "ws_hub"),
	}
}

// Add registers a connection for userID.
func (h *Hub) Add(userID uint64, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[Conn]*client)
	}
	if _, ok := h.users[userID][conn]; ok {
		return
	}
	h.users[userID][conn] = &client{conn: conn}
	observability.IncWSActive()
}

// Remove drops a connection. Unknown connections are ignored.
func (h *Hub) Remove(userID uint64, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.users[userID]
	if !ok {
		return
	}
	if _, ok := conns[conn]; !ok {
		return
	}
	delete(conns, conn)
	observability.DecWSActive()
	if len(conns) == 0 {
		delete(h.users, userID)
	}
}

// Connected reports how many sockets userID has open.
func (h *Hub) Connected(userID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Push sends ev to every socket of userID and returns how many received it.
// A socket that fails a write is closed and removed.
func (h *Hub) Push(userID uint64, ev Event) int {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal ws event", "event_type", ev.Type, "err", err)
		return 0
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.users[userID]))
	for _, c := range h.users[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if err := c.write(payload); err != nil {
			h.logger.Warn("websocket write error", "user_id", userID, "event_type", ev.Type, "err", err)
			_ = c.conn.Close()
			h.Remove(userID, c.conn)
			continue
		}
		delivered++
	}
	return delivered
}
