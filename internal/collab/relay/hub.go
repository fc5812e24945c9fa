// Package relay is a websocket fan-out server for collaboration updates.
//
// Clients join a room with the room query parameter. Every text message a
// client sends is forwarded to the other members of its room in arrival
// order, and the most recent messages are replayed to late joiners.
package relay

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Defaults for hub options.
const (
	DefaultRoom       = "default"
	DefaultBacklog    = 1024
	DefaultSendBuffer = 256
	writeWait         = 10 * time.Second
)

// Option configures a Hub.
type Option func(*Hub)

// WithBacklog sets how many messages per room are kept for late joiners.
// Zero disables replay.
func WithBacklog(n int) Option {
	return func(h *Hub) {
		if n >= 0 {
			h.backlog = n
		}
	}
}

// WithSendBuffer sets the per-connection outgoing queue size. Messages to
// a connection whose queue is full are dropped.
func WithSendBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithCheckOrigin sets the upgrader's origin check. By default every
// origin is accepted.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = fn
	}
}

type room struct {
	conns   map[*conn]struct{}
	backlog [][]byte
}

// Hub tracks rooms and relays messages between their members.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]*room
	closed bool

	upgrader   websocket.Upgrader
	backlog    int
	sendBuffer int
	logger     *zap.Logger

	relayed atomic.Uint64
	dropped atomic.Uint64
	invalid atomic.Uint64
}

// NewHub creates a hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		rooms:      make(map[string]*room),
		backlog:    DefaultBacklog,
		sendBuffer: DefaultSendBuffer,
		logger:     zap.NewNop(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(zap.String("component", "relay"))
	return h
}

// ServeHTTP upgrades the request and serves the connection until it
// closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("room")
	if name == "" {
		name = DefaultRoom
	}
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("upgrade failed", zap.Error(err))
		return
	}

	c := &conn{
		id:   uuid.NewString(),
		ws:   ws,
		room: name,
		send: make(chan []byte, h.sendBuffer+h.backlog),
	}
	if !h.join(c) {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "relay closed"),
			time.Now().Add(writeWait))
		ws.Close()
		return
	}
	h.logger.Debug("joined", zap.String("room", name), zap.String("conn", c.id))

	go c.writeLoop(h.logger)
	h.readLoop(c)
	h.leave(c)
	h.logger.Debug("left", zap.String("room", name), zap.String("conn", c.id))
}

// join registers c and queues the room backlog for it.
func (h *Hub) join(c *conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	rm, ok := h.rooms[c.room]
	if !ok {
		rm = &room{conns: make(map[*conn]struct{})}
		h.rooms[c.room] = rm
	}
	for _, msg := range rm.backlog {
		c.send <- msg
	}
	rm.conns[c] = struct{}{}
	return true
}

func (h *Hub) leave(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rm, ok := h.rooms[c.room]
	if !ok {
		return
	}
	if _, ok := rm.conns[c]; !ok {
		return
	}
	delete(rm.conns, c)
	close(c.send)
	if len(rm.conns) == 0 && len(rm.backlog) == 0 {
		delete(h.rooms, c.room)
	}
}

func (h *Hub) readLoop(c *conn) {
	for {
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("read failed", zap.String("conn", c.id), zap.Error(err))
			}
			return
		}
		if kind != websocket.TextMessage || !gjson.ValidBytes(data) {
			h.invalid.Add(1)
			h.logger.Debug("ignoring message", zap.String("conn", c.id), zap.Int("kind", kind))
			continue
		}
		h.broadcast(c, data)
	}
}

// broadcast records data in the room backlog and queues it for every
// other member.
func (h *Hub) broadcast(from *conn, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rm, ok := h.rooms[from.room]
	if !ok {
		return
	}
	if h.backlog > 0 {
		rm.backlog = append(rm.backlog, data)
		if excess := len(rm.backlog) - h.backlog; excess > 0 {
			rm.backlog = rm.backlog[excess:]
		}
	}
	h.relayed.Add(1)
	for c := range rm.conns {
		if c == from {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.dropped.Add(1)
			h.logger.Warn("send queue full, dropping message",
				zap.String("room", from.room),
				zap.String("conn", c.id))
		}
	}
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	var conns []*conn
	for _, rm := range h.rooms {
		for c := range rm.conns {
			conns = append(conns, c)
		}
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.ws.Close()
	}
	return nil
}

// RoomSize returns the number of clients in a room.
func (h *Hub) RoomSize(name string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if rm, ok := h.rooms[name]; ok {
		return len(rm.conns)
	}
	return 0
}

// Stats holds hub counters.
type Stats struct {
	Relayed uint64
	Dropped uint64
	Invalid uint64
}

// Stats returns a snapshot of the hub counters.
func (h *Hub) Stats() Stats {
	return Stats{
		Relayed: h.relayed.Load(),
		Dropped: h.dropped.Load(),
		Invalid: h.invalid.Load(),
	}
}

type conn struct {
	id   string
	ws   *websocket.Conn
	room string
	send chan []byte
}

func (c *conn) writeLoop(logger *zap.Logger) {
	defer c.ws.Close()
	for msg := range c.send {
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.Debug("write failed", zap.String("conn", c.id), zap.Error(err))
			return
		}
	}
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}
