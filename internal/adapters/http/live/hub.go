// Package live pushes dashboard state to websocket clients. The Hub is a
// render sink: every event list, view snapshot and status line the service
// emits is broadcast to all connected clients as a JSON message.
package live

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	service "github.com/okian/bassboard/internal/app"
	"github.com/okian/bassboard/internal/domain/model"
	"github.com/okian/bassboard/internal/domain/viewstate"
	"github.com/okian/bassboard/pkg/logger"
	"github.com/okian/bassboard/pkg/metrics"
)

// Message types.
const (
	TypeEvents = "events"
	TypeView   = "view"
	TypeStatus = "status"
)

var replayOrder = []string{TypeEvents, TypeView, TypeStatus}

// Default hub configuration constants.
const (
	defaultSendBuffer   = 16
	defaultPingInterval = 30 * time.Second
	writeWait           = 10 * time.Second
)

// Message is one frame sent to clients.
type Message struct {
	Type   string              `json:"type"`
	Events []model.Event       `json:"events,omitempty"`
	View   *viewstate.Snapshot `json:"view,omitempty"`
	Status *service.Status     `json:"status,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
	done chan struct{}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Hub fans messages out to websocket clients.
type Hub struct {
	upgrader     websocket.Upgrader
	sendBuffer   int
	pingInterval time.Duration
	logger       logger.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	// last frame of each type, replayed to new clients
	last   map[string][]byte
	closed bool
}

// New creates a hub.
func New(opts ...Option) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		sendBuffer:   defaultSendBuffer,
		pingInterval: defaultPingInterval,
		clients:      make(map[*client]struct{}),
		last:         make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get().Named("live")
	}
	return h
}

// Events implements service.Sink.
func (h *Hub) Events(events []model.Event) {
	if events == nil {
		events = []model.Event{}
	}
	h.broadcast(Message{Type: TypeEvents, Events: events})
}

// View implements service.Sink.
func (h *Hub) View(s viewstate.Snapshot) {
	h.broadcast(Message{Type: TypeView, View: &s})
}

// Status implements service.Sink.
func (h *Hub) Status(st service.Status) {
	h.broadcast(Message{Type: TypeStatus, Status: &st})
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcast never blocks: a client whose buffer is full is dropped.
func (h *Hub) broadcast(m Message) {
	frame, err := json.Marshal(m)
	if err != nil {
		h.logger.Error(context.Background(), "encoding live message failed",
			logger.String("type", m.Type), logger.Error(err))
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.last[m.Type] = frame
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	metrics.RecordLiveBroadcast()
	for _, c := range slow {
		h.logger.Warn(context.Background(), "dropping slow live client")
		h.unregister(c)
	}
}

// ServeHTTP upgrades the request and streams messages until the client goes
// away. The latest events, view and status are sent first.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	// room for the replayed frames so register never blocks
	c := &client{conn: conn, send: make(chan []byte, max(h.sendBuffer, len(replayOrder))), done: make(chan struct{})}
	if !h.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		c.close()
		return
	}
	defer h.unregister(c)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	for _, typ := range replayOrder {
		if frame, ok := h.last[typ]; ok {
			c.send <- frame
		}
	}
	h.clients[c] = struct{}{}
	metrics.UpdateLiveClients(len(h.clients))
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		metrics.UpdateLiveClients(len(h.clients))
	}
	h.mu.Unlock()
	c.close()
}

// readPump drains client frames so control messages are processed.
func (h *Hub) readPump(c *client) {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.unregister(c)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				h.unregister(c)
				return
			}
		}
	}
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*client]struct{})
	metrics.UpdateLiveClients(0)
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		c.close()
	}
}
