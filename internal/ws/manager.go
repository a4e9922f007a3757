// Package ws provides the WebSocket transport for the chat core.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"driftchat/internal/chat"
	"github.com/coder/websocket"
)

const (
	sendQueueSize = 32
	writeTimeout  = 10 * time.Second
)

// ConnManager tracks active WebSocket connections and implements
// chat.Emitter. Delivery is best-effort: events to unknown ids are
// dropped, and a connection whose outbound queue is full loses the
// event rather than stalling the hub.
type ConnManager struct {
	mu    sync.RWMutex
	conns map[string]*conn
}

type conn struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// NewConnManager creates an empty connection manager.
func NewConnManager() *ConnManager {
	return &ConnManager{conns: make(map[string]*conn)}
}

// Register adds a connection for id and starts its writer goroutine.
func (m *ConnManager) Register(id string, ws *websocket.Conn) {
	c := &conn{
		ws:   ws,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}

	m.mu.Lock()
	if existing, ok := m.conns[id]; ok {
		existing.stop()
	}
	m.conns[id] = c
	m.mu.Unlock()

	go c.writeLoop(id)
	slog.Debug("Connection registered", "participant_id", id)
}

// Unregister removes the connection for id and stops its writer.
func (m *ConnManager) Unregister(id string) {
	m.mu.Lock()
	c, ok := m.conns[id]
	if ok {
		delete(m.conns, id)
	}
	m.mu.Unlock()

	if ok {
		c.stop()
		slog.Debug("Connection unregistered", "participant_id", id)
	}
}

// Emit marshals the event and queues it for delivery to id. It never
// blocks: unknown ids and full queues drop the event.
func (m *ConnManager) Emit(id string, event chat.Event) {
	m.mu.RLock()
	c, ok := m.conns[id]
	m.mu.RUnlock()
	if !ok {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal event", "error", err, "participant_id", id)
		return
	}

	select {
	case <-c.done:
	case c.send <- data:
	default:
		slog.Debug("Outbound queue full, dropping event", "participant_id", id)
	}
}

func (c *conn) stop() {
	c.once.Do(func() { close(c.done) })
}

func (c *conn) writeLoop(id string) {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := c.ws.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				// Expected when the client disconnects mid-send; the
				// read loop handles the teardown.
				slog.Debug("WebSocket write error", "error", err, "participant_id", id)
				return
			}
		}
	}
}
