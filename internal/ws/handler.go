package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"driftchat/internal/chat"
	"github.com/coder/websocket"
)

// Handler upgrades HTTP requests to WebSocket chat connections and
// pumps client events into the hub.
type Handler struct {
	hub           *chat.Hub
	cm            *ConnManager
	allowedOrigin string
	isDev         bool
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *chat.Hub, cm *ConnManager, allowedOrigin string, isDev bool) *Handler {
	return &Handler{
		hub:           hub,
		cm:            cm,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// clientMessage is the envelope for every client→server event. Fields
// beyond Type are event-specific; a payload that fails to decode into
// this shape is dropped at the boundary.
type clientMessage struct {
	Type string   `json:"type"`
	Tags []string `json:"tags,omitempty"`
	Text string   `json:"text,omitempty"`
}

// Client→server event names.
const (
	msgFindPartner = "find_partner"
	msgMessageSend = "message_send"
	msgTypingStart = "typing_start"
	msgTypingStop  = "typing_stop"
	msgChatEnd     = "chat_end"
)

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "ip", r.RemoteAddr)
		return
	}
	defer func() {
		if closeErr := conn.Close(websocket.StatusNormalClosure, "connection ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	id := h.hub.Register()
	h.cm.Register(id, conn)
	defer h.cm.Unregister(id)
	defer h.hub.Unregister(id)

	slog.Info("Chat connection established", "participant_id", id, "ip", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	h.readLoop(ctx, conn, id)
	slog.Info("Chat connection closed", "participant_id", id)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, id string) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "participant_id", id)
			} else {
				slog.Debug("WebSocket read error", "error", err, "participant_id", id)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			// Malformed payloads are dropped, never errored.
			slog.Debug("Dropping malformed client message", "participant_id", id)
			continue
		}

		switch msg.Type {
		case msgFindPartner:
			h.hub.FindPartner(id, msg.Tags)
		case msgMessageSend:
			h.hub.RelayMessage(id, msg.Text)
		case msgTypingStart:
			h.hub.RelayTyping(id, true)
		case msgTypingStop:
			h.hub.RelayTyping(id, false)
		case msgChatEnd:
			h.hub.EndSession(id, true)
		default:
			slog.Debug("Dropping unknown client event", "type", msg.Type, "participant_id", id)
		}
	}
}
