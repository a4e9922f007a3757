package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"driftchat/internal/chat"
	"github.com/coder/websocket"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cm := NewConnManager()
	hub := chat.NewHub(cm, nil, chat.Options{
		MaxMessageLength:     500,
		MaxMessagesPerMinute: 60,
	})
	srv := httptest.NewServer(NewHandler(hub, cm, "*", true))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close(websocket.StatusNormalClosure, "test done")
	})
	return conn
}

func sendJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
}

// readUntil skips interleaved events (stats broadcasts, typing) until
// one with the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, eventType string) map[string]any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("Read failed waiting for %q: %v", eventType, err)
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Failed to decode server event: %v", err)
		}
		if msg["type"] == eventType {
			return msg
		}
	}
}

func TestPairAndRelayEndToEnd(t *testing.T) {
	srv := newTestServer(t)

	c1 := dial(t, srv)

	// No partner yet: message bounces with an error.
	sendJSON(t, c1, map[string]any{"type": "message_send", "text": "anyone?"})
	readUntil(t, c1, chat.EventErrNoPartner)

	sendJSON(t, c1, map[string]any{"type": "find_partner"})
	readUntil(t, c1, chat.EventWaiting)

	c2 := dial(t, srv)
	sendJSON(t, c2, map[string]any{"type": "find_partner", "tags": []string{"go"}})

	m1 := readUntil(t, c1, chat.EventMatched)
	m2 := readUntil(t, c2, chat.EventMatched)
	if m1["peerId"] == "" || m2["peerId"] == "" {
		t.Fatal("Expected peer display names in matched events")
	}

	sendJSON(t, c1, map[string]any{"type": "message_send", "text": "  hello  "})
	msg := readUntil(t, c2, chat.EventMessageReceive)
	if msg["text"] != "hello" {
		t.Errorf("Expected trimmed text %q, got %q", "hello", msg["text"])
	}

	sendJSON(t, c1, map[string]any{"type": "typing_start"})
	readUntil(t, c2, chat.EventTypingStart)
	sendJSON(t, c1, map[string]any{"type": "typing_stop"})
	readUntil(t, c2, chat.EventTypingStop)

	sendJSON(t, c2, map[string]any{"type": "chat_end"})
	readUntil(t, c1, chat.EventPartnerLeft)
}

func TestDisconnectNotifiesPartner(t *testing.T) {
	srv := newTestServer(t)

	c1 := dial(t, srv)
	c2 := dial(t, srv)
	sendJSON(t, c1, map[string]any{"type": "find_partner"})
	readUntil(t, c1, chat.EventWaiting)
	sendJSON(t, c2, map[string]any{"type": "find_partner"})
	readUntil(t, c1, chat.EventMatched)
	readUntil(t, c2, chat.EventMatched)

	if err := c2.Close(websocket.StatusNormalClosure, "bye"); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}

	readUntil(t, c1, chat.EventPartnerLeft)
}

func TestMalformedPayloadIsDropped(t *testing.T) {
	srv := newTestServer(t)

	c1 := dial(t, srv)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Non-JSON and wrongly-typed payloads must not kill the connection.
	if err := c1.Write(ctx, websocket.MessageText, []byte("not json")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if err := c1.Write(ctx, websocket.MessageText, []byte(`{"type":"message_send","text":42}`)); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	sendJSON(t, c1, map[string]any{"type": "find_partner"})
	readUntil(t, c1, chat.EventWaiting)
}
