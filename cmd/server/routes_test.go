package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"driftchat/internal/chat"
	"driftchat/internal/config"
	"driftchat/internal/store"
	"driftchat/internal/ws"
	"github.com/coder/websocket"
)

func newTestRouter(t *testing.T, apiRequestLimit int) http.Handler {
	t.Helper()

	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := repo.Close(); closeErr != nil {
			t.Errorf("Failed to close store: %v", closeErr)
		}
	})

	cm := ws.NewConnManager()
	hub := chat.NewHub(cm, store.NewRecorder(repo), chat.Options{
		MaxMessageLength:     500,
		MaxMessagesPerMinute: 60,
	})
	cfg := &config.Config{
		Port:                 "0",
		AllowedOrigin:        "*",
		DBPath:               "unused",
		MaxMessageLength:     500,
		MaxMessagesPerMinute: 60,
		StatsInterval:        5 * time.Second,
		APIRequestLimit:      apiRequestLimit,
	}
	return newRouter(cfg, hub, cm, repo)
}

func TestAPIUnaffectedByOpenChatConnections(t *testing.T) {
	// A single API slot: if chat connections counted against the
	// throttle, the open websocket below would pin it and every poll
	// would be rejected.
	srv := httptest.NewServer(newTestRouter(t, 1))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/chat", nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close(websocket.StatusNormalClosure, "test done")
	})

	for _, path := range []string{"/api/stats", "/api/health"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("Failed to close body: %v", closeErr)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: expected status 200 with a chat connection open, got %d", path, resp.StatusCode)
		}
	}
}

func TestFrontendServedAtRoot(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t, 100))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for frontend, got %d", resp.StatusCode)
	}
}
