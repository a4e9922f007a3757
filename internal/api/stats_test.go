package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"driftchat/internal/chat"
	"driftchat/internal/store"
)

type fakeRepo struct {
	totals    store.Totals
	totalsErr error
	pingErr   error
}

func (f *fakeRepo) IncrChatsStarted(context.Context) error       { return nil }
func (f *fakeRepo) IncrMessagesRelayed(context.Context) error    { return nil }
func (f *fakeRepo) RecordPeakOnline(context.Context, int) error  { return nil }
func (f *fakeRepo) Totals(context.Context) (store.Totals, error) { return f.totals, f.totalsErr }
func (f *fakeRepo) Ping(context.Context) error                   { return f.pingErr }
func (f *fakeRepo) Close() error                                 { return nil }

type nopEmitter struct{}

func (nopEmitter) Emit(string, chat.Event) {}

func TestStatsEndpoint(t *testing.T) {
	hub := chat.NewHub(nopEmitter{}, nil, chat.Options{MaxMessageLength: 500, MaxMessagesPerMinute: 60})
	a := hub.Register()
	b := hub.Register()
	hub.FindPartner(a, nil)
	hub.FindPartner(b, nil)

	repo := &fakeRepo{totals: store.Totals{ChatsStarted: 7, MessagesRelayed: 42, PeakOnline: 3}}
	h := NewStatsHandler(hub, repo)

	w := httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var got struct {
		Online   int           `json:"online"`
		Waiting  int           `json:"waiting"`
		Chatting int           `json:"chatting"`
		Totals   *store.Totals `json:"totals"`
	}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got.Online != 2 || got.Waiting != 0 || got.Chatting != 2 {
		t.Errorf("Expected online=2 waiting=0 chatting=2, got %+v", got)
	}
	if got.Totals == nil || got.Totals.ChatsStarted != 7 {
		t.Errorf("Expected lifetime totals in response, got %+v", got.Totals)
	}
}

func TestStatsEndpointTotalsFailureIsNotFatal(t *testing.T) {
	hub := chat.NewHub(nopEmitter{}, nil, chat.Options{MaxMessageLength: 500, MaxMessagesPerMinute: 60})
	repo := &fakeRepo{totalsErr: errors.New("disk on fire")}
	h := NewStatsHandler(hub, repo)

	w := httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 without totals, got %d", w.Code)
	}

	var got map[string]any
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if _, ok := got["totals"]; ok {
		t.Error("Expected totals omitted on store failure")
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := NewHealthHandler(&fakeRepo{})

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestHealthEndpointDegraded(t *testing.T) {
	h := NewHealthHandler(&fakeRepo{pingErr: errors.New("locked")})

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}

	var got struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got.Status != "degraded" {
		t.Errorf("Expected degraded status, got %q", got.Status)
	}
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}
