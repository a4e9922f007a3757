package api

import (
	"log/slog"
	"net/http"

	"driftchat/internal/chat"
	"driftchat/internal/store"
	"github.com/go-chi/chi/v5"
)

// StatsHandler serves the polling endpoint for participant counts.
type StatsHandler struct {
	hub  *chat.Hub
	repo store.Repository
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(hub *chat.Hub, repo store.Repository) *StatsHandler {
	return &StatsHandler{hub: hub, repo: repo}
}

// statsResponse combines the live snapshot with lifetime totals.
type statsResponse struct {
	chat.Stats
	Totals *store.Totals `json:"totals,omitempty"`
}

// Stats returns the current counts, independent of the event channel.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{Stats: h.hub.Snapshot()}

	totals, err := h.repo.Totals(r.Context())
	if err != nil {
		// Live counts are the contract; lifetime totals are best-effort.
		slog.Warn("Failed to load lifetime totals", "error", err)
	} else {
		resp.Totals = &totals
	}

	JSON(w, http.StatusOK, resp)
}

// RegisterRoutes registers stats routes.
func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", h.Stats)
	})
}
