package main

import (
	"net/http"

	"driftchat/internal/api"
	"driftchat/internal/chat"
	"driftchat/internal/config"
	"driftchat/internal/middleware"
	"driftchat/internal/store"
	"driftchat/internal/ws"
	"driftchat/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// newRouter assembles the HTTP surface: throttled API routes, the
// WebSocket endpoint, and the embedded frontend.
//
// The throttle is scoped to the API subtree only. A chat connection
// stays in-flight for its entire lifetime, so counting it against the
// throttle would let long-lived chatters starve stats and health
// polling.
func newRouter(cfg *config.Config, hub *chat.Hub, cm *ws.ConnManager, repo store.Repository) http.Handler {
	wsHandler := ws.NewHandler(hub, cm, cfg.AllowedOrigin, cfg.IsDevelopment())
	statsHandler := api.NewStatsHandler(hub, repo)
	healthHandler := api.NewHealthHandler(repo)

	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{cfg.AllowedOrigin}))
	r.Use(middleware.SecurityHeaders())

	// API routes, bounded in-flight.
	r.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Throttle(cfg.APIRequestLimit))
		healthHandler.RegisterHealth(r)
		statsHandler.RegisterRoutes(r)
	})

	// WebSocket endpoint.
	r.Get("/ws/chat", wsHandler.ServeHTTP)

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	return r
}
