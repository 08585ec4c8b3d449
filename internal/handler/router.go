package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig holds everything NewRouter mounts.
type RouterConfig struct {
	Handler        *Handler
	Contacts       *ContactHandler
	RateLimiter    *RateLimiter
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// NewRouter wires the middleware chain and routes. Health and metrics are
// outside the rate limiter so probes are never throttled.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(SecurityHeaders)
	r.Use(cfg.Handler.CORS)

	r.Get("/api/health", cfg.Handler.Health)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Middleware)
		}
		r.Get("/", cfg.Handler.Root)
		r.Get("/api/test", cfg.Handler.Test)
		r.Post("/api/contact", cfg.Contacts.Submit)
		r.Get("/api/contact", cfg.Contacts.List)
	})

	return r
}
