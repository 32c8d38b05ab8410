package server

import (
	"net/http"

	"github.com/cloo-solutions/inbox/internal/api/handlers"
	"github.com/cloo-solutions/inbox/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes int64 = 5 * 1024 * 1024

type RouterConfig struct {
	// APIToken enables bearer auth on /api when set.
	APIToken      string
	ItemHandler   *handlers.ItemHandler
	QueryHandler  *handlers.QueryHandler
	HealthHandler *handlers.HealthHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)

	r.Get("/health", cfg.HealthHandler.Health)
	r.Get("/health/provider", cfg.HealthHandler.Provider)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.BearerToken(cfg.APIToken))
		r.Use(middleware.MaxBodyBytes(maxBodyBytes))

		r.Post("/ingest", cfg.ItemHandler.Ingest)
		r.Post("/query", cfg.QueryHandler.Query)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", cfg.ItemHandler.List)
			r.Get("/{id}", cfg.ItemHandler.Get)
			r.Patch("/{id}", cfg.ItemHandler.Update)
			r.Delete("/{id}", cfg.ItemHandler.Delete)
			r.Get("/{id}/snapshot", cfg.ItemHandler.Snapshot)
		})
	})

	return r
}
