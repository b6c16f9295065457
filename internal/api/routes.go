package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/circleworks/beacon/internal/session"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler, sessions *session.Manager) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Session-scoped routes
		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(sessions))

			r.Get("/stats", h.Stats)
			r.Get("/geocode", h.Geocode)

			r.Route("/intents", func(r chi.Router) {
				r.Post("/", h.CreateIntent)
				r.Get("/", h.ListIntents)
				r.Get("/{id}", h.GetIntent)
				r.Patch("/{id}", h.EditIntent)
				r.Post("/{id}/contributions", h.Pledge)
				r.Post("/{id}/contributions/{cid}/receive", h.ReceiveContribution)
				r.Post("/{id}/complete", h.CompleteIntent)
				r.Post("/{id}/archive", h.ArchiveIntent)
			})
		})
	})

	return r
}
