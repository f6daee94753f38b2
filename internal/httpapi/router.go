package httpapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates the public API router. The rate limiter may be nil, in
// which case no limiting is applied.
func (h *Handler) NewRouter(limiter *RateLimiter) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	if limiter != nil {
		r.Use(limiter.Middleware)
	}

	r.Post("/validate", h.HandleValidate)
	r.Post("/boost/start", h.HandleStartBoost)
	r.Get("/boost/{id}/status", h.HandleBoostStatus)
	r.Post("/boost/{id}/stop", h.HandleStopBoost)

	return r
}
