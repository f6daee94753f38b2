package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
)

// NewRouter creates the admin router. All state-changing routes sit behind
// the session cookie and CSRF protection; the frontend sends the token in
// the X-CSRF-Token header. The page handlers are optional; they render the
// login form and key dashboard inside the same CSRF scope. loginLimiter,
// when non-nil, wraps the login endpoint to slow password guessing.
func (h *Handler) NewRouter(csrfSecret []byte, secureCookies bool, loginPage, dashboardPage http.HandlerFunc, loginLimiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recoverer)
	r.Use(csrf.Protect(csrfSecret,
		csrf.Secure(secureCookies),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
	))

	// Pages
	if loginPage != nil {
		r.Get("/login", loginPage)
	}
	if dashboardPage != nil {
		r.Get("/", dashboardPage)
	}

	// Login/logout (no session required to log in)
	if loginLimiter != nil {
		r.With(loginLimiter).Post("/login", h.HandleLogin)
	} else {
		r.Post("/login", h.HandleLogin)
	}
	r.Post("/logout", h.HandleLogout)

	// Key management API (session auth)
	r.Route("/api", func(r chi.Router) {
		r.Use(h.SessionMiddleware)

		r.Get("/keys", h.HandleListKeys)
		r.Post("/keys", h.HandleCreateKey)
		r.Post("/keys/{id}/toggle", h.HandleToggleKey)
		r.Delete("/keys/{id}", h.HandleDeleteKey)

		// Log level management
		r.Post("/loglevel", h.HandleSetLogLevel)
	})

	return r
}
