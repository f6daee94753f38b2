// Package web serves the server-rendered pages that drive the JSON API.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the HTML pages.
type Handler struct {
	templates *template.Template
	logger    *slog.Logger
}

// NewHandler parses the embedded templates and returns a page handler.
func NewHandler(logger *slog.Logger) (*Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Handler{
		templates: tmpl,
		logger:    logger,
	}, nil
}

// Routes returns the page routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleKeyEntry)
	r.Get("/boost", h.HandleBoostPanel)
	return r
}

// renderTemplate renders a content template inside the layout.
func (h *Handler) renderTemplate(w http.ResponseWriter, contentTemplate string, data map[string]any) error {
	if h.templates == nil {
		return fmt.Errorf("templates not loaded")
	}

	contentTmpl := h.templates.Lookup(contentTemplate)
	if contentTmpl == nil {
		return fmt.Errorf("template %s not found", contentTemplate)
	}

	contentBuf := &bytes.Buffer{}
	if err := contentTmpl.Execute(contentBuf, data); err != nil {
		return err
	}

	layoutData := map[string]any{
		"Title":        data["Title"],
		"RenderedHTML": template.HTML(contentBuf.String()),
	}

	return h.templates.ExecuteTemplate(w, "layout.html", layoutData)
}

// HandleKeyEntry shows the access key entry screen
// GET /
func (h *Handler) HandleKeyEntry(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title": "Enter Access Key",
	}

	if err := h.renderTemplate(w, "key_entry_content", data); err != nil {
		h.logger.Error("template error", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

// HandleBoostPanel shows the boost control screen
// GET /boost
func (h *Handler) HandleBoostPanel(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title": "Boost Control",
	}

	if err := h.renderTemplate(w, "boost_content", data); err != nil {
		h.logger.Error("template error", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

// HandleAdminLogin shows the admin login form
// GET /admin/login
func (h *Handler) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title":     "Admin Login",
		"CSRFField": csrf.TemplateField(r),
	}

	if err := h.renderTemplate(w, "admin_login_content", data); err != nil {
		h.logger.Error("template error", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

// HandleAdminDashboard shows the key management screen
// GET /admin
func (h *Handler) HandleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title":     "Access Keys",
		"CSRFToken": csrf.Token(r),
	}

	if err := h.renderTemplate(w, "admin_keys_content", data); err != nil {
		h.logger.Error("template error", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}
