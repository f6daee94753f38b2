package web

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/csrf"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	h, err := NewHandler(slog.New(slog.NewTextHandler(&strings.Builder{}, nil)))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	return h
}

func TestNewHandlerParsesTemplates(t *testing.T) {
	h := newTestHandler(t)
	if h.templates == nil {
		t.Fatal("expected parsed templates")
	}
	for _, name := range []string{"layout.html", "key_entry_content", "boost_content", "admin_login_content", "admin_keys_content"} {
		if h.templates.Lookup(name) == nil {
			t.Errorf("template %s not found", name)
		}
	}
}

func TestKeyEntryPage(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Enter Access Key") {
		t.Error("expected key entry heading")
	}
	if !strings.Contains(body, "/api/validate") {
		t.Error("expected page to call the validate endpoint")
	}
	if !strings.Contains(body, `href="/admin/login"`) {
		t.Error("expected admin link on the key screen")
	}
}

func TestBoostPanelPage(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/boost", nil)
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"stat-views", "stat-likes", "stat-success", "stat-rate", "/api/boost/start", "3000"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected boost page to contain %q", want)
		}
	}

	// The stop handler clears the counters in its finally block, so a
	// failed stop call still zeroes the panel.
	stop := body[strings.Index(body, "stop-btn').addEventListener"):]
	stop = stop[strings.Index(stop, "finally"):]
	finallyBlock := stop[:strings.Index(stop, "\n});")]
	if !strings.Contains(finallyBlock, "renderStats({})") {
		t.Error("expected counters reset in the stop handler's finally block")
	}
}

func TestAdminLoginPageCarriesCSRFField(t *testing.T) {
	h := newTestHandler(t)

	secret := []byte(strings.Repeat("k", 32))
	protected := csrf.Protect(secret, csrf.Secure(false), csrf.Path("/"))(http.HandlerFunc(h.HandleAdminLogin))

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `name="gorilla.csrf.Token"`) {
		t.Error("expected hidden CSRF field in login form")
	}
	if !strings.Contains(body, `action="/admin/login"`) {
		t.Error("expected login form action")
	}
}

func TestAdminDashboardPage(t *testing.T) {
	h := newTestHandler(t)

	secret := []byte(strings.Repeat("k", 32))
	protected := csrf.Protect(secret, csrf.Secure(false), csrf.Path("/"))(http.HandlerFunc(h.HandleAdminDashboard))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"duration", "lifetime", "/admin/api/keys", "X-CSRF-Token"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected dashboard to contain %q", want)
		}
	}
}
