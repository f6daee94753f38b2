package admin

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testCSRFSecret() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

// TestRouterRequiresSession verifies the API is closed without a session cookie.
func TestRouterRequiresSession(t *testing.T) {
	h := newTestHandler(t)
	r := h.NewRouter(testCSRFSecret(), false, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/keys", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", w.Code)
	}
}

// TestRouterRequiresCSRFToken verifies state-changing requests need the token.
func TestRouterRequiresCSRFToken(t *testing.T) {
	h := newTestHandler(t)
	r := h.NewRouter(testCSRFSecret(), false, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("password=correct-horse"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 without CSRF token, got %d", w.Code)
	}
}

// TestRouterUnknownRoute verifies 404 handling.
func TestRouterUnknownRoute(t *testing.T) {
	h := newTestHandler(t)
	r := h.NewRouter(testCSRFSecret(), false, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
