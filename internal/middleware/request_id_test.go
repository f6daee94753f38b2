package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestRequestIDGenerated verifies a UUID is assigned when none is supplied.
func TestRequestIDGenerated(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if seen == "" {
		t.Fatal("expected request ID in context")
	}
	if got := w.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("expected response header to match context ID, got %q vs %q", got, seen)
	}
	if len(seen) != 36 {
		t.Errorf("expected UUID-shaped ID, got %q", seen)
	}
}

// TestRequestIDPreserved verifies a valid incoming ID is kept.
func TestRequestIDPreserved(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-id-42")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if seen != "client-id-42" {
		t.Errorf("expected client ID preserved, got %q", seen)
	}
}

// TestRequestIDInvalidReplaced verifies bad incoming IDs are replaced.
func TestRequestIDInvalidReplaced(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"too long", strings.Repeat("a", 129)},
		{"control chars", "abc\ndef"},
		{"spaces", "has spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", tt.id)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if seen == tt.id {
				t.Errorf("expected invalid ID %q to be replaced", tt.id)
			}
			if seen == "" {
				t.Error("expected a generated replacement ID")
			}
		})
	}
}

// TestGetRequestIDMissing verifies the empty-string fallback.
func TestGetRequestIDMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetRequestID(req.Context()); got != "" {
		t.Errorf("expected empty ID without middleware, got %q", got)
	}
}
