package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkarel/boostgate/internal/testutil/mockstore"
)

func TestHandleHealth(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestHandleReady(t *testing.T) {
	tests := []struct {
		name       string
		storage    Storage
		wantStatus int
		wantDB     string
	}{
		{
			name:       "database connected",
			storage:    &mockstore.MockStorage{},
			wantStatus: http.StatusOK,
			wantDB:     "connected",
		},
		{
			name: "database unavailable",
			storage: &mockstore.MockStorage{
				PingFunc: func(ctx context.Context) error {
					return errors.New("connection refused")
				},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantDB:     "unavailable",
		},
		{
			name:       "no storage configured",
			storage:    nil,
			wantStatus: http.StatusServiceUnavailable,
			wantDB:     "not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(tt.storage, testPasswordHash(t, "correct-horse"), nil, nil)

			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			w := httptest.NewRecorder()
			h.HandleReady(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body["database"] != tt.wantDB {
				t.Errorf("database = %v, want %q", body["database"], tt.wantDB)
			}
		})
	}
}
