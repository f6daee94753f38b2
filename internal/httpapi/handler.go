// Package httpapi exposes the user-facing boost API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkarel/boostgate/internal/accesskey"
	"github.com/mkarel/boostgate/internal/boostctl"
	"github.com/mkarel/boostgate/internal/metrics"
)

// Validator checks access keys.
type Validator interface {
	Validate(ctx context.Context, raw string) (string, error)
	Authorize(ctx context.Context, keyID string) error
}

// Controller runs boost sessions.
type Controller interface {
	Start(ctx context.Context, keyID, targetURL string) (boostctl.Snapshot, error)
	Stop(ctx context.Context, sessionID string) (boostctl.Snapshot, error)
	Snapshot(ctx context.Context, sessionID string) (boostctl.Snapshot, error)
}

// Handler serves the boost API endpoints.
type Handler struct {
	validator  Validator
	controller Controller
	logger     *slog.Logger
}

// NewHandler creates an API handler.
func NewHandler(validator Validator, controller Controller, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		validator:  validator,
		controller: controller,
		logger:     logger,
	}
}

// apiError is the JSON error envelope. Message carries the user-facing text.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encErr := json.NewEncoder(w).Encode(apiError{Error: code, Message: message})
	if encErr != nil {
		// Response already started, nothing we can do
		_ = encErr
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encErr := json.NewEncoder(w).Encode(v)
	if encErr != nil {
		_ = encErr
	}
}

// StatsResponse mirrors the engine counters in API responses.
type StatsResponse struct {
	Success    int64 `json:"success"`
	Failed     int64 `json:"failed"`
	TotalViews int64 `json:"total_views"`
	TotalLikes int64 `json:"total_likes"`
}

// SessionResponse is the JSON view of a boost session.
type SessionResponse struct {
	SessionID   string        `json:"session_id"`
	TargetURL   string        `json:"target_url"`
	Stats       StatsResponse `json:"stats"`
	SuccessRate int           `json:"success_rate"`
	Active      bool          `json:"active"`
	StartedAt   time.Time     `json:"started_at"`
	LastUpdate  time.Time     `json:"last_update"`
	LastError   string        `json:"last_error,omitempty"`
}

func sessionResponse(snap boostctl.Snapshot) SessionResponse {
	return SessionResponse{
		SessionID: snap.SessionID,
		TargetURL: snap.TargetURL,
		Stats: StatsResponse{
			Success:    snap.Stats.Success,
			Failed:     snap.Stats.Failed,
			TotalViews: snap.Stats.TotalViews,
			TotalLikes: snap.Stats.TotalLikes,
		},
		SuccessRate: snap.SuccessRate,
		Active:      snap.Active,
		StartedAt:   snap.StartedAt,
		LastUpdate:  snap.LastUpdate,
		LastError:   snap.LastError,
	}
}

// ValidateRequest is the request body for POST /api/validate
type ValidateRequest struct {
	Key string `json:"key"`
}

// ValidateResponse is returned for an accepted key.
type ValidateResponse struct {
	Valid bool   `json:"valid"`
	KeyID string `json:"key_id"`
}

// HandleValidate checks an access key and hands back the grant used by the
// boost endpoints.
// POST /api/validate
// Body: {"key": "XXXX-XXXX-XXXX-XXXX"}
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RecordValidation("error")
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON")
		return
	}

	keyID, err := h.validator.Validate(r.Context(), req.Key)
	if err != nil {
		var vErr *accesskey.ValidationError
		if errors.As(err, &vErr) {
			metrics.RecordValidation(validationResult(vErr.Reason))
			writeError(w, http.StatusUnauthorized, "invalid_key", vErr.Reason)
			return
		}
		metrics.RecordValidation("error")
		h.logger.Error("key validation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Something went wrong, please try again")
		return
	}

	metrics.RecordValidation("ok")
	writeJSON(w, http.StatusOK, ValidateResponse{Valid: true, KeyID: keyID})
}

func validationResult(reason string) string {
	switch reason {
	case accesskey.ReasonEmpty:
		return "empty"
	case accesskey.ReasonExpired:
		return "expired"
	default:
		return "invalid"
	}
}

// StartRequest is the request body for POST /api/boost/start
type StartRequest struct {
	KeyID string `json:"key_id"`
	URL   string `json:"url"`
}

// HandleStartBoost begins a boost session for a validated key.
// POST /api/boost/start
// Body: {"key_id": "...", "url": "https://..."}
func (h *Handler) HandleStartBoost(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON")
		return
	}

	// The grant is re-checked on every start so a key that expired or was
	// disabled mid-session loses access immediately.
	if err := h.validator.Authorize(r.Context(), req.KeyID); err != nil {
		var vErr *accesskey.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusUnauthorized, "invalid_key", vErr.Reason)
			return
		}
		h.logger.Error("key authorization failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Something went wrong, please try again")
		return
	}

	snap, err := h.controller.Start(r.Context(), req.KeyID, req.URL)
	if err != nil {
		var vErr *boostctl.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusBadRequest, "invalid_request", vErr.Reason)
			return
		}
		var eErr *boostctl.EngineError
		if errors.As(err, &eErr) {
			writeError(w, http.StatusBadGateway, "engine_error", eErr.Reason)
			return
		}
		h.logger.Error("failed to start boost", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to start boost")
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse(snap))
}

// HandleBoostStatus returns the current snapshot of a session.
// GET /api/boost/{id}/status
func (h *Handler) HandleBoostStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, err := h.controller.Snapshot(r.Context(), id)
	if err != nil {
		if errors.Is(err, boostctl.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Boost session not found")
			return
		}
		h.logger.Error("failed to load boost status", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load boost status")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse(snap))
}

// HandleStopBoost ends a session and returns its final snapshot.
// POST /api/boost/{id}/stop
func (h *Handler) HandleStopBoost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, err := h.controller.Stop(r.Context(), id)
	if err != nil {
		if errors.Is(err, boostctl.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Boost session not found")
			return
		}
		h.logger.Error("failed to stop boost", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to stop boost")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse(snap))
}
