package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkarel/boostgate/internal/accesskey"
	"github.com/mkarel/boostgate/internal/logging"
	"github.com/mkarel/boostgate/internal/metrics"
	"github.com/mkarel/boostgate/internal/storage"
)

// KeyResponse represents an access key in API responses. The plaintext token
// is only present on the create response; list and toggle return it masked.
type KeyResponse struct {
	ID           string     `json:"id"`
	Key          string     `json:"key"`
	DurationType string     `json:"duration_type"`
	ExpiresAt    *time.Time `json:"expires_at"`
	IsActive     bool       `json:"is_active"`
	Expired      bool       `json:"expired"`
	UsedCount    int64      `json:"used_count"`
	CreatedAt    time.Time  `json:"created_at"`
}

func keyResponse(k *storage.AccessKey, maskToken bool) KeyResponse {
	token := k.Key
	if maskToken {
		token = logging.MaskKey(token)
	}
	return KeyResponse{
		ID:           k.ID,
		Key:          token,
		DurationType: k.DurationType,
		ExpiresAt:    k.ExpiresAt,
		IsActive:     k.IsActive,
		Expired:      k.ExpiresAt != nil && !k.ExpiresAt.After(time.Now()),
		UsedCount:    k.UsedCount,
		CreatedAt:    k.CreatedAt,
	}
}

// HandleListKeys returns all access keys, newest first
// GET /admin/api/keys
func (h *Handler) HandleListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.storage.ListAccessKeys(r.Context())
	if err != nil {
		h.logger.Error("failed to list keys", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Failed to list keys")
		return
	}

	response := make([]KeyResponse, len(keys))
	for i, k := range keys {
		response[i] = keyResponse(k, true)
	}

	writeJSON(w, http.StatusOK, response)
}

// CreateKeyRequest is the request body for POST /admin/api/keys
type CreateKeyRequest struct {
	DurationType string `json:"duration_type"`
}

// HandleCreateKey generates a new access key
// POST /admin/api/keys
// Body: {"duration_type": "1day|2day|3day|lifetime"}
// The response is the only place the plaintext token appears.
func (h *Handler) HandleCreateKey(w http.ResponseWriter, r *http.Request) {
	var req CreateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	expiresAt, err := accesskey.ExpiryFor(req.DurationType, time.Now())
	if err != nil {
		WriteErrorWithHint(w, http.StatusBadRequest, ErrCodeInvalidRequest,
			"Invalid duration type",
			"Use one of: 1day, 2day, 3day, lifetime")
		return
	}

	token, err := accesskey.Generate()
	if err != nil {
		h.logger.Error("failed to generate key token", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Failed to generate key")
		return
	}

	key, err := h.storage.CreateAccessKey(r.Context(), token, req.DurationType, expiresAt)
	if err != nil {
		h.logger.Error("failed to create key", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Failed to create key")
		return
	}

	metrics.RecordKeyCreated()
	h.logger.Info("access key created", "key_id", key.ID, "duration_type", key.DurationType)

	writeJSON(w, http.StatusCreated, keyResponse(key, false))
}

// HandleToggleKey flips a key between active and inactive
// POST /admin/api/keys/{id}/toggle
func (h *Handler) HandleToggleKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	key, err := h.storage.ToggleAccessKey(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Key not found")
			return
		}
		h.logger.Error("failed to toggle key", "key_id", id, "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Failed to toggle key")
		return
	}

	h.logger.Info("access key toggled", "key_id", id, "is_active", key.IsActive)

	writeJSON(w, http.StatusOK, keyResponse(key, true))
}

// HandleDeleteKey removes a key permanently. Boost session rows that
// reference it are left in place.
// DELETE /admin/api/keys/{id}
func (h *Handler) HandleDeleteKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.storage.DeleteAccessKey(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Key not found")
			return
		}
		h.logger.Error("failed to delete key", "key_id", id, "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Failed to delete key")
		return
	}

	h.logger.Info("access key deleted", "key_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// SetLogLevelRequest is the request body for POST /admin/api/loglevel
type SetLogLevelRequest struct {
	Level string `json:"level"`
}

// HandleSetLogLevel changes runtime log level
// POST /admin/api/loglevel
// Body: {"level": "debug|info|warn|error"}
func (h *Handler) HandleSetLogLevel(w http.ResponseWriter, r *http.Request) {
	var req SetLogLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	var level slog.Level
	switch req.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		WriteErrorWithHint(w, http.StatusBadRequest, ErrCodeInvalidRequest,
			"Invalid level",
			"Use one of: debug, info, warn, error")
		return
	}

	h.logLevel.Set(level)
	h.logger.Info("log level changed", "new_level", req.Level)

	writeJSON(w, http.StatusOK, map[string]string{"level": req.Level})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		// Encoding errors are not critical since headers are already sent
		_ = err
	}
}
