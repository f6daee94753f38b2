package admin

import (
	"context"
	"net/http"
	"time"
)

// pingTimeout bounds the storage ping behind the readiness probe.
const pingTimeout = 5 * time.Second

type readyResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// HandleHealth reports process liveness.
// GET /health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReady reports whether the service can do useful work, which here
// means the key store answers a ping.
// GET /ready
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeJSON(w, http.StatusServiceUnavailable, readyResponse{
			Status:   "error",
			Database: "not configured",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("readiness ping failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, readyResponse{
			Status:   "error",
			Database: "unavailable",
		})
		return
	}

	writeJSON(w, http.StatusOK, readyResponse{
		Status:   "ok",
		Database: "connected",
	})
}
