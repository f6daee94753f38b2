package mockboost

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleStart handles GET /start?url=...
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	targetURL := r.URL.Query().Get("url")

	s.state.mu.Lock()
	fi := s.state.failureInjection

	if fi.StartErrorStatus != 0 {
		s.state.mu.Unlock()
		http.Error(w, "engine unavailable", fi.StartErrorStatus)
		return
	}

	if fi.RefuseStarts {
		s.state.mu.Unlock()
		writeJSON(w, http.StatusOK, Envelope{
			Success: false,
			Error:   "engine at capacity",
		})
		return
	}

	if targetURL == "" {
		s.state.mu.Unlock()
		writeJSON(w, http.StatusOK, Envelope{
			Success: false,
			Error:   "url parameter is required",
		})
		return
	}

	sess := &Session{
		ID:        s.newSessionID(),
		TargetURL: targetURL,
		Active:    true,
		StartedAt: time.Now().UTC(),
	}
	s.state.sessions[sess.ID] = sess
	s.state.mu.Unlock()

	writeJSON(w, http.StatusOK, Envelope{
		Success:   true,
		Message:   "Boost started",
		SessionID: sess.ID,
		TargetURL: sess.TargetURL,
	})
}

// handleStatus handles GET /status/{id}.
// Each call advances the session counters by the configured per-poll amounts.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.state.mu.Lock()
	fi := s.state.failureInjection

	if fi.StatusDelay > 0 {
		s.state.mu.Unlock()
		select {
		case <-time.After(fi.StatusDelay):
		case <-r.Context().Done():
			return
		}
		s.state.mu.Lock()
	}

	if fi.StatusErrorStatus != 0 {
		s.state.mu.Unlock()
		http.Error(w, "engine unavailable", fi.StatusErrorStatus)
		return
	}

	if s.state.failureInjection.FailNextStatus > 0 {
		s.state.failureInjection.FailNextStatus--
		s.state.mu.Unlock()
		writeJSON(w, http.StatusOK, Envelope{
			Success: false,
			Error:   "status temporarily unavailable",
		})
		return
	}

	sess, ok := s.state.sessions[id]
	if !ok {
		s.state.mu.Unlock()
		writeJSON(w, http.StatusOK, Envelope{
			Success: false,
			Error:   "session not found",
		})
		return
	}

	if sess.Active {
		sess.Stats.TotalViews += s.state.viewsPerPoll
		sess.Stats.TotalLikes += s.state.likesPerPoll
		sess.Stats.Success += s.state.successPerPoll
		sess.Stats.Failed += s.state.failedPerPoll
	}
	stats := sess.Stats
	resp := Envelope{
		Success:   true,
		SessionID: sess.ID,
		TargetURL: sess.TargetURL,
		Stats:     &stats,
	}
	s.state.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// handleStop handles GET /stop/{id}.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.state.mu.Lock()
	sess, ok := s.state.sessions[id]
	if !ok {
		s.state.mu.Unlock()
		writeJSON(w, http.StatusOK, Envelope{
			Success: false,
			Error:   "session not found",
		})
		return
	}
	sess.Active = false
	resp := Envelope{
		Success:   true,
		Message:   "Boost stopped",
		SessionID: sess.ID,
	}
	s.state.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}
