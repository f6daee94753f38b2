package mockboost

import (
	"fmt"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
)

// Server is a mock boost engine for testing.
type Server struct {
	*httptest.Server
	state  *State
	router chi.Router
}

// New creates and starts a mock boost engine server.
func New() *Server {
	s := &Server{
		state: NewState(),
	}

	r := chi.NewRouter()
	r.Get("/start", s.handleStart)
	r.Get("/status/{id}", s.handleStatus)
	r.Get("/stop/{id}", s.handleStop)
	s.router = r

	s.Server = httptest.NewServer(r)
	return s
}

// Handler returns the engine's router, for running it on a standalone listener.
func (s *Server) Handler() chi.Router {
	return s.router
}

// SetFailures replaces the failure injection configuration.
func (s *Server) SetFailures(fi FailureInjection) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.state.failureInjection = fi
}

// SetPerPoll sets the counter increments applied on each /status call.
func (s *Server) SetPerPoll(views, likes, success, failed int64) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.state.viewsPerPoll = views
	s.state.likesPerPoll = likes
	s.state.successPerPoll = success
	s.state.failedPerPoll = failed
}

// GetSession returns a copy of a session's state, or nil if unknown.
func (s *Server) GetSession(id string) *Session {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	sess, ok := s.state.sessions[id]
	if !ok {
		return nil
	}
	cp := *sess
	return &cp
}

// SessionCount returns how many sessions the engine has seen.
func (s *Server) SessionCount() int {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	return len(s.state.sessions)
}

// Reset clears all sessions and failure injection state.
func (s *Server) Reset() {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.state.sessions = make(map[string]*Session)
	s.state.nextSessionID = 1
	s.state.failureInjection = FailureInjection{}
}

func (s *Server) newSessionID() string {
	id := s.state.nextSessionID
	s.state.nextSessionID++
	return fmt.Sprintf("mock-session-%d", id)
}
