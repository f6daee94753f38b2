// Package mockboost provides a mock boost engine server used in testing.
package mockboost

import (
	"sync"
	"time"
)

// Stats mirrors the engine's counter block.
type Stats struct {
	Success    int64 `json:"success"`
	Failed     int64 `json:"failed"`
	TotalViews int64 `json:"totalViews"`
	TotalLikes int64 `json:"totalLikes"`
}

// Envelope is the engine's response shape, shared by all endpoints.
type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	TargetURL string `json:"targetUrl,omitempty"`
	Stats     *Stats `json:"stats,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Session is a running mock boost.
type Session struct {
	ID        string
	TargetURL string
	Active    bool
	StartedAt time.Time
	Stats     Stats
}

// FailureInjection controls scripted failures. Zero value means no failures.
type FailureInjection struct {
	// RefuseStarts makes /start return a failure envelope.
	RefuseStarts bool
	// StartErrorStatus makes /start return this HTTP status with a plain body.
	StartErrorStatus int
	// StatusErrorStatus makes /status return this HTTP status.
	StatusErrorStatus int
	// FailNextStatus makes the next N /status calls return a failure envelope.
	FailNextStatus int
	// StatusDelay stalls /status responses, for poll-scheduling tests.
	StatusDelay time.Duration
}

// State holds the internal mock server state.
type State struct {
	mu               sync.RWMutex
	sessions         map[string]*Session
	nextSessionID    int64
	failureInjection FailureInjection

	// Per-poll counter increments applied on each /status call.
	viewsPerPoll   int64
	likesPerPoll   int64
	successPerPoll int64
	failedPerPoll  int64
}

// NewState creates a new State with default per-poll increments.
func NewState() *State {
	return &State{
		sessions:       make(map[string]*Session),
		nextSessionID:  1,
		viewsPerPoll:   10,
		likesPerPoll:   3,
		successPerPoll: 4,
		failedPerPoll:  1,
	}
}
