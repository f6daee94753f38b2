// Package boostctl runs boost sessions: it starts them on the engine, polls
// their stats, mirrors snapshots to storage, and stops them.
package boostctl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkarel/boostgate/internal/boost"
	"github.com/mkarel/boostgate/internal/metrics"
	"github.com/mkarel/boostgate/internal/storage"
)

// DefaultPollInterval is how often an active session's stats are refreshed.
const DefaultPollInterval = 3 * time.Second

// statsWriteTimeout bounds the storage mirror write that follows each poll.
const statsWriteTimeout = 2 * time.Second

// Engine is the slice of the boost client the controller needs.
type Engine interface {
	Start(ctx context.Context, targetURL string) (*boost.Response, error)
	Status(ctx context.Context, sessionID string) (*boost.Response, error)
	Stop(ctx context.Context, sessionID string) (*boost.Response, error)
}

// Store is the slice of storage the controller needs.
type Store interface {
	CreateBoostSession(ctx context.Context, id, accessKeyID, targetURL string) (*storage.BoostSession, error)
	GetBoostSession(ctx context.Context, id string) (*storage.BoostSession, error)
	UpdateSessionStats(ctx context.Context, id string, stats storage.SessionStats, at time.Time) error
	MarkSessionInactive(ctx context.Context, id string) error
}

// ValidationError rejects bad start input with a user-facing reason.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ReasonEmptyURL is shown when the target URL is missing.
const ReasonEmptyURL = "Please enter a TikTok URL"

// EngineError wraps a success=false envelope from the engine.
type EngineError struct {
	Reason string
}

func (e *EngineError) Error() string {
	return e.Reason
}

// ErrSessionNotFound is returned for session IDs the controller is not
// tracking and storage has no row for.
var ErrSessionNotFound = errors.New("boost session not found")

// Snapshot is a point-in-time view of a session's progress.
type Snapshot struct {
	SessionID   string
	TargetURL   string
	Stats       boost.Stats
	SuccessRate int
	Active      bool
	StartedAt   time.Time
	LastUpdate  time.Time
	LastError   string
}

// session is the controller's in-memory state for one running boost.
type session struct {
	id        string
	keyID     string
	targetURL string
	startedAt time.Time

	mu         sync.Mutex
	stats      boost.Stats
	lastUpdate time.Time
	lastErr    string
	appliedSeq uint64
	active     bool

	cancel context.CancelFunc
	done   chan struct{}
}

func (s *session) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		SessionID:   s.id,
		TargetURL:   s.targetURL,
		Stats:       s.stats,
		SuccessRate: SuccessRate(s.stats.Success, s.stats.Failed),
		Active:      s.active,
		StartedAt:   s.startedAt,
		LastUpdate:  s.lastUpdate,
		LastError:   s.lastErr,
	}
}

// Controller owns the lifecycle of boost sessions.
type Controller struct {
	engine       Engine
	store        Store
	logger       *slog.Logger
	pollInterval time.Duration
	now          func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
	wg       sync.WaitGroup

	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithPollInterval overrides the stats refresh interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		c.pollInterval = d
	}
}

// New creates a controller.
func New(engine Engine, store Store, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		engine:         engine,
		store:          store,
		logger:         logger,
		pollInterval:   DefaultPollInterval,
		now:            time.Now,
		sessions:       make(map[string]*session),
		shutdownCtx:    ctx,
		shutdownCancel: cancel,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start begins a boost for the target URL on behalf of the given access key.
// On success the session is tracked in memory, persisted to storage, and a
// poller goroutine refreshes its stats until it is stopped.
func (c *Controller) Start(ctx context.Context, keyID, targetURL string) (Snapshot, error) {
	target := strings.TrimSpace(targetURL)
	if target == "" {
		return Snapshot{}, &ValidationError{Reason: ReasonEmptyURL}
	}

	resp, err := c.engine.Start(ctx, target)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to start boost: %w", err)
	}
	if !resp.Success {
		return Snapshot{}, &EngineError{Reason: resp.FailureReason()}
	}

	// The engine's session ID keys everything downstream. Some engine
	// builds omit it on the start response; fall back to a generated one
	// so the session is still trackable locally.
	id := resp.SessionID
	if id == "" {
		id = uuid.New().String()
	}

	now := c.now().UTC()
	sess := &session{
		id:         id,
		keyID:      keyID,
		targetURL:  target,
		startedAt:  now,
		lastUpdate: now,
		active:     true,
		done:       make(chan struct{}),
	}

	if _, err := c.store.CreateBoostSession(ctx, id, keyID, target); err != nil {
		// The engine is already boosting; try to wind it back down rather
		// than leak an untracked session.
		stopCtx, cancel := context.WithTimeout(context.Background(), statsWriteTimeout)
		if _, stopErr := c.engine.Stop(stopCtx, id); stopErr != nil {
			c.logger.Warn("failed to stop orphaned engine session", "session_id", id, "error", stopErr)
		}
		cancel()
		return Snapshot{}, fmt.Errorf("failed to persist boost session: %w", err)
	}

	pollCtx, pollCancel := context.WithCancel(c.shutdownCtx)
	sess.cancel = pollCancel

	c.mu.Lock()
	c.sessions[id] = sess
	c.mu.Unlock()

	c.wg.Add(1)
	go c.poll(pollCtx, sess)

	metrics.RecordBoostStarted()
	c.logger.Info("boost session started", "session_id", id, "key_id", keyID, "target_url", target)

	return sess.snapshot(), nil
}

// Stop ends a session on the engine, marks it inactive everywhere, and
// resets the tracked counters. Stopping an already stopped or unknown
// session returns ErrSessionNotFound.
func (c *Controller) Stop(ctx context.Context, sessionID string) (Snapshot, error) {
	c.mu.Lock()
	sess, ok := c.sessions[sessionID]
	if ok {
		delete(c.sessions, sessionID)
	}
	c.mu.Unlock()

	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}

	sess.cancel()
	<-sess.done

	if _, err := c.engine.Stop(ctx, sessionID); err != nil {
		// The local session is already wound down; report the engine
		// failure but keep going so storage reflects the stop.
		c.logger.Warn("failed to stop engine session", "session_id", sessionID, "error", err)
	}

	sess.mu.Lock()
	sess.active = false
	sess.stats = boost.Stats{}
	sess.lastUpdate = c.now().UTC()
	sess.mu.Unlock()

	if err := c.store.MarkSessionInactive(ctx, sessionID); err != nil {
		return Snapshot{}, fmt.Errorf("failed to mark session inactive: %w", err)
	}

	metrics.RecordBoostStopped()
	c.logger.Info("boost session stopped", "session_id", sessionID)

	return sess.snapshot(), nil
}

// Snapshot returns the current view of a session. Running sessions are
// served from memory; finished ones fall back to their storage row.
func (c *Controller) Snapshot(ctx context.Context, sessionID string) (Snapshot, error) {
	c.mu.RLock()
	sess, ok := c.sessions[sessionID]
	c.mu.RUnlock()

	if ok {
		return sess.snapshot(), nil
	}

	row, err := c.store.GetBoostSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Snapshot{}, ErrSessionNotFound
		}
		return Snapshot{}, fmt.Errorf("failed to load boost session: %w", err)
	}

	stats := boost.Stats{
		Success:    row.SuccessCount,
		Failed:     row.FailedCount,
		TotalViews: row.TotalViews,
		TotalLikes: row.TotalLikes,
	}
	return Snapshot{
		SessionID:   row.ID,
		TargetURL:   row.TargetURL,
		Stats:       stats,
		SuccessRate: SuccessRate(stats.Success, stats.Failed),
		Active:      row.IsActive,
		StartedAt:   row.StartedAt,
		LastUpdate:  row.LastUpdate,
	}, nil
}

// Shutdown stops all pollers and waits for them, bounded by ctx.
// Engine sessions are left running; they are stopped individually via Stop.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.shutdownCancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// poll refreshes one session's stats on a ticker until its context ends.
//
// Each tick issues the status call in its own goroutine under its own
// context. The next tick cancels the previous tick's context first, so a
// stalled call never delays the schedule, and every applied snapshot carries
// a sequence number so a slow response can never overwrite a newer one.
func (c *Controller) poll(ctx context.Context, sess *session) {
	defer c.wg.Done()
	defer close(sess.done)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	var seq uint64
	var prevCancel context.CancelFunc

	for {
		select {
		case <-ctx.Done():
			if prevCancel != nil {
				prevCancel()
			}
			return
		case <-ticker.C:
			if prevCancel != nil {
				prevCancel()
			}
			seq++
			tickCtx, cancel := context.WithCancel(ctx)
			prevCancel = cancel
			go c.pollOnce(tickCtx, sess, seq)
		}
	}
}

// pollOnce performs a single stats refresh.
func (c *Controller) pollOnce(ctx context.Context, sess *session, seq uint64) {
	metrics.RecordPollTick()

	resp, err := c.engine.Status(ctx, sess.id)
	if err != nil {
		if ctx.Err() != nil {
			// Superseded by a newer tick or the session is winding down.
			return
		}
		metrics.RecordPollFailure("request")
		c.logger.Warn("stats poll failed", "session_id", sess.id, "error", err)
		sess.mu.Lock()
		if seq > sess.appliedSeq {
			sess.appliedSeq = seq
			sess.lastErr = err.Error()
		}
		sess.mu.Unlock()
		return
	}

	if !resp.Success {
		metrics.RecordPollFailure("engine")
		sess.mu.Lock()
		if seq > sess.appliedSeq {
			sess.appliedSeq = seq
			sess.lastErr = resp.FailureReason()
		}
		sess.mu.Unlock()
		return
	}

	if resp.Stats == nil {
		return
	}

	now := c.now().UTC()
	sess.mu.Lock()
	if seq <= sess.appliedSeq {
		// A newer tick already landed; this snapshot is stale.
		sess.mu.Unlock()
		return
	}
	sess.appliedSeq = seq
	sess.stats = *resp.Stats
	sess.lastUpdate = now
	sess.lastErr = ""
	stats := sess.stats
	sess.mu.Unlock()

	// Mirror to storage on a context independent of the tick, so a tick
	// cancellation cannot abandon a half-applied snapshot.
	writeCtx, cancel := context.WithTimeout(context.Background(), statsWriteTimeout)
	defer cancel()
	err = c.store.UpdateSessionStats(writeCtx, sess.id, storage.SessionStats{
		TotalViews:   stats.TotalViews,
		TotalLikes:   stats.TotalLikes,
		SuccessCount: stats.Success,
		FailedCount:  stats.Failed,
	}, now)
	if err != nil {
		c.logger.Warn("failed to persist session stats", "session_id", sess.id, "error", err)
	}
}

// SuccessRate computes the percentage of successful boost operations,
// rounded to the nearest integer. With no operations yet it is 0.
func SuccessRate(success, failed int64) int {
	total := success + failed
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(success) / float64(total) * 100))
}
