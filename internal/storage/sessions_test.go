package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestCreateBoostSession verifies a new session row starts active with zeroed counters.
func TestCreateBoostSession(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	sess, err := s.CreateBoostSession(ctx, "engine-sess-1", "key-1", "https://example.com/v/42")
	if err != nil {
		t.Fatalf("CreateBoostSession failed: %v", err)
	}

	got, err := s.GetBoostSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetBoostSession failed: %v", err)
	}

	if !got.IsActive {
		t.Error("expected new session to be active")
	}
	if got.TotalViews != 0 || got.TotalLikes != 0 || got.SuccessCount != 0 || got.FailedCount != 0 {
		t.Errorf("expected zeroed counters, got %+v", got)
	}
	if got.AccessKeyID != "key-1" {
		t.Errorf("expected access key id key-1, got %s", got.AccessKeyID)
	}
	if got.TargetURL != "https://example.com/v/42" {
		t.Errorf("expected target url to round-trip, got %s", got.TargetURL)
	}
}

// TestCreateBoostSessionDuplicate verifies the primary key constraint.
func TestCreateBoostSessionDuplicate(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.CreateBoostSession(ctx, "dup-sess", "key-1", "https://example.com/v/1"); err != nil {
		t.Fatalf("first CreateBoostSession failed: %v", err)
	}

	_, err := s.CreateBoostSession(ctx, "dup-sess", "key-2", "https://example.com/v/2")
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

// TestUpdateSessionStats verifies counters are overwritten with the snapshot,
// not accumulated.
func TestUpdateSessionStats(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.CreateBoostSession(ctx, "stat-sess", "key-1", "https://example.com/v/1"); err != nil {
		t.Fatalf("CreateBoostSession failed: %v", err)
	}

	at := time.Now().UTC()
	stats := SessionStats{TotalViews: 100, TotalLikes: 20, SuccessCount: 5, FailedCount: 1}
	if err := s.UpdateSessionStats(ctx, "stat-sess", stats, at); err != nil {
		t.Fatalf("UpdateSessionStats failed: %v", err)
	}

	// A second snapshot replaces the first outright
	stats = SessionStats{TotalViews: 90, TotalLikes: 25, SuccessCount: 6, FailedCount: 1}
	if err := s.UpdateSessionStats(ctx, "stat-sess", stats, at.Add(3*time.Second)); err != nil {
		t.Fatalf("UpdateSessionStats failed: %v", err)
	}

	got, err := s.GetBoostSession(ctx, "stat-sess")
	if err != nil {
		t.Fatalf("GetBoostSession failed: %v", err)
	}
	if got.TotalViews != 90 || got.TotalLikes != 25 || got.SuccessCount != 6 || got.FailedCount != 1 {
		t.Errorf("expected overwritten counters, got %+v", got)
	}
	if !got.LastUpdate.After(got.StartedAt) {
		t.Errorf("expected last_update to advance past started_at")
	}

	if err := s.UpdateSessionStats(ctx, "missing", stats, at); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestMarkSessionInactive verifies the stop transition and that rows persist.
func TestMarkSessionInactive(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.CreateBoostSession(ctx, "stop-sess", "key-1", "https://example.com/v/1"); err != nil {
		t.Fatalf("CreateBoostSession failed: %v", err)
	}

	if err := s.MarkSessionInactive(ctx, "stop-sess"); err != nil {
		t.Fatalf("MarkSessionInactive failed: %v", err)
	}

	got, err := s.GetBoostSession(ctx, "stop-sess")
	if err != nil {
		t.Fatalf("GetBoostSession failed: %v", err)
	}
	if got.IsActive {
		t.Error("expected session to be inactive")
	}

	if err := s.MarkSessionInactive(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestGetBoostSessionNotFound verifies the sentinel for unknown sessions.
func TestGetBoostSessionNotFound(t *testing.T) {
	s := newTestStorage(t)

	if _, err := s.GetBoostSession(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestPing verifies the health-check probe against an open and closed handle.
func TestPing(t *testing.T) {
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping on open database failed: %v", err)
	}

	_ = s.Close()
	if err := s.Ping(context.Background()); err == nil {
		t.Error("expected Ping to fail on closed database")
	}
}
