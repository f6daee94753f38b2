package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// CreateBoostSession inserts a new active session row with zeroed counters.
// The caller supplies the row ID (the engine's session identifier, or a
// generated one when the engine reported none).
// Returns ErrDuplicate if a session with this ID already exists.
func (s *SQLiteStorage) CreateBoostSession(ctx context.Context, id, accessKeyID, targetURL string) (*BoostSession, error) {
	now := time.Now().UTC()
	sess := &BoostSession{
		ID:          id,
		AccessKeyID: accessKeyID,
		TargetURL:   targetURL,
		IsActive:    true,
		StartedAt:   now,
		LastUpdate:  now,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO boost_sessions (id, access_key_id, tiktok_url, total_views, total_likes, success_count, failed_count, is_active, started_at, last_update) VALUES (?, ?, ?, 0, 0, 0, 0, 1, ?, ?)",
		sess.ID, sess.AccessKeyID, sess.TargetURL, sess.StartedAt, sess.LastUpdate)

	if err != nil {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) {
			if sqliteErr.Code() == 2067 || (sqliteErr.Code()&0xFF) == sqlite3.SQLITE_CONSTRAINT {
				return nil, ErrDuplicate
			}
		}
		return nil, fmt.Errorf("failed to create boost session: %w", err)
	}

	return sess, nil
}

// GetBoostSession retrieves a session by ID.
// Returns ErrNotFound if the session doesn't exist.
func (s *SQLiteStorage) GetBoostSession(ctx context.Context, id string) (*BoostSession, error) {
	var sess BoostSession

	err := s.db.QueryRowContext(ctx,
		"SELECT id, access_key_id, tiktok_url, total_views, total_likes, success_count, failed_count, is_active, started_at, last_update FROM boost_sessions WHERE id = ?",
		id).
		Scan(&sess.ID, &sess.AccessKeyID, &sess.TargetURL,
			&sess.TotalViews, &sess.TotalLikes, &sess.SuccessCount, &sess.FailedCount,
			&sess.IsActive, &sess.StartedAt, &sess.LastUpdate)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get boost session: %w", err)
	}

	return &sess, nil
}

// UpdateSessionStats overwrites the session counters with the latest engine
// snapshot and stamps last_update. Counters are replaced, not accumulated.
// Returns ErrNotFound if the session doesn't exist.
func (s *SQLiteStorage) UpdateSessionStats(ctx context.Context, id string, stats SessionStats, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE boost_sessions SET total_views = ?, total_likes = ?, success_count = ?, failed_count = ?, last_update = ? WHERE id = ?",
		stats.TotalViews, stats.TotalLikes, stats.SuccessCount, stats.FailedCount, at.UTC(), id)

	if err != nil {
		return fmt.Errorf("failed to update session stats: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkSessionInactive flags the session as stopped.
// Session rows are never deleted.
// Returns ErrNotFound if the session doesn't exist.
func (s *SQLiteStorage) MarkSessionInactive(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE boost_sessions SET is_active = 0, last_update = ? WHERE id = ?",
		time.Now().UTC(), id)

	if err != nil {
		return fmt.Errorf("failed to mark session inactive: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
