package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// CreateAccessKey inserts a new access key with a generated row ID.
// The key starts active with a zero usage counter.
// Returns ErrDuplicate if a key with the same token value already exists.
func (s *SQLiteStorage) CreateAccessKey(ctx context.Context, key, durationType string, expiresAt *time.Time) (*AccessKey, error) {
	k := &AccessKey{
		ID:           uuid.New().String(),
		Key:          key,
		DurationType: durationType,
		ExpiresAt:    expiresAt,
		IsActive:     true,
		UsedCount:    0,
		CreatedAt:    time.Now().UTC(),
	}

	var expires any
	if k.ExpiresAt != nil {
		expires = k.ExpiresAt.UTC()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO access_keys (id, key, duration_type, expires_at, is_active, used_count, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		k.ID, k.Key, k.DurationType, expires, k.IsActive, k.UsedCount, k.CreatedAt)

	if err != nil {
		// UNIQUE constraint on the key column (extended error code 2067)
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) {
			if sqliteErr.Code() == 2067 || (sqliteErr.Code()&0xFF) == sqlite3.SQLITE_CONSTRAINT {
				return nil, ErrDuplicate
			}
		}
		return nil, fmt.Errorf("failed to create access key: %w", err)
	}

	return k, nil
}

// GetAccessKey retrieves an access key by ID.
// Returns ErrNotFound if the key doesn't exist.
func (s *SQLiteStorage) GetAccessKey(ctx context.Context, id string) (*AccessKey, error) {
	return s.scanAccessKey(s.db.QueryRowContext(ctx,
		"SELECT id, key, duration_type, expires_at, is_active, used_count, created_at FROM access_keys WHERE id = ?",
		id))
}

// GetActiveAccessKeyByToken retrieves an active access key by its token value.
// This is the validation lookup: inactive keys are invisible to it.
// Returns ErrNotFound if no active key carries this token.
func (s *SQLiteStorage) GetActiveAccessKeyByToken(ctx context.Context, token string) (*AccessKey, error) {
	return s.scanAccessKey(s.db.QueryRowContext(ctx,
		"SELECT id, key, duration_type, expires_at, is_active, used_count, created_at FROM access_keys WHERE key = ? AND is_active = 1",
		token))
}

// ListAccessKeys returns all access keys, newest first.
// Returns empty slice if no keys exist.
func (s *SQLiteStorage) ListAccessKeys(ctx context.Context) ([]*AccessKey, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, key, duration_type, expires_at, is_active, used_count, created_at FROM access_keys ORDER BY created_at DESC")

	if err != nil {
		return nil, fmt.Errorf("failed to query access keys: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var keys []*AccessKey

	for rows.Next() {
		k, err := s.scanAccessKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating access keys: %w", err)
	}

	// Return empty slice instead of nil
	if keys == nil {
		keys = make([]*AccessKey, 0)
	}

	return keys, nil
}

// ToggleAccessKey flips the is_active flag and returns the updated row.
// The flip happens in a single UPDATE so concurrent toggles can't lose state.
// Returns ErrNotFound if the key doesn't exist.
func (s *SQLiteStorage) ToggleAccessKey(ctx context.Context, id string) (*AccessKey, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE access_keys SET is_active = NOT is_active WHERE id = ?",
		id)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle access key: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.GetAccessKey(ctx, id)
}

// DeleteAccessKey deletes an access key by ID. Irreversible.
// Session rows referencing the key are left in place.
// Returns ErrNotFound if the key doesn't exist.
func (s *SQLiteStorage) DeleteAccessKey(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM access_keys WHERE id = ?",
		id)

	if err != nil {
		return fmt.Errorf("failed to delete access key: %w", err)
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

// IncrementUsedCount bumps the usage counter by one in a single UPDATE
// expression, so concurrent validations of the same key never lose updates.
// Returns ErrNotFound if the key doesn't exist.
func (s *SQLiteStorage) IncrementUsedCount(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE access_keys SET used_count = used_count + 1 WHERE id = ?",
		id)

	if err != nil {
		return fmt.Errorf("failed to increment used count: %w", err)
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

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStorage) scanAccessKey(row rowScanner) (*AccessKey, error) {
	var k AccessKey
	var expires sql.NullTime

	err := row.Scan(&k.ID, &k.Key, &k.DurationType, &expires, &k.IsActive, &k.UsedCount, &k.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan access key: %w", err)
	}

	if expires.Valid {
		t := expires.Time
		k.ExpiresAt = &t
	}

	return &k, nil
}
