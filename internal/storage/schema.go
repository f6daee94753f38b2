// Package storage handles all database operations for boostgate.
package storage

import (
	"database/sql"
	"fmt"
)

// InitSchema creates all required tables and indexes.
// This is idempotent - safe to call multiple times.
//
// boost_sessions.access_key_id intentionally carries no foreign key
// constraint: deleting an access key leaves its session rows behind.
func InitSchema(db *sql.DB) error {
	ddlStatements := []string{
		// access_keys table: keys gating use of the boost feature
		`CREATE TABLE IF NOT EXISTS access_keys (
			id TEXT PRIMARY KEY,
			key TEXT NOT NULL UNIQUE,
			duration_type TEXT NOT NULL,
			expires_at TIMESTAMP,
			is_active INTEGER NOT NULL DEFAULT 1,
			used_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,

		// Index on key for validation lookups
		`CREATE INDEX IF NOT EXISTS idx_access_keys_key ON access_keys(key)`,

		// boost_sessions table: one row per started boost
		`CREATE TABLE IF NOT EXISTS boost_sessions (
			id TEXT PRIMARY KEY,
			access_key_id TEXT NOT NULL,
			tiktok_url TEXT NOT NULL,
			total_views INTEGER NOT NULL DEFAULT 0,
			total_likes INTEGER NOT NULL DEFAULT 0,
			success_count INTEGER NOT NULL DEFAULT 0,
			failed_count INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1,
			started_at TIMESTAMP NOT NULL,
			last_update TIMESTAMP NOT NULL
		)`,

		// Index on access_key_id for per-key session lookups
		`CREATE INDEX IF NOT EXISTS idx_boost_sessions_key ON boost_sessions(access_key_id)`,
	}

	for _, stmt := range ddlStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}
