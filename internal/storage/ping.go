package storage

import (
	"context"
	"fmt"
)

// Ping verifies the database connection is alive.
// Used by the /ready health check.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
