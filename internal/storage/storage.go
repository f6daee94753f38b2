// Package storage provides types and interfaces for SQLite persistence operations.
package storage

import (
	"context"
	"time"
)

// Storage defines the interface for SQLite persistence operations.
type Storage interface {
	// Access key operations
	CreateAccessKey(ctx context.Context, key, durationType string, expiresAt *time.Time) (*AccessKey, error)
	GetAccessKey(ctx context.Context, id string) (*AccessKey, error)
	GetActiveAccessKeyByToken(ctx context.Context, token string) (*AccessKey, error)
	ListAccessKeys(ctx context.Context) ([]*AccessKey, error)
	ToggleAccessKey(ctx context.Context, id string) (*AccessKey, error)
	DeleteAccessKey(ctx context.Context, id string) error
	IncrementUsedCount(ctx context.Context, id string) error

	// Boost session operations
	CreateBoostSession(ctx context.Context, id, accessKeyID, targetURL string) (*BoostSession, error)
	GetBoostSession(ctx context.Context, id string) (*BoostSession, error)
	UpdateSessionStats(ctx context.Context, id string, stats SessionStats, at time.Time) error
	MarkSessionInactive(ctx context.Context, id string) error

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}
