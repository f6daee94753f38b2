// Package mockstore provides a configurable mock implementation of storage interfaces for testing.
//
// The MockStorage type uses function fields for each method, allowing tests to customize behavior
// as needed while providing sensible defaults for methods that aren't customized.
package mockstore

import (
	"context"
	"time"

	"github.com/mkarel/boostgate/internal/storage"
)

// MockStorage is a configurable mock implementation of storage.Storage.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a sensible default value.
type MockStorage struct {
	// Access key operations
	CreateAccessKeyFunc           func(ctx context.Context, key, durationType string, expiresAt *time.Time) (*storage.AccessKey, error)
	GetAccessKeyFunc              func(ctx context.Context, id string) (*storage.AccessKey, error)
	GetActiveAccessKeyByTokenFunc func(ctx context.Context, token string) (*storage.AccessKey, error)
	ListAccessKeysFunc            func(ctx context.Context) ([]*storage.AccessKey, error)
	ToggleAccessKeyFunc           func(ctx context.Context, id string) (*storage.AccessKey, error)
	DeleteAccessKeyFunc           func(ctx context.Context, id string) error
	IncrementUsedCountFunc        func(ctx context.Context, id string) error

	// Boost session operations
	CreateBoostSessionFunc  func(ctx context.Context, id, accessKeyID, targetURL string) (*storage.BoostSession, error)
	GetBoostSessionFunc     func(ctx context.Context, id string) (*storage.BoostSession, error)
	UpdateSessionStatsFunc  func(ctx context.Context, id string, stats storage.SessionStats, at time.Time) error
	MarkSessionInactiveFunc func(ctx context.Context, id string) error

	// Lifecycle
	PingFunc  func(ctx context.Context) error
	CloseFunc func() error
}

// CreateAccessKey creates a new access key.
func (m *MockStorage) CreateAccessKey(ctx context.Context, key, durationType string, expiresAt *time.Time) (*storage.AccessKey, error) {
	if m.CreateAccessKeyFunc != nil {
		return m.CreateAccessKeyFunc(ctx, key, durationType, expiresAt)
	}
	return &storage.AccessKey{
		ID:           "mock-key-id",
		Key:          key,
		DurationType: durationType,
		ExpiresAt:    expiresAt,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}, nil
}

// GetAccessKey retrieves an access key by ID.
func (m *MockStorage) GetAccessKey(ctx context.Context, id string) (*storage.AccessKey, error) {
	if m.GetAccessKeyFunc != nil {
		return m.GetAccessKeyFunc(ctx, id)
	}
	return nil, storage.ErrNotFound
}

// GetActiveAccessKeyByToken retrieves an active access key by its token value.
func (m *MockStorage) GetActiveAccessKeyByToken(ctx context.Context, token string) (*storage.AccessKey, error) {
	if m.GetActiveAccessKeyByTokenFunc != nil {
		return m.GetActiveAccessKeyByTokenFunc(ctx, token)
	}
	return nil, storage.ErrNotFound
}

// ListAccessKeys retrieves all access keys.
func (m *MockStorage) ListAccessKeys(ctx context.Context) ([]*storage.AccessKey, error) {
	if m.ListAccessKeysFunc != nil {
		return m.ListAccessKeysFunc(ctx)
	}
	return []*storage.AccessKey{}, nil
}

// ToggleAccessKey flips the is_active flag on a key.
func (m *MockStorage) ToggleAccessKey(ctx context.Context, id string) (*storage.AccessKey, error) {
	if m.ToggleAccessKeyFunc != nil {
		return m.ToggleAccessKeyFunc(ctx, id)
	}
	return nil, storage.ErrNotFound
}

// DeleteAccessKey deletes an access key by ID.
func (m *MockStorage) DeleteAccessKey(ctx context.Context, id string) error {
	if m.DeleteAccessKeyFunc != nil {
		return m.DeleteAccessKeyFunc(ctx, id)
	}
	return nil
}

// IncrementUsedCount bumps the use counter on a key.
func (m *MockStorage) IncrementUsedCount(ctx context.Context, id string) error {
	if m.IncrementUsedCountFunc != nil {
		return m.IncrementUsedCountFunc(ctx, id)
	}
	return nil
}

// CreateBoostSession records a new boost session.
func (m *MockStorage) CreateBoostSession(ctx context.Context, id, accessKeyID, targetURL string) (*storage.BoostSession, error) {
	if m.CreateBoostSessionFunc != nil {
		return m.CreateBoostSessionFunc(ctx, id, accessKeyID, targetURL)
	}
	now := time.Now()
	return &storage.BoostSession{
		ID:          id,
		AccessKeyID: accessKeyID,
		TargetURL:   targetURL,
		IsActive:    true,
		StartedAt:   now,
		LastUpdate:  now,
	}, nil
}

// GetBoostSession retrieves a boost session by ID.
func (m *MockStorage) GetBoostSession(ctx context.Context, id string) (*storage.BoostSession, error) {
	if m.GetBoostSessionFunc != nil {
		return m.GetBoostSessionFunc(ctx, id)
	}
	return nil, storage.ErrNotFound
}

// UpdateSessionStats overwrites the stored counters for a session.
func (m *MockStorage) UpdateSessionStats(ctx context.Context, id string, stats storage.SessionStats, at time.Time) error {
	if m.UpdateSessionStatsFunc != nil {
		return m.UpdateSessionStatsFunc(ctx, id, stats, at)
	}
	return nil
}

// MarkSessionInactive flags a session as stopped.
func (m *MockStorage) MarkSessionInactive(ctx context.Context, id string) error {
	if m.MarkSessionInactiveFunc != nil {
		return m.MarkSessionInactiveFunc(ctx, id)
	}
	return nil
}

// Ping checks connectivity.
func (m *MockStorage) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// Close releases resources.
func (m *MockStorage) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
