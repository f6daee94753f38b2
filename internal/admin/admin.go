// Package admin provides the access key administration endpoints.
package admin

import (
	"context"
	"log/slog"
	"time"

	"github.com/mkarel/boostgate/internal/storage"
)

// Handler provides admin endpoints
type Handler struct {
	storage      Storage
	sessionStore *SessionStore
	passwordHash []byte
	logger       *slog.Logger
	logLevel     *slog.LevelVar
}

// Storage interface for admin operations
type Storage interface {
	// Health check
	Ping(ctx context.Context) error

	// Access key operations
	CreateAccessKey(ctx context.Context, key, durationType string, expiresAt *time.Time) (*storage.AccessKey, error)
	GetAccessKey(ctx context.Context, id string) (*storage.AccessKey, error)
	ListAccessKeys(ctx context.Context) ([]*storage.AccessKey, error)
	ToggleAccessKey(ctx context.Context, id string) (*storage.AccessKey, error)
	DeleteAccessKey(ctx context.Context, id string) error
}

// NewHandler creates an admin handler. passwordHash is the bcrypt hash the
// login password is checked against.
func NewHandler(storage Storage, passwordHash []byte, logLevel *slog.LevelVar, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if logLevel == nil {
		logLevel = new(slog.LevelVar)
	}

	return &Handler{
		storage:      storage,
		sessionStore: NewSessionStore(0),
		passwordHash: passwordHash,
		logger:       logger,
		logLevel:     logLevel,
	}
}
