package accesskey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mkarel/boostgate/internal/storage"
)

// ValidationError carries the user-facing reason a key was rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Rejection reasons shown to the user.
const (
	ReasonEmpty   = "Please enter an access key"
	ReasonInvalid = "Invalid access key"
	ReasonExpired = "This key has expired"
)

// Store is the slice of storage the validator needs.
type Store interface {
	GetAccessKey(ctx context.Context, id string) (*storage.AccessKey, error)
	GetActiveAccessKeyByToken(ctx context.Context, token string) (*storage.AccessKey, error)
	IncrementUsedCount(ctx context.Context, id string) error
}

// Validator checks submitted key tokens against the store.
type Validator struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewValidator creates a validator.
func NewValidator(store Store, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Validate checks a user-entered key token and returns the key's ID on
// success. The ID is the caller's grant for the rest of their session.
//
// A successful validation increments used_count exactly once; rejected
// keys (unknown, inactive, expired) never touch the counter. An expiry
// exactly equal to "now" counts as expired.
func (v *Validator) Validate(ctx context.Context, raw string) (string, error) {
	token := strings.TrimSpace(raw)
	if token == "" {
		return "", &ValidationError{Reason: ReasonEmpty}
	}

	key, err := v.store.GetActiveAccessKeyByToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", &ValidationError{Reason: ReasonInvalid}
		}
		return "", fmt.Errorf("key lookup failed: %w", err)
	}

	if expired(key, v.now()) {
		return "", &ValidationError{Reason: ReasonExpired}
	}

	if err := v.store.IncrementUsedCount(ctx, key.ID); err != nil {
		return "", fmt.Errorf("failed to record key use: %w", err)
	}

	v.logger.Info("access key validated", "key_id", key.ID, "duration_type", key.DurationType)
	return key.ID, nil
}

// Authorize re-checks that a previously validated key still grants access.
// Unlike Validate it takes the key ID, not the token, and never increments
// the usage counter.
func (v *Validator) Authorize(ctx context.Context, keyID string) error {
	key, err := v.store.GetAccessKey(ctx, keyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &ValidationError{Reason: ReasonInvalid}
		}
		return fmt.Errorf("key lookup failed: %w", err)
	}

	if !key.IsActive {
		return &ValidationError{Reason: ReasonInvalid}
	}
	if expired(key, v.now()) {
		return &ValidationError{Reason: ReasonExpired}
	}

	return nil
}

// expired reports whether the key's expiry has passed.
// A nil expiry means a lifetime key. The boundary is inclusive: a key whose
// expiry equals the current instant is already expired.
func expired(key *storage.AccessKey, now time.Time) bool {
	if key.ExpiresAt == nil {
		return false
	}
	return !key.ExpiresAt.After(now)
}
