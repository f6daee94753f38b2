package accesskey

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mkarel/boostgate/internal/storage"
)

// fakeStore is a minimal in-memory Store for validator tests.
type fakeStore struct {
	keys       map[string]*storage.AccessKey // by ID
	byToken    map[string]string             // token -> ID
	increments map[string]int
	lookupErr  error
	incErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		keys:       make(map[string]*storage.AccessKey),
		byToken:    make(map[string]string),
		increments: make(map[string]int),
	}
}

func (f *fakeStore) add(k *storage.AccessKey) {
	f.keys[k.ID] = k
	f.byToken[k.Key] = k.ID
}

func (f *fakeStore) GetAccessKey(_ context.Context, id string) (*storage.AccessKey, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	k, ok := f.keys[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return k, nil
}

func (f *fakeStore) GetActiveAccessKeyByToken(_ context.Context, token string) (*storage.AccessKey, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	id, ok := f.byToken[token]
	if !ok {
		return nil, storage.ErrNotFound
	}
	k := f.keys[id]
	if !k.IsActive {
		return nil, storage.ErrNotFound
	}
	return k, nil
}

func (f *fakeStore) IncrementUsedCount(_ context.Context, id string) error {
	if f.incErr != nil {
		return f.incErr
	}
	if _, ok := f.keys[id]; !ok {
		return storage.ErrNotFound
	}
	f.increments[id]++
	return nil
}

func activeKey(id, token string, expires *time.Time) *storage.AccessKey {
	return &storage.AccessKey{
		ID:           id,
		Key:          token,
		DurationType: storage.Duration1Day,
		ExpiresAt:    expires,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
}

func wantReason(t *testing.T, err error, reason string) {
	t.Helper()

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Reason != reason {
		t.Errorf("expected reason %q, got %q", reason, vErr.Reason)
	}
}

// TestValidateSuccess verifies a valid key returns its ID and counts one use.
func TestValidateSuccess(t *testing.T) {
	store := newFakeStore()
	expires := time.Now().UTC().Add(24 * time.Hour)
	store.add(activeKey("key-1", "GOOD-GOOD-GOOD-GOOD", &expires))

	v := NewValidator(store, nil)

	id, err := v.Validate(context.Background(), "GOOD-GOOD-GOOD-GOOD")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if id != "key-1" {
		t.Errorf("expected key-1, got %s", id)
	}
	if store.increments["key-1"] != 1 {
		t.Errorf("expected exactly one increment, got %d", store.increments["key-1"])
	}
}

// TestValidateTrimsWhitespace verifies surrounding whitespace is ignored.
func TestValidateTrimsWhitespace(t *testing.T) {
	store := newFakeStore()
	store.add(activeKey("key-1", "GOOD-GOOD-GOOD-GOOD", nil))

	v := NewValidator(store, nil)

	id, err := v.Validate(context.Background(), "  GOOD-GOOD-GOOD-GOOD \n")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if id != "key-1" {
		t.Errorf("expected key-1, got %s", id)
	}
}

// TestValidateEmpty verifies the empty-input rejection.
func TestValidateEmpty(t *testing.T) {
	v := NewValidator(newFakeStore(), nil)

	for _, input := range []string{"", "   ", "\t\n"} {
		_, err := v.Validate(context.Background(), input)
		wantReason(t, err, ReasonEmpty)
	}
}

// TestValidateUnknown verifies unknown tokens are rejected without a counter bump.
func TestValidateUnknown(t *testing.T) {
	store := newFakeStore()
	v := NewValidator(store, nil)

	_, err := v.Validate(context.Background(), "NOPE-NOPE-NOPE-NOPE")
	wantReason(t, err, ReasonInvalid)

	if len(store.increments) != 0 {
		t.Error("expected no increments for rejected key")
	}
}

// TestValidateInactive verifies disabled keys look identical to unknown ones.
func TestValidateInactive(t *testing.T) {
	store := newFakeStore()
	k := activeKey("key-1", "DEAD-DEAD-DEAD-DEAD", nil)
	k.IsActive = false
	store.add(k)

	v := NewValidator(store, nil)

	_, err := v.Validate(context.Background(), "DEAD-DEAD-DEAD-DEAD")
	wantReason(t, err, ReasonInvalid)
}

// TestValidateExpired verifies the expiry check, including the exact boundary.
func TestValidateExpired(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		expires time.Time
		wantErr string
	}{
		{"past expiry", now.Add(-time.Hour), ReasonExpired},
		{"exact boundary", now, ReasonExpired},
		{"future expiry", now.Add(time.Hour), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			expires := tt.expires
			store.add(activeKey("key-1", "EDGE-EDGE-EDGE-EDGE", &expires))

			v := NewValidator(store, nil)
			v.now = func() time.Time { return now }

			_, err := v.Validate(context.Background(), "EDGE-EDGE-EDGE-EDGE")
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate failed: %v", err)
				}
				if store.increments["key-1"] != 1 {
					t.Errorf("expected one increment, got %d", store.increments["key-1"])
				}
				return
			}

			wantReason(t, err, tt.wantErr)
			if store.increments["key-1"] != 0 {
				t.Error("expected no increment for expired key")
			}
		})
	}
}

// TestValidateStoreError verifies infrastructure errors are not dressed up as
// validation failures.
func TestValidateStoreError(t *testing.T) {
	store := newFakeStore()
	store.lookupErr = fmt.Errorf("disk on fire")

	v := NewValidator(store, nil)

	_, err := v.Validate(context.Background(), "GOOD-GOOD-GOOD-GOOD")
	if err == nil {
		t.Fatal("expected error")
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		t.Errorf("expected plain error for store failure, got ValidationError %q", vErr.Reason)
	}
}

// TestAuthorize verifies the grant re-check path.
func TestAuthorize(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name       string
		key        *storage.AccessKey
		keyID      string
		wantReason string
	}{
		{"valid", activeKey("key-1", "AAAA-AAAA-AAAA-AAAA", &future), "key-1", ""},
		{"lifetime", activeKey("key-1", "AAAA-AAAA-AAAA-AAAA", nil), "key-1", ""},
		{"unknown", nil, "missing", ReasonInvalid},
		{"expired", activeKey("key-1", "AAAA-AAAA-AAAA-AAAA", &past), "key-1", ReasonExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			if tt.key != nil {
				store.add(tt.key)
			}

			v := NewValidator(store, nil)
			v.now = func() time.Time { return now }

			err := v.Authorize(context.Background(), tt.keyID)
			if tt.wantReason == "" {
				if err != nil {
					t.Fatalf("Authorize failed: %v", err)
				}
				if len(store.increments) != 0 {
					t.Error("Authorize must not increment used_count")
				}
				return
			}
			wantReason(t, err, tt.wantReason)
		})
	}
}

// TestAuthorizeDisabledKey verifies a toggled-off key loses its grant.
func TestAuthorizeDisabledKey(t *testing.T) {
	store := newFakeStore()
	k := activeKey("key-1", "AAAA-AAAA-AAAA-AAAA", nil)
	k.IsActive = false
	store.add(k)

	v := NewValidator(store, nil)

	err := v.Authorize(context.Background(), "key-1")
	wantReason(t, err, ReasonInvalid)
}
