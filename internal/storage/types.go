package storage

import "time"

// Duration types for access keys.
const (
	Duration1Day     = "1day"
	Duration2Day     = "2day"
	Duration3Day     = "3day"
	DurationLifetime = "lifetime"
)

// AccessKey represents an access key row.
// ExpiresAt is nil for lifetime keys.
type AccessKey struct {
	ID           string
	Key          string
	DurationType string
	ExpiresAt    *time.Time
	IsActive     bool
	UsedCount    int64
	CreatedAt    time.Time
}

// BoostSession represents a tracked boost session row.
// The row ID matches the remote engine's session identifier when the
// engine reports one, so status/stop calls and row updates share a key.
type BoostSession struct {
	ID           string
	AccessKeyID  string
	TargetURL    string
	TotalViews   int64
	TotalLikes   int64
	SuccessCount int64
	FailedCount  int64
	IsActive     bool
	StartedAt    time.Time
	LastUpdate   time.Time
}

// SessionStats is a counter snapshot mirrored into a boost session row.
// Counters overwrite the stored values; they are never accumulated.
type SessionStats struct {
	TotalViews   int64
	TotalLikes   int64
	SuccessCount int64
	FailedCount  int64
}
