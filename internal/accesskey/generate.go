// Package accesskey implements access key generation and validation.
package accesskey

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/mkarel/boostgate/internal/storage"
)

// Alphabet is the 32-symbol set used for key tokens. Visually ambiguous
// characters (0, O, 1, I) are excluded so keys survive being read aloud
// or retyped.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	groupCount = 4
	groupLen   = 4
)

// Generate returns a new random key token in the form XXXX-XXXX-XXXX-XXXX.
// The alphabet size divides 256 evenly, so the byte-modulo mapping is unbiased.
func Generate() (string, error) {
	raw := make([]byte, groupCount*groupLen)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	var b strings.Builder
	b.Grow(groupCount*groupLen + groupCount - 1)
	for i, c := range raw {
		if i > 0 && i%groupLen == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(Alphabet[int(c)%len(Alphabet)])
	}

	return b.String(), nil
}

// ErrUnknownDuration is returned for a duration type outside the fixed set.
type ErrUnknownDuration struct {
	DurationType string
}

func (e *ErrUnknownDuration) Error() string {
	return fmt.Sprintf("unknown duration type: %s", e.DurationType)
}

// ExpiryFor computes the expiry timestamp for a duration type.
// Lifetime keys return nil (no expiry).
func ExpiryFor(durationType string, now time.Time) (*time.Time, error) {
	var days int
	switch durationType {
	case storage.DurationLifetime:
		return nil, nil
	case storage.Duration1Day:
		days = 1
	case storage.Duration2Day:
		days = 2
	case storage.Duration3Day:
		days = 3
	default:
		return nil, &ErrUnknownDuration{DurationType: durationType}
	}

	expiry := now.UTC().Add(time.Duration(days) * 24 * time.Hour)
	return &expiry, nil
}
