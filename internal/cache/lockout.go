// Package cache holds short-lived login lockout state, backed by Redis when
// configured and by process memory otherwise.
package cache

import (
	"context"
	"time"
)

// LockoutState is the brute-force counter for one key (an IP address).
type LockoutState struct {
	FailedCount int
	LockedUntil *time.Time
}

// IsLocked reports whether the key is locked at the given time.
func (s LockoutState) IsLocked(now time.Time) bool {
	return s.LockedUntil != nil && now.Before(*s.LockedUntil)
}

// RetryAfter returns how long until the lock lifts, or zero.
func (s LockoutState) RetryAfter(now time.Time) time.Duration {
	if !s.IsLocked(now) {
		return 0
	}
	return s.LockedUntil.Sub(now)
}

// LockoutStore handles short-lived brute-force protection state.
type LockoutStore interface {
	Get(ctx context.Context, key string) (LockoutState, error)
	RecordFailure(ctx context.Context, key string, now time.Time, threshold int, lockoutWindow time.Duration) (LockoutState, error)
	Clear(ctx context.Context, key string) error
}
