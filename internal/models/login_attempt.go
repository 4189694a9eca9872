package models

import "time"

// LoginAttempt tracks failed authentication attempts for a single identity.
// One row per email; attempts reset only on a successful login. An expired
// block lifts the lock but leaves the counter, so the next failure re-blocks
// immediately.
type LoginAttempt struct {
	ID           string
	Email        string
	Attempts     int
	BlockedUntil *time.Time
	LastIP       *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Blocked reports whether the record carries an unexpired block window
func (a *LoginAttempt) Blocked(now time.Time) bool {
	return a.BlockedUntil != nil && now.Before(*a.BlockedUntil)
}

// RemainingBlock returns the seconds left on the block window, 0 if unblocked
func (a *LoginAttempt) RemainingBlock(now time.Time) int {
	if a.BlockedUntil == nil {
		return 0
	}
	remaining := int(a.BlockedUntil.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}
