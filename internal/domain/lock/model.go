package lock

import "time"

// TTL after which an unreleased lock is considered abandoned.
const TTL = 5 * time.Minute

// Info describes a currently held lock.
type Info struct {
	LockedBy string    `json:"locked_by"`
	LockedAt time.Time `json:"locked_at"`
	PID      int       `json:"pid"`
}

// Expired reports whether the lock has outlived its TTL at the given instant.
func (i Info) Expired(now time.Time) bool {
	return now.Sub(i.LockedAt) > TTL
}
