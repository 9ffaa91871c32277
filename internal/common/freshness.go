package common

import "time"

// IsFresh returns true if updated is within ttl of now. A zero timestamp or
// non-positive ttl is never fresh.
func IsFresh(updated time.Time, ttl time.Duration, now time.Time) bool {
	if updated.IsZero() || ttl <= 0 {
		return false
	}
	return now.Sub(updated) < ttl
}
