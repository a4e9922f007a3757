package chat

import (
	"time"
)

// rateLimiter enforces a sliding-window cap on message sends for one
// participant. Not safe for concurrent use; the Hub's mutex guards it.
type rateLimiter struct {
	window time.Duration
	limit  int
	sends  []time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{window: window, limit: limit}
}

// allow records a send at now and reports whether it fits the window.
// Rejected sends are not recorded.
func (l *rateLimiter) allow(now time.Time) bool {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.sends) && !l.sends[i].After(cutoff) {
		i++
	}
	l.sends = l.sends[i:]

	if len(l.sends) >= l.limit {
		return false
	}
	l.sends = append(l.sends, now)
	return true
}
