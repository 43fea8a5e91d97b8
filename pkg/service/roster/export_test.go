package roster

import "time"

// SetMinRetryAfter overrides the rate-limit wait floor for tests
func SetMinRetryAfter(d time.Duration) (restore func()) {
	prev := minRetryAfter
	minRetryAfter = d
	return func() {
		minRetryAfter = prev
	}
}
