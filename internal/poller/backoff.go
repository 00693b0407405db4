package poller

import "time"

// backoffDelay returns the delay before the next data refresh after n
// consecutive failures: base * 2^(n-1), capped at max. No jitter.
func backoffDelay(n int, base, max time.Duration) time.Duration {
	if n <= 0 {
		return base
	}
	if n > 30 {
		// 2^30 already exceeds any sane cap; avoid shift overflow.
		return max
	}
	d := base << uint(n-1)
	if d <= 0 || d > max {
		return max
	}
	return d
}
