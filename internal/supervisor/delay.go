package supervisor

import (
	"math/rand"
	"time"
)

// RetryDelay computes the pause between flaky-crash attempts. The
// reference behavior retries immediately (zero base); pipelines that
// share a flaky toolchain cache can set a base with jitter to spread
// retries.
type RetryDelay struct {
	base      time.Duration
	jitterPct float64
	rng       *rand.Rand
}

// NewRetryDelay creates a RetryDelay. jitterPct is the total jitter
// range as a fraction of base (0.4 means ±20%). The seed keeps jitter
// deterministic per run.
func NewRetryDelay(base time.Duration, jitterPct float64, seed int64) *RetryDelay {
	return &RetryDelay{
		base:      base,
		jitterPct: jitterPct,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Next returns the delay before the next attempt.
func (d *RetryDelay) Next() time.Duration {
	if d.base <= 0 {
		return 0
	}

	delay := float64(d.base)
	if d.jitterPct > 0 {
		jitterRange := delay * d.jitterPct
		delay += jitterRange*d.rng.Float64() - jitterRange/2
	}
	if delay < 0 {
		return 0
	}
	return time.Duration(delay)
}
