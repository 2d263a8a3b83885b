package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// ProbeLimiter caps how often probes may reach the database, so a burst of
// health checks from a load balancer cannot flood a small private-subnet
// instance. A nil *ProbeLimiter imposes no limit.
type ProbeLimiter struct {
	limiter *rate.Limiter
}

// New returns a limiter allowing ratePerSec probes per second, or nil when
// ratePerSec is zero or negative.
func New(ratePerSec int) *ProbeLimiter {
	if ratePerSec <= 0 {
		return nil
	}
	// burst == rate: no saved-up capacity above the per-second maximum
	return &ProbeLimiter{limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)}
}

// Wait blocks until a probe may proceed. Returns a non-nil error only if
// ctx is done, or its deadline is too close, before a token is granted.
func (l *ProbeLimiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}
