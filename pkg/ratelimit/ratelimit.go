package ratelimit

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces outbound article fetches so a burst of queries does not
// hammer a single publisher. The zero rate disables pacing entirely.
// It is safe for concurrent use.
type Limiter struct {
	limiter  *rate.Limiter
	jitter   float64
	interval time.Duration
}

// NewLimiter creates a limiter allowing rps operations per second with up to
// jitter (0.0 to 1.0) of one interval added as random delay. rps <= 0 yields
// a limiter that never blocks.
func NewLimiter(rps float64, jitter float64) *Limiter {
	if rps <= 0 {
		return &Limiter{}
	}

	switch {
	case jitter < 0:
		jitter = 0
	case jitter > 1:
		jitter = 1
	}

	return &Limiter{
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		jitter:   jitter,
		interval: time.Duration(float64(time.Second) / rps),
	}
}

// Enabled reports whether Wait can block.
func (l *Limiter) Enabled() bool {
	return l != nil && l.limiter != nil
}

// Wait blocks until the next operation may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if !l.Enabled() {
		return nil
	}

	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}

	if l.jitter == 0 {
		return nil
	}

	extra := time.Duration(float64(l.interval) * l.jitter * rand.Float64())
	if extra <= 0 {
		return nil
	}

	timer := time.NewTimer(extra)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
