package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Policy paces calls against throttled upstream providers. One token per
// interval with burst 1: the first Wait returns immediately, every
// following one is spaced by at least the interval. A zero interval
// disables pacing.
type Policy struct {
	limiter *rate.Limiter
}

func New(interval time.Duration) *Policy {
	if interval <= 0 {
		return &Policy{}
	}
	return &Policy{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next call is allowed or the context is done.
func (p *Policy) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}
