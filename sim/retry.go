package sim

import (
	"time"

	"github.com/cenkalti/backoff"
)

// RetryAxis decorates an axis with retry-on-failure using an exponential
// backoff.  The scan engine never retries hardware errors; retry policy
// belongs to the binding that owns the device, which is why this lives with
// the bindings and not with the coordinator.
type RetryAxis struct {
	// Inner is the axis actually driven
	Inner interface {
		MoveTo(pos float64) error
	}

	// MaxElapsed bounds the total time spent retrying one move.
	// Zero means one second.
	MaxElapsed time.Duration
}

// MoveTo retries the inner move until it succeeds or MaxElapsed is exhausted
func (a *RetryAxis) MoveTo(p float64) error {
	maxElapsed := a.MaxElapsed
	if maxElapsed == 0 {
		maxElapsed = time.Second
	}
	op := func() error { return a.Inner.MoveTo(p) }
	return backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     time.Millisecond,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         50 * time.Millisecond,
		MaxElapsedTime:      maxElapsed,
		Clock:               backoff.SystemClock,
	})
}
