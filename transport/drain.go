package transport

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Drain tracks in-flight dispatches so the transport can finish
// cooperatively: it waits for started work but never aborts it. There
// is no forced-exit timer here; callers that want one bound the wait
// through the context.
type Drain struct {
	draining  atomic.Bool
	inFlight  atomic.Int64
	doneCh    chan struct{}
	closeOnce sync.Once
}

// NewDrain creates a drain tracker.
func NewDrain() *Drain {
	return &Drain{
		doneCh: make(chan struct{}),
	}
}

// Track increments the in-flight counter.
// Returns false if draining has begun and new work should be rejected.
func (d *Drain) Track() bool {
	if d.draining.Load() {
		return false
	}
	d.inFlight.Add(1)
	return true
}

// Complete decrements the in-flight counter.
func (d *Drain) Complete() {
	d.inFlight.Add(-1)
}

// InFlight returns the number of in-flight dispatches.
func (d *Drain) InFlight() int64 {
	return d.inFlight.Load()
}

// IsDraining returns true once Wait has been called.
func (d *Drain) IsDraining() bool {
	return d.draining.Load()
}

// Wait stops admitting new work and blocks until all in-flight
// dispatches complete or ctx is done.
func (d *Drain) Wait(ctx context.Context) error {
	d.draining.Store(true)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for d.inFlight.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	d.closeOnce.Do(func() {
		close(d.doneCh)
	})
	return nil
}

// Done returns a channel that is closed once draining has finished.
func (d *Drain) Done() <-chan struct{} {
	return d.doneCh
}
