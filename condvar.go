package asyncsync

import (
	"context"
	"sync/atomic"
	"time"
)

// Condvar is an asynchronous condition variable: Wait suspends the caller
// until some other goroutine calls NotifyOne or NotifyAll. Unlike
// Semaphore, Condvar carries no notion of an associated predicate or
// external state of its own — callers must guard their own condition and
// re-check it after every Wait returns, exactly as with a classical
// condition variable (spurious wakes are explicitly permitted).
//
// Condvar is safe for concurrent use from any number of goroutines.
type Condvar struct {
	generation atomic.Uint64
	waiters    *WaiterQueue
	closed     atomic.Bool
	metrics    *Metrics
}

// NewCondvar creates an empty condvar at generation 0.
func NewCondvar(opts ...CondvarOption) *Condvar {
	cfg := resolveCondvarOptions(opts)
	var qopts []QueueOption
	if cfg.metricsEnabled {
		qopts = append(qopts, WithMetrics(true))
	}
	c := &Condvar{
		waiters: NewWaiterQueue(qopts...),
	}
	// Share the queue's Metrics so latency, waiter depth and wake rate are
	// all reported through one object.
	c.metrics = c.waiters.metrics
	return c
}

// Wait blocks until NotifyOne or NotifyAll has been called at least once
// since Wait started (i.e. the generation counter has advanced), or until
// ctx is done. It carries no predicate of its own: callers MUST re-check
// whatever condition they are actually waiting for after Wait returns,
// because the wake may be spurious or may have been satisfied by a
// different waiter first.
func (c *Condvar) Wait(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClosed
	}

	g := c.generation.Load()
	result, h := c.waiters.RegisterIf(func() bool {
		return c.closed.Load() || c.generation.Load() != g
	})
	if result == ConditionNowTrue {
		if c.closed.Load() {
			return ErrClosed
		}
		return nil
	}

	parkedAt := time.Now()
	if err := c.waiters.Wait(ctx, h); err != nil {
		return err
	}
	if c.metrics != nil {
		c.metrics.Latency.Record(time.Since(parkedAt))
	}
	if c.closed.Load() {
		return ErrClosed
	}
	return nil
}

// NotifyOne wakes at most one waiter currently parked in Wait.
func (c *Condvar) NotifyOne() {
	c.generation.Add(1)
	c.waiters.WakeOne()
}

// NotifyAll wakes every waiter currently parked in Wait.
func (c *Condvar) NotifyAll() {
	c.generation.Add(1)
	c.waiters.WakeAll()
}

// Metrics returns the condvar's metrics, or nil if WithCondvarMetrics was
// not enabled at construction.
func (c *Condvar) Metrics() *Metrics {
	return c.metrics
}

// Close wakes every currently parked Wait with ErrClosed and causes every
// subsequent Wait call to fail the same way. Close is idempotent. See
// Semaphore.Close for the rationale — the same Go-idiomatic supplement,
// grounded the same way.
func (c *Condvar) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.waiters.WakeAll()
	return nil
}
