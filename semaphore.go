package asyncsync

import (
	"context"
	"sync/atomic"
	"time"
)

// Semaphore is an asynchronous counting semaphore: it bounds concurrent
// access to at most max_permits holders at a time, and Acquire blocks the
// calling goroutine, through the waiter queue's backing, until a permit
// becomes available.
//
// Semaphore is safe for concurrent use from any number of goroutines.
type Semaphore struct {
	maxPermits uint64
	available  atomic.Uint64
	waiters    *WaiterQueue
	closed     atomic.Bool
	metrics    *Metrics
}

// NewSemaphore creates a Semaphore with maxPermits permits, all initially
// available. maxPermits must be greater than zero: a zero-capacity
// semaphore can never be acquired, which is almost certainly a caller bug
// rather than an intentional "always block" primitive, so it is rejected
// at construction instead of manifesting as a permanently-stuck Acquire
// with no diagnostic.
func NewSemaphore(maxPermits uint64, opts ...SemaphoreOption) *Semaphore {
	assertf(maxPermits > 0, "NewSemaphore: maxPermits must be greater than zero")

	cfg := resolveSemaphoreOptions(opts)
	var qopts []QueueOption
	if cfg.metricsEnabled {
		qopts = append(qopts, WithMetrics(true))
	}
	s := &Semaphore{
		maxPermits: maxPermits,
		waiters:    NewWaiterQueue(qopts...),
	}
	s.available.Store(maxPermits)
	// Share the queue's Metrics so latency, waiter depth and wake rate are
	// all reported through one object.
	s.metrics = s.waiters.metrics
	return s
}

// tryDecrement attempts to take one permit from available without
// parking. It is the cond passed to the waiter queue's register-if, so it
// must be safe to call repeatedly and concurrently.
func (s *Semaphore) tryDecrement() bool {
	for {
		cur := s.available.Load()
		if cur == 0 {
			return false
		}
		if s.available.CompareAndSwap(cur, cur-1) {
			return true
		}
	}
}

// TryAcquire attempts to acquire a permit without blocking. It reports
// false immediately if none is available.
func (s *Semaphore) TryAcquire() (*Permit, bool) {
	if s.closed.Load() {
		return nil, false
	}
	if s.tryDecrement() {
		return &Permit{sem: s}, true
	}
	return nil, false
}

// Acquire blocks until a permit is available or ctx is done. A canceled
// or expired ctx is this module's rendition of "the host drops the
// suspended acquire-future": no permit is consumed, and per the
// cancellation rule below, no special unregistration is required.
//
// Cancellation: a waiter whose ctx is done does not retry. If its handle
// had already been fired by a wake, it issues one WakeOne of its own before
// returning, so the next parked waiter runs the ordinary retry loop below
// and can take the permit that woke the canceled one — the semaphore never
// hands a permit directly to a woken waiter, so passing the wake on is all
// cancellation has to do. A handle that was not yet fired stays parked and
// absorbs the next wake-one that reaches it.
func (s *Semaphore) Acquire(ctx context.Context) (*Permit, error) {
	var parkedAt time.Time
	for {
		if p, ok := s.TryAcquire(); ok {
			if s.metrics != nil && !parkedAt.IsZero() {
				s.metrics.Latency.Record(time.Since(parkedAt))
			}
			return p, nil
		}

		result, h := s.waiters.RegisterIf(func() bool {
			return s.closed.Load() || s.tryDecrement()
		})
		if result == ConditionNowTrue {
			if s.closed.Load() {
				return nil, ErrClosed
			}
			if s.metrics != nil && !parkedAt.IsZero() {
				s.metrics.Latency.Record(time.Since(parkedAt))
			}
			return &Permit{sem: s}, nil
		}

		if parkedAt.IsZero() {
			parkedAt = time.Now()
		}

		if err := s.waiters.Wait(ctx, h); err != nil {
			if h.isFired() {
				// A wake reached this waiter before it gave up; pass it on
				// so the next parked waiter retries instead of staying parked.
				s.waiters.WakeOne()
			}
			return nil, err
		}
	}
}

// AvailablePermits reports the number of permits not currently held.
// Best-effort; never use it to decide whether Acquire will block.
func (s *Semaphore) AvailablePermits() uint64 {
	return s.available.Load()
}

// MaxPermits reports the semaphore's fixed capacity.
func (s *Semaphore) MaxPermits() uint64 {
	return s.maxPermits
}

// InUse reports how many permits are currently held.
func (s *Semaphore) InUse() uint64 {
	return s.maxPermits - s.available.Load()
}

// Metrics returns the semaphore's metrics, or nil if WithSemaphoreMetrics
// was not enabled at construction.
func (s *Semaphore) Metrics() *Metrics {
	return s.metrics
}

// Close wakes every currently parked Acquire with ErrClosed and causes
// every subsequent Acquire call to fail the same way and every subsequent
// TryAcquire call to report false. Close is
// idempotent. It is a Go-idiomatic supplement: spec.md leaves destruction
// to the caller's discipline of never destroying a semaphore with waiters
// parked, but an explicit, race-free shutdown path is cheap to provide and
// saves callers from having to invent their own.
func (s *Semaphore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.waiters.WakeAll()
	return nil
}

func (s *Semaphore) release() {
	for {
		cur := s.available.Load()
		assertf(cur < s.maxPermits, "Release: available permits would exceed max_permits (%d)", s.maxPermits)
		if s.available.CompareAndSwap(cur, cur+1) {
			break
		}
	}
	logPermitReleased(s.available.Load())
	s.waiters.WakeOne()
}

// Permit is the RAII-style ownership token returned by a successful
// Acquire or TryAcquire. Release must be called exactly once to return the
// permit to its semaphore; Release is idempotent, so a deferred call
// alongside an earlier explicit one is harmless.
type Permit struct {
	sem      *Semaphore
	released atomic.Bool
}

// Release returns the permit to its semaphore and wakes one waiter (if
// any). Calling Release more than once is a safe no-op after the first
// call.
func (p *Permit) Release() {
	if !p.released.CompareAndSwap(false, true) {
		return
	}
	p.sem.release()
}
