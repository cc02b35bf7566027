package asyncsync

import (
	"context"
	"sync/atomic"
)

// RegisterResult is the outcome of WaiterQueue.RegisterIf, as defined by
// spec.md §4.1.
type RegisterResult int

const (
	// Registered means cond evaluated false inside the atomic register
	// window and the handle has been parked. The caller must now wait for
	// its handle to fire (or for its context to be canceled).
	Registered RegisterResult = iota
	// ConditionNowTrue means cond evaluated true inside the atomic
	// register window; the caller should proceed without parking. No
	// handle was stored.
	ConditionNowTrue
)

// handle is the notification handle described in spec.md's Data Model: an
// opaque, cheaply clonable token that, when fired, marks a suspended
// goroutine ready. In Go there is no separate suspend/resume step — the
// goroutine blocks directly on ready, so "firing the handle" is simply
// closing that channel. fired guards against a double-close, which would
// otherwise panic; redundant Fire calls are the required idempotent no-op.
type handle struct {
	ready chan struct{}
	fired atomic.Bool
}

func newHandle() *handle {
	return &handle{ready: make(chan struct{})}
}

// fire marks the handle ready. Safe to call more than once and safe to
// call concurrently with other Fire calls on the same handle.
func (h *handle) fire() {
	if h.fired.CompareAndSwap(false, true) {
		close(h.ready)
	}
}

// isFired reports whether fire has already been called. Best-effort: used
// only to decide whether a cancellation raced with a wake, never to gate
// correctness.
func (h *handle) isFired() bool {
	return h.fired.Load()
}

// queueBackend is the pluggable realization of the waiter queue's
// register-if/wake-one/wake-all contract (spec.md §4.1). WaiterQueue
// delegates to exactly one queueBackend instance, built by newBackend (one
// definition per platform, chosen by build tags; see backend_linux.go,
// backend_windows.go and backend_fallback.go) — "no per-primitive
// configuration is exposed" per spec.md §6.
type queueBackend interface {
	// registerIf evaluates cond inside the backend's atomic register
	// window. If cond is true, returns ConditionNowTrue without parking
	// h. Otherwise h is parked and Registered is returned; cond MUST NOT
	// be called again by this method once false has caused a park.
	registerIf(cond func() bool, h *handle) RegisterResult
	// wakeOne consumes at most one parked handle (FIFO, where the backend
	// documents FIFO) and fires it outside any internal lock.
	wakeOne()
	// wakeAll fires every handle parked at the call's linearization
	// point, outside any internal lock. A panic from one handle must not
	// prevent the remaining handles from being fired.
	wakeAll()
	// waiterCount is a best-effort diagnostic snapshot.
	waiterCount() int
	// wait blocks the caller until h fires or ctx is done, using whatever
	// completion-source primitive the backend is built on. Every backend's
	// wait MUST still treat h.ready as the ultimate source of truth (it is
	// always safe to busy-recheck h.isFired() and fall back to it), since
	// registerIf's correctness argument depends only on h, never on a
	// backend-specific wait mechanism.
	wait(ctx context.Context, h *handle) error
}

// WaiterQueue is the shared parking/waking structure spec.md §3 and §4.1
// describe: it stores notification handles parked against a condition and
// provides the race-free register-if operation plus one-shot and
// broadcast wake operations. Each primitive (Semaphore, Condvar) owns
// exactly one WaiterQueue.
type WaiterQueue struct {
	backend    queueBackend
	registered atomic.Uint64 // lifetime count, diagnostics only
	woken      atomic.Uint64 // lifetime count, diagnostics only
	metrics    *Metrics
}

// NewWaiterQueue creates an empty waiter queue using the process-wide
// selected backend (see ActiveBackend).
func NewWaiterQueue(opts ...QueueOption) *WaiterQueue {
	cfg := resolveQueueOptions(opts)
	q := &WaiterQueue{backend: newBackend()}
	if cfg.metricsEnabled {
		q.metrics = newMetrics()
	}
	logBackendSelected(ActiveBackend())
	return q
}

// RegisterIf attempts to park a freshly-created handle against cond. See
// queueBackend and spec.md §4.1 for the contract. The returned handle is
// nil when the result is ConditionNowTrue.
func (q *WaiterQueue) RegisterIf(cond func() bool) (RegisterResult, *handle) {
	h := newHandle()
	result := q.backend.registerIf(cond, h)
	if result != Registered {
		return result, nil
	}
	q.registered.Add(1)
	if q.metrics != nil {
		q.metrics.Waiters.Update(q.backend.waiterCount())
	}
	logWaiterParked(q.backend.waiterCount())
	return result, h
}

// WakeOne consumes at most one parked handle in FIFO registration order
// (or the backend's documented weaker ordering) and fires it.
func (q *WaiterQueue) WakeOne() {
	before := q.backend.waiterCount()
	q.backend.wakeOne()
	after := q.backend.waiterCount()
	if woke := before - after; woke > 0 {
		q.woken.Add(uint64(woke))
		if q.metrics != nil {
			q.metrics.WakeRate.Increment()
		}
	}
	logWakeOne(after)
}

// WakeAll fires every handle parked at the call's linearization point.
func (q *WaiterQueue) WakeAll() {
	n := q.backend.waiterCount()
	q.backend.wakeAll()
	if n > 0 {
		q.woken.Add(uint64(n))
		if q.metrics != nil {
			q.metrics.WakeRate.Increment()
		}
	}
	logWakeAll(n)
}

// WaiterCount is a best-effort diagnostic snapshot; never use it for
// synchronization (spec.md §4.1 "waiter_count ... used only for
// diagnostics and tests").
func (q *WaiterQueue) WaiterCount() int {
	return q.backend.waiterCount()
}

// Wait blocks until h fires or ctx is done, via the backend's completion
// source (spec.md §4.1's "Register-if submits a completion-source wait
// tied to the external atomic that cond reads"). Callers obtain h from a
// prior RegisterIf call that returned Registered.
func (q *WaiterQueue) Wait(ctx context.Context, h *handle) error {
	return q.backend.wait(ctx, h)
}

// Stats returns lifetime registration/wake counters for diagnostics.
func (q *WaiterQueue) Stats() (registered, woken uint64, parked int) {
	return q.registered.Load(), q.woken.Load(), q.backend.waiterCount()
}
