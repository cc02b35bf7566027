// Package asyncsync provides fair, bounded-concurrency asynchronous
// synchronization primitives for goroutines: a counting [Semaphore] and a
// [Condvar], both built atop a pluggable, platform-aware waiter-queue
// abstraction.
//
// # Architecture
//
// Every primitive delegates its parking and waking to a [WaiterQueue],
// which in turn delegates to one of three backings, fixed by the build
// platform and reported by [ActiveBackend]:
//   - the generic backing (always available): a lock-then-check FIFO
//     container with a single-waiter fast path, strict FIFO ordering, and
//     zero spurious wakes; a parked waiter blocks on a plain channel;
//   - the Linux backing: the same FIFO container and wake selection, but a
//     parked waiter blocks in-kernel via a bounded FUTEX_WAIT against a
//     generation word that wakeOne/wakeAll bump and FUTEX_WAKE;
//   - the Windows backing: the same FIFO container and wake selection, but
//     a parked waiter blocks via WaitOnAddress against an equivalent word
//     woken through the WakeByAddress family.
//
// No primitive has per-instance configuration over which backing it uses
// — selection is process-wide and automatic.
//
// # Translation from suspend/resume to goroutines
//
// There is no separate "suspend with a handle, resume later" protocol in
// this package: a goroutine that must wait simply blocks on a channel.
// Cancellation — "the host drops the future" in an async runtime — is the
// familiar Go idiom of a canceled [context.Context]: Acquire and Wait both
// accept one and return its error the moment it is done. A canceled
// waiter's parked handle is never actively unregistered; it is left as a
// "ghost" that a later wake-one may consume, firing a handle nobody waits
// on, which is the bound of at most one absorbed wake-one per
// cancellation. A canceled Acquire whose handle had already been fired
// passes that wake on with a WakeOne of its own.
//
// # Thread Safety
//
// [Semaphore] and [Condvar] are safe for concurrent use from any number
// of goroutines. Every shared counter is accessed through atomics or a
// short internal lock; no lock is ever held across a suspension point or
// across the invocation of a notification handle.
//
// # Usage
//
//	sem := asyncsync.NewSemaphore(4)
//	permit, err := sem.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer permit.Release()
//
//	cv := asyncsync.NewCondvar()
//	go func() {
//	    mu.Lock()
//	    ready = true
//	    mu.Unlock()
//	    cv.NotifyAll()
//	}()
//	for !ready {
//	    if err := cv.Wait(ctx); err != nil {
//	        return err
//	    }
//	}
//
// # Diagnostics
//
// [ActiveBackend] reports the selected backing. [Semaphore.Metrics] and
// [Condvar.Metrics] return latency/depth/rate statistics when
// WithSemaphoreMetrics/WithCondvarMetrics was enabled at construction.
// Logging goes through the [Logger] interface and
// [SetStructuredLogger]; the logiface_adapter.go file provides an
// optional bridge to github.com/joeycumines/logiface for callers who
// already standardize on it.
package asyncsync
