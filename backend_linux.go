//go:build linux

package asyncsync

import (
	"context"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// futexPollInterval bounds how long a single FUTEX_WAIT call blocks before
// linuxFutexQueueBackend.wait rechecks h and ctx. A real wake always races
// the bounded wait via FUTEX_WAKE (observed as futexWord changing under the
// waiter), so this interval is a liveness backstop for ctx cancellation and
// for the TOCTOU window between reading futexWord and issuing the syscall,
// not the primary wake path.
const futexPollInterval = 20 * time.Millisecond

// linuxFutexQueueBackend is the Linux tier of the waiter queue (spec.md
// §4.1's three-tier platform strategy). It reuses genericQueueBackend's
// FIFO container and Empty/Single/Multi mode machine verbatim for all
// correctness-critical bookkeeping (registerIf, the parked handle itself,
// and waiterCount) — futexWord is not part of that bookkeeping, only of how
// a parked waiter actually blocks.
//
// Every wake bumps futexWord and issues a genuine FUTEX_WAKE against it;
// wait loops on FUTEX_WAIT against the same word, so the kernel — not a Go
// channel — is what parks the calling goroutine's carrier thread between
// wakes. h.ready remains the final source of truth (wait always rechecks
// h.isFired() first), so a missed or spurious futex wake only costs an
// extra futexPollInterval-bounded recheck, never correctness.
type linuxFutexQueueBackend struct {
	*genericQueueBackend
	futexWord *uint32
}

func newBackend() queueBackend {
	activeBackend.Store(int32(BackendLinuxFutex))
	return &linuxFutexQueueBackend{
		genericQueueBackend: newGenericQueueBackend(),
		futexWord:           new(uint32),
	}
}

func (b *linuxFutexQueueBackend) wakeOne() {
	b.genericQueueBackend.wakeOne()
	atomic.AddUint32(b.futexWord, 1)
	futexWake(b.futexWord, 1)
}

func (b *linuxFutexQueueBackend) wakeAll() {
	b.genericQueueBackend.wakeAll()
	atomic.AddUint32(b.futexWord, 1)
	futexWake(b.futexWord, 1<<30)
}

// wait parks on the futex word rather than selecting on h.ready directly:
// each iteration samples futexWord, confirms h has not already fired and
// ctx is not already done, then blocks in-kernel via FUTEX_WAIT until
// either a wake bumps the word (FUTEX_WAIT returns because the compared
// value changed or because of the wake) or futexPollInterval elapses.
func (b *linuxFutexQueueBackend) wait(ctx context.Context, h *handle) error {
	for {
		if h.isFired() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		val := atomic.LoadUint32(b.futexWord)
		futexWaitTimeout(b.futexWord, val, futexPollInterval)
	}
}

// futexWake issues a raw FUTEX_WAKE against addr, waking up to n waiters
// parked on it at the kernel level.
func futexWake(addr *uint32, n int32) {
	_, _, _ = unix.Syscall(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(unix.FUTEX_WAKE),
		uintptr(n))
}

// futexWaitTimeout blocks the calling thread in-kernel while *addr == val,
// for at most timeout. Returns early (EAGAIN) if the value has already
// changed by the time the kernel checks it, or (EINTR/ETIMEDOUT) on signal
// or timeout — every outcome is handled identically by the caller's loop,
// so the return value is deliberately ignored.
func futexWaitTimeout(addr *uint32, val uint32, timeout time.Duration) {
	ts := unix.Timespec{
		Sec:  int64(timeout / time.Second),
		Nsec: int64(timeout % time.Second),
	}
	_, _, _ = unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(unix.FUTEX_WAIT),
		uintptr(val),
		uintptr(unsafe.Pointer(&ts)),
		0, 0)
}
