//go:build windows

package asyncsync

import (
	"context"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"
)

// waitOnAddressPollMs bounds a single WaitOnAddress call, for the same
// reason linuxFutexQueueBackend.wait bounds its FUTEX_WAIT calls: it is a
// liveness backstop for ctx cancellation and the TOCTOU window between
// sampling word and issuing the syscall, not the primary wake path.
const waitOnAddressPollMs = 20

// windowsWaitOnAddressQueueBackend is the Windows tier of the waiter queue
// (spec.md §4.1's three-tier platform strategy). Like its Linux sibling, it
// reuses genericQueueBackend's FIFO container and mode machine for all
// correctness-critical bookkeeping, and parks waiting goroutines on the
// WaitOnAddress family instead of a bare channel select: every wake bumps a
// generation word and issues a genuine WakeByAddress syscall against it,
// which WaitOnAddress blocks on in-kernel.
//
// WaitOnAddress and friends live in api-ms-win-core-synch-l1-2-0.dll and
// are not exposed as typed wrappers in golang.org/x/sys/windows, so they
// are resolved the same way the rest of the ecosystem resolves unwrapped
// Win32 APIs: a lazy DLL handle plus NewProc.
var (
	modSynch                = windows.NewLazySystemDLL("api-ms-win-core-synch-l1-2-0.dll")
	procWaitOnAddress       = modSynch.NewProc("WaitOnAddress")
	procWakeByAddressSingle = modSynch.NewProc("WakeByAddressSingle")
	procWakeByAddressAll    = modSynch.NewProc("WakeByAddressAll")
)

type windowsWaitOnAddressQueueBackend struct {
	*genericQueueBackend
	word *uint32
}

func newBackend() queueBackend {
	activeBackend.Store(int32(BackendWindowsWaitOnAddress))
	return &windowsWaitOnAddressQueueBackend{
		genericQueueBackend: newGenericQueueBackend(),
		word:                new(uint32),
	}
}

func (b *windowsWaitOnAddressQueueBackend) wakeOne() {
	b.genericQueueBackend.wakeOne()
	atomic.AddUint32(b.word, 1)
	_, _, _ = procWakeByAddressSingle.Call(uintptr(unsafe.Pointer(b.word)))
}

func (b *windowsWaitOnAddressQueueBackend) wakeAll() {
	b.genericQueueBackend.wakeAll()
	atomic.AddUint32(b.word, 1)
	_, _, _ = procWakeByAddressAll.Call(uintptr(unsafe.Pointer(b.word)))
}

// wait parks on WaitOnAddress rather than selecting on h.ready directly:
// each iteration samples word into a local compare value, confirms h has
// not already fired and ctx is not already done, then blocks in-kernel via
// WaitOnAddress until either a wake changes the word or waitOnAddressPollMs
// elapses.
func (b *windowsWaitOnAddressQueueBackend) wait(ctx context.Context, h *handle) error {
	for {
		if h.isFired() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		compare := atomic.LoadUint32(b.word)
		waitOnAddress(b.word, &compare, waitOnAddressPollMs)
	}
}

// waitOnAddress blocks the calling thread in-kernel while *addr == *compare,
// for at most timeoutMs. The return value is deliberately ignored: whether
// it returns because of a real wake, a spurious wake, or a timeout, the
// caller's loop rechecks h and ctx identically either way.
func waitOnAddress(addr, compare *uint32, timeoutMs uint32) {
	_, _, _ = procWaitOnAddress.Call(
		uintptr(unsafe.Pointer(addr)),
		uintptr(unsafe.Pointer(compare)),
		uintptr(4), // AddressSize: sizeof(uint32)
		uintptr(timeoutMs),
	)
}
