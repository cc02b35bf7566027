package asyncsync

import (
	"sync/atomic"
)

// queueMode is the three-state tag for the generic backing's single-waiter
// fast path, as described by spec.md §4.1's mode state machine:
//
//	modeEmpty  (0) --register_if parks one--> modeSingle (1)
//	modeSingle (1) --register_if parks another--> modeMulti (2)  [migrate into FIFO list]
//	modeSingle (1) --handle consumed by wake--> modeEmpty (0)
//	modeMulti  (2) --last parked handle consumed--> modeEmpty (0)
//
// Transition Rules:
//   - genericQueueBackend makes every transition, including
//     modeEmpty<->modeSingle, with store() while holding its mutex; the
//     single slot is guarded by that same mutex, not by a CAS.
//   - Because no transition races, the "CAS loses race" edge of the
//     lock-free design does not occur here.
type queueMode uint64

const (
	// modeEmpty means no waiter is parked anywhere in the queue.
	modeEmpty queueMode = 0
	// modeSingle means exactly one waiter is parked in the single slot.
	modeSingle queueMode = 1
	// modeMulti means one or more waiters are parked in the FIFO container.
	modeMulti queueMode = 2
)

func (m queueMode) String() string {
	switch m {
	case modeEmpty:
		return "Empty"
	case modeSingle:
		return "Single"
	case modeMulti:
		return "Multi"
	default:
		return "Unknown"
	}
}

// fastMode is an atomically-accessed state tag with cache-line padding, so
// polling load() from other goroutines never false-shares with neighboring
// fields. tryTransition exposes a lock-free CAS primitive on top of it, but
// genericQueueBackend currently only ever calls store() while already
// holding its own mutex — see backend_generic.go's correctness note.
type fastMode struct { // betteralign:ignore
	_ [sizeOfCacheLine]byte                      // padding before value //nolint:unused
	v atomic.Uint64                              // mode value
	_ [sizeOfCacheLine - sizeOfAtomicUint64]byte // pad to complete cache line //nolint:unused
}

// newFastMode creates a mode tag starting in modeEmpty.
func newFastMode() *fastMode {
	m := &fastMode{}
	m.v.Store(uint64(modeEmpty))
	return m
}

// load returns the current mode atomically.
func (m *fastMode) load() queueMode {
	return queueMode(m.v.Load())
}

// store unconditionally sets the mode atomically.
// Only used when already holding the FIFO container's lock.
func (m *fastMode) store(mode queueMode) {
	m.v.Store(uint64(mode))
}

// tryTransition attempts an atomic from->to CAS. Returns true on success.
func (m *fastMode) tryTransition(from, to queueMode) bool {
	return m.v.CompareAndSwap(uint64(from), uint64(to))
}
