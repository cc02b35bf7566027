package asyncsync

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Acquire and Wait when the primitive has been
// closed while the call was parked, or is already closed when the call is
// made (spec.md §7: "a closed primitive must unblock every parked waiter
// and reject every subsequent call").
var ErrClosed = errors.New("asyncsync: primitive closed")

// assertf panics with a formatted message identifying the violated
// invariant. Reserved for programmer errors spec.md §7 classifies as
// unrecoverable by design — a zero-capacity Semaphore, or releasing more
// permits than were ever acquired — never for conditions a caller can hit
// through ordinary concurrent use.
func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("asyncsync: "+format, args...))
	}
}
