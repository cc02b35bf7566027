package asyncsync

import (
	"context"
	"testing"
	"time"
)

// TestSemaphore_FIFOFairnessUnderSaturation mirrors the acceptance
// scenario: capacity 1, task A holds the only permit, tasks B/C/D queue
// up in order, and releasing the permit repeatedly must wake them in the
// order they registered (the generic backing's strict FIFO guarantee).
func TestSemaphore_FIFOFairnessUnderSaturation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping fairness stress test in short mode")
	}

	s := NewSemaphore(1)
	a, err := s.Acquire(context.Background())
	if err != nil {
		t.Fatalf("unexpected error acquiring for A: %v", err)
	}

	order := make(chan string, 3)

	// Start B, C, D one at a time, pausing between each so it has time to
	// park before the next is started — registration order is otherwise
	// a race between goroutines.
	for _, name := range []string{"B", "C", "D"} {
		name := name
		go func() {
			p, err := s.Acquire(context.Background())
			if err != nil {
				t.Errorf("unexpected error acquiring for %s: %v", name, err)
				return
			}
			order <- name
			p.Release()
		}()
		time.Sleep(20 * time.Millisecond)
	}

	a.Release()

	var got []string
	for i := 0; i < 3; i++ {
		select {
		case name := <-order:
			got = append(got, name)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for waiter %d to acquire", i)
		}
	}

	want := []string{"B", "C", "D"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("acquisition order = %v, want %v", got, want)
		}
	}
}
