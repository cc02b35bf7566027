package asyncsync

import (
	"context"
	"sync"
	"testing"
	"time"
)

// TestSemaphore_HighContention hammers a small-capacity semaphore with many
// more goroutines than permits, each doing a handful of acquire/release
// cycles, and checks that InUse never exceeds MaxPermits and every goroutine
// eventually completes.
func TestSemaphore_HighContention(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping contention stress test in short mode")
	}

	const maxPermits = 4
	const goroutines = 64
	const cyclesPerGoroutine = 20

	s := NewSemaphore(maxPermits)

	var inUse int64
	var mu sync.Mutex
	checkInvariant := func(delta int64) {
		mu.Lock()
		inUse += delta
		if inUse < 0 || inUse > maxPermits {
			mu.Unlock()
			t.Errorf("InUse invariant violated: observed %d permits held, cap %d", inUse, maxPermits)
			return
		}
		mu.Unlock()
	}

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			for c := 0; c < cyclesPerGoroutine; c++ {
				p, err := s.Acquire(ctx)
				if err != nil {
					t.Errorf("unexpected Acquire error: %v", err)
					return
				}
				checkInvariant(1)
				checkInvariant(-1)
				p.Release()
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("contention stress test did not complete in time (possible deadlock)")
	}

	if got := s.AvailablePermits(); got != maxPermits {
		t.Fatalf("AvailablePermits() after draining = %d, want %d", got, maxPermits)
	}
}

// TestSemaphore_RapidAcquireReleaseCycles exercises fast repeated
// acquire/release from a single goroutine, confirming state always settles
// back to fully available and no permits are lost.
func TestSemaphore_RapidAcquireReleaseCycles(t *testing.T) {
	s := NewSemaphore(8)
	const n = 2000
	for i := 0; i < n; i++ {
		p, err := s.Acquire(context.Background())
		if err != nil {
			t.Fatalf("unexpected error on cycle %d: %v", i, err)
		}
		p.Release()
	}
	if got := s.AvailablePermits(); got != 8 {
		t.Fatalf("AvailablePermits() = %d, want 8", got)
	}
}
