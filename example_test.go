package asyncsync_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/asyncsync/asyncsync"
)

// Example_semaphoreBasicUsage demonstrates bounding concurrent access to a
// shared resource with a Semaphore.
func Example_semaphoreBasicUsage() {
	sem := asyncsync.NewSemaphore(2)

	var mu sync.Mutex
	var active, peak int
	track := func(delta int) {
		mu.Lock()
		active += delta
		if active > peak {
			peak = active
		}
		mu.Unlock()
	}

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := sem.Acquire(context.Background())
			if err != nil {
				return
			}
			defer p.Release()
			track(1)
			time.Sleep(5 * time.Millisecond)
			track(-1)
		}()
	}
	wg.Wait()

	fmt.Printf("peak concurrent holders: %d\n", peak)

	// Output:
	// peak concurrent holders: 2
}

// Example_semaphoreTryAcquire demonstrates the non-blocking variant, useful
// for "fail fast if the resource is busy" call sites.
func Example_semaphoreTryAcquire() {
	sem := asyncsync.NewSemaphore(1)

	p1, ok := sem.TryAcquire()
	if !ok {
		fmt.Println("unexpected: first TryAcquire failed")
		return
	}

	_, ok = sem.TryAcquire()
	fmt.Printf("second TryAcquire while held: %v\n", ok)

	p1.Release()

	p2, ok := sem.TryAcquire()
	fmt.Printf("TryAcquire after release: %v\n", ok)
	p2.Release()

	// Output:
	// second TryAcquire while held: false
	// TryAcquire after release: true
}

// Example_semaphoreCancellation demonstrates that a context cancellation
// unblocks a parked Acquire without ever consuming a permit.
func Example_semaphoreCancellation() {
	sem := asyncsync.NewSemaphore(1)
	p, _ := sem.Acquire(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := sem.Acquire(ctx)
	fmt.Printf("blocked acquire error: %v\n", errors.Is(err, context.DeadlineExceeded))

	p.Release()

	// Output:
	// blocked acquire error: true
}

// Example_condvarNotifyAll demonstrates the classical "guard a boolean
// condition with a condvar" pattern: waiters must re-check the predicate
// after Wait returns rather than trusting the wake alone.
func Example_condvarNotifyAll() {
	c := asyncsync.NewCondvar()
	var mu sync.Mutex
	ready := false

	var wg sync.WaitGroup
	results := make(chan int, 3)
	for i := 1; i <= 3; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			mu.Lock()
			for !ready {
				mu.Unlock()
				if err := c.Wait(context.Background()); err != nil {
					return
				}
				mu.Lock()
			}
			mu.Unlock()
			results <- i
		}()
	}

	time.Sleep(10 * time.Millisecond)
	mu.Lock()
	ready = true
	mu.Unlock()
	c.NotifyAll()

	wg.Wait()
	close(results)

	count := 0
	for range results {
		count++
	}
	fmt.Printf("waiters woken: %d\n", count)

	// Output:
	// waiters woken: 3
}

// Example_condvarNotifyOne demonstrates waking a single waiter at a time,
// useful for handing off work items one at a time to a pool of consumers.
func Example_condvarNotifyOne() {
	c := asyncsync.NewCondvar()
	done := make(chan struct{})

	go func() {
		_ = c.Wait(context.Background())
		fmt.Println("worker woken")
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	c.NotifyOne()
	<-done

	// Output:
	// worker woken
}
