package lingo

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestScheduler_AdmitsUnderLimit(t *testing.T) {
	s := NewScheduler(2)

	if err := s.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := s.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if s.Running() != 2 {
		t.Errorf("Running = %d, want 2", s.Running())
	}
}

func TestScheduler_ThirdWaitsForCompletion(t *testing.T) {
	// maxConcurrentRequests=2: two tasks run immediately, the third
	// starts only after one of the first two completes.
	s := NewScheduler(2)

	_ = s.Acquire(context.Background())
	_ = s.Acquire(context.Background())

	var thirdStarted atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.Acquire(context.Background())
		thirdStarted.Store(true)
	}()

	waitFor(t, func() bool { return s.Queued() == 1 })
	if thirdStarted.Load() {
		t.Fatal("third task should be queued, not running")
	}

	s.Release()
	wg.Wait()
	if !thirdStarted.Load() {
		t.Fatal("third task should run once a slot frees up")
	}
	if s.Running() != 2 {
		t.Errorf("Running = %d, want 2", s.Running())
	}
}

func TestScheduler_FIFOOrder(t *testing.T) {
	s := NewScheduler(1)
	_ = s.Acquire(context.Background())

	var order []int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 1; i <= 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Acquire(context.Background())
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			s.Release()
		}(i)
		// Queue one waiter at a time so arrival order is deterministic.
		waitFor(t, func() bool { return s.Queued() == i })
	}

	s.Release()
	wg.Wait()

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("admission order = %v, want [1 2 3]", order)
	}
}

func TestScheduler_AbandonedWaiterSkipped(t *testing.T) {
	s := NewScheduler(1)
	_ = s.Acquire(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Acquire(ctx); err == nil {
		t.Fatal("expected context error")
	}

	var admitted atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.Acquire(context.Background())
		admitted.Store(true)
	}()
	waitFor(t, func() bool { return s.Queued() == 1 })

	s.Release()
	wg.Wait()
	if !admitted.Load() {
		t.Fatal("live waiter should be admitted past the abandoned one")
	}
}

func TestScheduler_SetLimitAdmitsWaiters(t *testing.T) {
	s := NewScheduler(1)
	_ = s.Acquire(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.Acquire(context.Background())
	}()
	waitFor(t, func() bool { return s.Queued() == 1 })

	s.SetLimit(2)
	wg.Wait()
	if s.Running() != 2 {
		t.Errorf("Running = %d, want 2 after raising the limit", s.Running())
	}
}
