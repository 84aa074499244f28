package lingo

import (
	"context"
	"sync"
)

// Scheduler is the admission controller bounding simultaneous backend
// calls. Tasks under the limit start immediately; the rest wait in FIFO
// order and are admitted one by one as running tasks complete. There is
// no priority and no cancellation of queued slots beyond the waiter's own
// context.
type Scheduler struct {
	mu      sync.Mutex
	limit   int
	running int
	queue   []*waiter
}

type waiter struct {
	ready     chan struct{}
	abandoned bool
}

// NewScheduler creates a scheduler admitting up to limit concurrent tasks.
func NewScheduler(limit int) *Scheduler {
	if limit <= 0 {
		limit = defaultMaxConcurrent
	}
	return &Scheduler{limit: limit}
}

// Acquire blocks until a slot is available or ctx ends. On success the
// caller owns one slot and must call Release exactly once.
func (s *Scheduler) Acquire(ctx context.Context) error {
	s.mu.Lock()
	if s.running < s.limit {
		s.running++
		s.mu.Unlock()
		return nil
	}
	w := &waiter{ready: make(chan struct{})}
	s.queue = append(s.queue, w)
	s.mu.Unlock()

	select {
	case <-w.ready:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		select {
		case <-w.ready:
			// Admitted concurrently with cancellation; keep the slot and
			// let the caller proceed so Release stays balanced.
			s.mu.Unlock()
			return nil
		default:
			w.abandoned = true
		}
		s.mu.Unlock()
		return ctx.Err()
	}
}

// Release returns a slot and admits the next queued waiter, if any.
func (s *Scheduler) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running--
	s.admitLocked()
}

// SetLimit adjusts the concurrency cap, admitting queued waiters if the
// cap grew.
func (s *Scheduler) SetLimit(limit int) {
	if limit <= 0 {
		limit = defaultMaxConcurrent
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limit = limit
	s.admitLocked()
}

func (s *Scheduler) admitLocked() {
	for s.running < s.limit && len(s.queue) > 0 {
		w := s.queue[0]
		s.queue = s.queue[1:]
		if w.abandoned {
			continue
		}
		s.running++
		close(w.ready)
	}
}

// Running reports the number of currently admitted tasks.
func (s *Scheduler) Running() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Queued reports the number of tasks waiting for admission.
func (s *Scheduler) Queued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, w := range s.queue {
		if !w.abandoned {
			n++
		}
	}
	return n
}
