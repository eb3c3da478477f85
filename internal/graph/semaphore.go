package graph

import (
	"context"
	"sync"
)

// coreSemaphore is a weighted counting semaphore accounting for CPU cores.
// A nil semaphore means unlimited capacity.
type coreSemaphore struct {
	mu    sync.Mutex
	cond  *sync.Cond
	free  int
	total int
}

// newCoreSemaphore creates a semaphore with the given core capacity.
// If n <= 0, returns nil (unlimited).
func newCoreSemaphore(n int) *coreSemaphore {
	if n <= 0 {
		return nil
	}
	s := &coreSemaphore{free: n, total: n}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Acquire blocks until n cores are available or the context is cancelled.
// Requests larger than the total capacity are clamped so they can still run.
// Returns false if the context was cancelled while waiting.
func (s *coreSemaphore) Acquire(ctx context.Context, n int) bool {
	if s == nil {
		return true
	}
	if n > s.total {
		n = s.total
	}
	stop := context.AfterFunc(ctx, func() {
		s.cond.Broadcast()
	})
	defer stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for s.free < n {
		if ctx.Err() != nil {
			return false
		}
		s.cond.Wait()
	}
	s.free -= n
	return true
}

// Release returns n cores to the pool.
func (s *coreSemaphore) Release(n int) {
	if s == nil {
		return
	}
	if n > s.total {
		n = s.total
	}
	s.mu.Lock()
	s.free += n
	s.mu.Unlock()
	s.cond.Broadcast()
}
