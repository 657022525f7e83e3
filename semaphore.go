package fuse

import (
	"math"
	"sync"
)

// semaphore is the admission gate: a non-blocking counting semaphore
// bounding the number of in-flight calls. Safe for concurrent use.
type semaphore struct {
	mu       sync.Mutex
	capacity int
	inUse    int
}

// newSemaphore creates a semaphore with the given capacity.
// A capacity <= 0 means effectively unbounded.
func newSemaphore(capacity int) *semaphore {
	if capacity <= 0 {
		capacity = math.MaxInt
	}
	return &semaphore{capacity: capacity}
}

// tryAcquire consumes one ticket if one is available. It never blocks;
// a false return has no side effects.
func (s *semaphore) tryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inUse >= s.capacity {
		return false
	}
	s.inUse++
	return true
}

// release returns one ticket to the pool. It must be called exactly
// once per successful tryAcquire; an unpaired release is a programming
// error and panics.
func (s *semaphore) release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inUse == 0 {
		panic("fuse: semaphore release without acquire")
	}
	s.inUse--
}

// outstanding returns the number of tickets currently in use.
func (s *semaphore) outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inUse
}
