package mpool

import (
	"sync"
	"unsafe"
)

// SafePool is a mutex-protected wrapper around Pool for concurrent use.
// All operations are serialized through one lock; hooks and finalizers
// run with the lock held and must not re-enter the pool.
type SafePool struct {
	mu sync.Mutex
	p  *Pool
}

// NewSafe creates a thread-safe pool with the given parameters.
func NewSafe(elemSize, slotsPerCluster int, opts ...Option) *SafePool {
	return &SafePool{p: New(elemSize, slotsPerCluster, opts...)}
}

// Alloc thread-safely returns one slot, or nil on exhaustion.
func (s *SafePool) Alloc(near unsafe.Pointer) unsafe.Pointer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Alloc(near)
}

// Free thread-safely returns a slot to the pool and nils the reference.
func (s *SafePool) Free(ref *unsafe.Pointer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Free(ref)
}

// Reserve thread-safely ensures at least n slots are available.
func (s *SafePool) Reserve(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Reserve(n)
}

// Available thread-safely returns the current free slot count.
func (s *SafePool) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Available()
}

// Destroy thread-safely finalizes live slots and releases all clusters.
func (s *SafePool) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Destroy()
}

// Metrics thread-safely returns a snapshot of pool statistics.
func (s *SafePool) Metrics() PoolMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Metrics()
}

// Check thread-safely verifies the pool invariants.
func (s *SafePool) Check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Check()
}
