package mpool

import "unsafe"

// TypedPool wraps a Pool behind a type-safe façade: slots are handed
// out and taken back as *T, sized automatically from T. Like Pool it is
// not goroutine-safe.
type TypedPool[T any] struct {
	pool Pool
}

// NewTyped creates a pool of T-sized slots. Combine with
// WithFinalizerFor for a typed finalizer.
func NewTyped[T any](slotsPerCluster int, opts ...Option) *TypedPool[T] {
	var zero T
	tp := &TypedPool[T]{}
	tp.pool.init(int(unsafe.Sizeof(zero)), slotsPerCluster, opts)
	return tp
}

// Alloc returns one slot as *T, or nil on exhaustion. The slot's
// contents are undefined; initialize before use. near is an optional
// locality hint pointing at a live slot of this pool.
func (t *TypedPool[T]) Alloc(near *T) *T {
	return (*T)(t.pool.Alloc(unsafe.Pointer(near)))
}

// Free returns a slot to the pool and nils the caller's reference.
func (t *TypedPool[T]) Free(ref **T) {
	if ref == nil || *ref == nil {
		return
	}
	slot := unsafe.Pointer(*ref)
	t.pool.Free(&slot)
	*ref = nil
}

// Reserve ensures at least n slots are available.
func (t *TypedPool[T]) Reserve(n int) error {
	return t.pool.Reserve(n)
}

// Available returns the current free slot count.
func (t *TypedPool[T]) Available() int {
	return t.pool.Available()
}

// Destroy finalizes live slots and releases all clusters. The pool may
// be used again afterwards.
func (t *TypedPool[T]) Destroy() {
	t.pool.Destroy()
}

// Metrics returns a snapshot of pool statistics.
func (t *TypedPool[T]) Metrics() PoolMetrics {
	return t.pool.Metrics()
}

// Check verifies the pool invariants.
func (t *TypedPool[T]) Check() error {
	return t.pool.Check()
}
