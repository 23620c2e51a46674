package mpool

import (
	"unsafe"

	"go.uber.org/zap"
)

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithFinalizer sets a function invoked on every slot still live when
// the pool is destroyed. The finalizer is not called by Free.
func WithFinalizer(fn FinalizerFunc) Option {
	return func(p *Pool) {
		p.finalizer = fn
	}
}

// WithFinalizerFor is the typed variant of WithFinalizer.
func WithFinalizerFor[T any](fn func(*T)) Option {
	return WithFinalizer(func(slot unsafe.Pointer) {
		fn((*T)(slot))
	})
}

// WithHooks substitutes the heap used for cluster memory. acquire must
// return a word-aligned writable block or nil on exhaustion; release
// takes back blocks from the same acquire. The hooks must not re-enter
// the pool. Passing nil for either keeps the current hook.
func WithHooks(acquire AcquireFunc, release ReleaseFunc) Option {
	return func(p *Pool) {
		if acquire != nil {
			p.acquire = acquire
		}
		if release != nil {
			p.release = release
		}
	}
}

// WithLogger sets the logger for pool lifecycle events. The default
// discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(p *Pool) {
		if log != nil {
			p.log = log
		}
	}
}

// WithInitHook registers a callback observing pool initialization; it
// runs once, after the pool is ready.
func WithInitHook(fn func(*Pool)) Option {
	return func(p *Pool) {
		p.initHook = fn
	}
}

// WithDestroyHook registers a callback observing pool destruction; it
// runs at the start of Destroy, while all state is still intact.
func WithDestroyHook(fn func(*Pool)) Option {
	return func(p *Pool) {
		p.destroyHook = fn
	}
}

// Process-wide default hooks, consulted once by New and copied into the
// pool. Per-pool WithHooks overrides them. This keeps instrumented-heap
// test setups from contaminating pools they do not own.
var (
	globalAcquire AcquireFunc
	globalRelease ReleaseFunc
)

// SetDefaultHooks installs process-wide default acquire/release hooks
// for pools created afterwards. Passing nil restores the built-in heap.
func SetDefaultHooks(acquire AcquireFunc, release ReleaseFunc) {
	globalAcquire = acquire
	globalRelease = release
}

func gcRelease([]byte) {
	// the garbage collector takes it
}

// heapAcquire allocates through the Go heap. Backing the block with a
// word slice guarantees the alignment the slot overlays rely on.
func heapAcquire(size int) []byte {
	words := make([]uint64, (size+7)/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), size)
}
