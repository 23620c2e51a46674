package mpool

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/cehteh/mpool/internal/llist"
)

// DefaultSlotsPerCluster is used when New is given a slot count <= 0.
const DefaultSlotsPerCluster = 16384

// FinalizerFunc is called on every live slot when a pool is destroyed.
// It is not called when a slot is freed.
type FinalizerFunc func(slot unsafe.Pointer)

// AcquireFunc provides raw cluster memory. It must return a word-aligned
// writable block of at least size bytes, or nil on exhaustion.
type AcquireFunc func(size int) []byte

// ReleaseFunc takes back a block previously returned by the matching
// AcquireFunc.
type ReleaseFunc func(block []byte)

// Pool is a fixed-element-size memory pool. It hands out and reclaims
// equally sized slots in amortized constant time, grouping them into
// large contiguous clusters and coalescing adjacent free slots into
// runs.
//
// A Pool is not goroutine-safe; use SafePool or serialize externally.
// A Pool must not be copied after New.
type Pool struct {
	freelists [Buckets]llist.Node
	clusters  llist.Node
	linger    *cluster // kept after becoming entirely free, see Free

	elemSize        uintptr
	slotsPerCluster int
	clusterSize     uintptr

	elementsFree      int
	clustersAllocated int

	finalizer   FinalizerFunc
	acquire     AcquireFunc
	release     ReleaseFunc
	log         *zap.Logger
	initHook    func(*Pool)
	destroyHook func(*Pool)
}

// New creates a pool handing out slots of elemSize bytes, grouped into
// clusters of slotsPerCluster slots. elemSize is rounded up to the
// machine word and to the minimum footprint of the free-slot overlays.
// If slotsPerCluster <= 0, DefaultSlotsPerCluster is used.
func New(elemSize, slotsPerCluster int, opts ...Option) *Pool {
	p := &Pool{}
	p.init(elemSize, slotsPerCluster, opts)
	return p
}

func (p *Pool) init(elemSize, slotsPerCluster int, opts []Option) {
	for i := range p.freelists {
		p.freelists[i].Init()
	}
	p.clusters.Init()

	size := (uintptr(elemSize) + wordSize - 1) / wordSize * wordSize
	if size < minSlotSize {
		size = minSlotSize
	}
	p.elemSize = size

	if slotsPerCluster <= 0 {
		slotsPerCluster = DefaultSlotsPerCluster
	}
	p.slotsPerCluster = slotsPerCluster

	p.clusterSize = unsafe.Sizeof(cluster{}) +
		bitmapBytes(slotsPerCluster) +
		p.elemSize*uintptr(slotsPerCluster)

	// the global hooks are read once here; later SetDefaultHooks calls
	// do not affect this pool
	p.acquire = heapAcquire
	p.release = gcRelease
	if globalAcquire != nil {
		p.acquire = globalAcquire
	}
	if globalRelease != nil {
		p.release = globalRelease
	}
	p.log = zap.NewNop()

	for _, opt := range opts {
		opt(p)
	}

	p.log.Debug("pool initialized",
		zap.Int("elem_size", int(p.elemSize)),
		zap.Int("slots_per_cluster", p.slotsPerCluster),
		zap.Int("cluster_size", int(p.clusterSize)))

	if p.initHook != nil {
		p.initHook(p)
	}
}

// ElemSize returns the effective slot size after rounding.
func (p *Pool) ElemSize() int {
	return int(p.elemSize)
}

// Available returns the number of free slots across all clusters. A
// hintless Alloc still acquires a new cluster once fewer than half a
// cluster of these remain.
func (p *Pool) Available() int {
	return p.elementsFree
}

// Reserve acquires clusters until at least n slots are available.
// Clusters acquired before an exhaustion failure stay in the pool.
func (p *Pool) Reserve(n int) error {
	for p.elementsFree < n {
		if p.newCluster() == nil {
			return ErrExhausted
		}
	}
	return nil
}

// Destroy finalizes every live slot (if a finalizer is configured),
// releases all clusters and resets the pool to its just-initialized
// state. The pool may be used again afterwards.
func (p *Pool) Destroy() {
	if p.destroyHook != nil {
		p.destroyHook(p)
	}

	finalized := 0
	for !p.clusters.Empty() {
		c := clusterOf(p.clusters.Tail())
		if p.finalizer != nil {
			// Free runs are skipped wholesale: every set bit reached
			// here starts a run whose header gives the length.
			i := 0
			for i < p.slotsPerCluster {
				if c.bits.Test(uint(i)) {
					i += int(p.headerAt(c, i).length)
					continue
				}
				p.finalizer(p.slotAt(c, i))
				finalized++
				i++
			}
		}
		c.node.Unlink()
		p.release(c.buf)
	}

	for i := range p.freelists {
		p.freelists[i].Init()
	}
	p.linger = nil
	p.elementsFree = 0
	p.clustersAllocated = 0

	p.log.Debug("pool destroyed", zap.Int("finalized", finalized))
}
