package mpool

import (
	"unsafe"

	"github.com/bits-and-blooms/bitset"
	"go.uber.org/zap"

	"github.com/cehteh/mpool/internal/llist"
)

// cluster is one contiguous block of slots together with its endpoint
// bitmap. The bitmap words sit at the start of buf, the slot array
// directly after them. The node must stay the first field so the pool's
// cluster list can recover a *cluster from a list node.
type cluster struct {
	node  llist.Node
	bits  *bitset.BitSet // wraps words in place, no copy
	words []uint64       // the bitmap words at the start of buf
	buf   []byte
	slots unsafe.Pointer // first slot, == &buf[bitmapBytes]
}

// clusterOf recovers a cluster from its list node.
func clusterOf(n *llist.Node) *cluster {
	return (*cluster)(unsafe.Pointer(n))
}

// bitmapBytes returns the size of the endpoint bitmap for n slots,
// rounded up to whole 64-bit words.
func bitmapBytes(n int) uintptr {
	return uintptr((n+63)/64) * 8
}

// newCluster acquires and initializes one cluster: bitmap cleared, a
// single free run spanning every slot, the run enqueued in its bucket.
// Returns nil when the acquire hook reports exhaustion.
func (p *Pool) newCluster() *cluster {
	buf := p.acquire(int(bitmapBytes(p.slotsPerCluster) + p.elemSize*uintptr(p.slotsPerCluster)))
	if buf == nil {
		return nil
	}

	c := &cluster{buf: buf}
	nwords := (p.slotsPerCluster + 63) / 64
	words := unsafe.Slice((*uint64)(unsafe.Pointer(&buf[0])), nwords)
	clear(words) // acquire hooks may hand back dirty memory
	c.words = words
	c.bits = bitset.From(words)
	c.slots = unsafe.Add(unsafe.Pointer(&buf[0]), bitmapBytes(p.slotsPerCluster))

	h := p.headerAt(c, 0)
	h.length = uintptr(p.slotsPerCluster)
	c.bits.Set(0)
	if p.slotsPerCluster >= 2 {
		c.bits.Set(uint(p.slotsPerCluster - 1))
		writeFooter(p.slotAt(c, p.slotsPerCluster-1), h)
	}
	p.freelists[bucketFor(p.slotsPerCluster)].InsertHead(&h.node)

	// insert at head, a fresh cluster is the likely allocation target
	p.clusters.InsertHead(&c.node)
	p.elementsFree += p.slotsPerCluster
	p.clustersAllocated++

	p.log.Debug("cluster acquired",
		zap.Int("clusters", p.clustersAllocated),
		zap.Int("free", p.elementsFree))

	return c
}

// releaseCluster removes an entirely free cluster from the pool and
// returns its memory through the release hook.
func (p *Pool) releaseCluster(c *cluster) {
	h := p.headerAt(c, 0)
	h.node.Unlink()
	c.node.Unlink()
	p.elementsFree -= p.slotsPerCluster
	p.clustersAllocated--
	if p.linger == c {
		p.linger = nil
	}
	p.release(c.buf)

	p.log.Debug("cluster released",
		zap.Int("clusters", p.clustersAllocated),
		zap.Int("free", p.elementsFree))
}

// slotAt returns the address of slot i of c.
func (p *Pool) slotAt(c *cluster, i int) unsafe.Pointer {
	return unsafe.Add(c.slots, uintptr(i)*p.elemSize)
}

// headerAt reads slot i of c as a first-slot overlay.
func (p *Pool) headerAt(c *cluster, i int) *runHeader {
	return (*runHeader)(p.slotAt(c, i))
}

// indexOf maps a slot address back to its index within c.
func (p *Pool) indexOf(c *cluster, slot unsafe.Pointer) int {
	off := uintptr(slot) - uintptr(c.slots)
	if off%p.elemSize != 0 {
		panic("mpool: misaligned slot address")
	}
	return int(off / p.elemSize)
}

// contains reports whether addr lies within c's slot array.
func (p *Pool) contains(c *cluster, addr unsafe.Pointer) bool {
	base := uintptr(c.slots)
	return uintptr(addr) >= base && uintptr(addr) < base+p.elemSize*uintptr(p.slotsPerCluster)
}

// findCluster locates the cluster owning addr, or nil if addr does not
// belong to this pool. O(n) in the number of clusters, which stays small
// under the slots-per-cluster default.
func (p *Pool) findCluster(addr unsafe.Pointer) *cluster {
	n := p.clusters.Find(func(n *llist.Node) bool {
		return p.contains(clusterOf(n), addr)
	})
	if n == nil {
		return nil
	}
	return clusterOf(n)
}

// wholeFree reports whether every slot of c is free, which is the case
// exactly when a single run spans the cluster.
func (p *Pool) wholeFree(c *cluster) bool {
	return c.bits.Test(0) && p.headerAt(c, 0).length == uintptr(p.slotsPerCluster)
}
