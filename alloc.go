package mpool

import (
	"math/bits"
	"unsafe"

	"github.com/cehteh/mpool/internal/llist"
)

// Alloc returns one slot, or nil on exhaustion. The memory is not
// zeroed. near is an optional locality hint: when it points to a live
// slot of this pool, the allocation prefers a free slot close to it.
//
// A new cluster is acquired when the pool is empty, or when no hint is
// given and less than half a cluster of slots remains free. If the
// acquire fails but free slots remain, allocation proceeds against the
// existing free lists.
func (p *Pool) Alloc(near unsafe.Pointer) unsafe.Pointer {
	if p.elementsFree == 0 || (near == nil && p.elementsFree < p.slotsPerCluster/2) {
		if p.newCluster() != nil {
			near = nil // nothing benefits from proximity to a stranger
		} else if p.elementsFree == 0 {
			return nil
		}
	}

	var h *runHeader
	if near != nil {
		h = p.runNear(near)
	}
	if h == nil {
		h = p.firstFit(1)
	}
	if h == nil {
		return nil
	}
	return p.takeFromRun(h, 1)
}

// firstFit scans the buckets from the smallest one admitting a run of n
// slots upward and returns the first run long enough. Runs shorter than
// n do not satisfy even when their bucket index admits them.
func (p *Pool) firstFit(n int) *runHeader {
	for b := bucketFor(n); b < Buckets; b++ {
		found := p.freelists[b].Find(func(node *llist.Node) bool {
			return int(headerOf(node).length) >= n
		})
		if found != nil {
			return headerOf(found)
		}
	}
	return nil
}

// takeFromRun carves n slots off the front of the run starting at h and
// returns their address. The remainder, if any, is re-encoded as a
// shorter run and re-bucketed.
func (p *Pool) takeFromRun(h *runHeader, n int) unsafe.Pointer {
	slot := unsafe.Pointer(h)
	c := p.findCluster(slot)
	idx := p.indexOf(c, slot)
	length := int(h.length)

	h.node.Unlink()
	c.bits.Clear(uint(idx))

	rem := length - n
	switch {
	case rem == 0:
		if length >= 2 {
			c.bits.Clear(uint(idx + length - 1))
		}
	case rem == 1:
		// the remaining slot is the old last slot, its endpoint bit is
		// already set; it just becomes a run of its own
		nh := p.headerAt(c, idx+n)
		nh.node.Init()
		nh.length = 1
		p.freelists[bucketFor(1)].InsertHead(&nh.node)
	default:
		nh := p.headerAt(c, idx+n)
		nh.node.Init()
		nh.length = uintptr(rem)
		c.bits.Set(uint(idx + n))
		writeFooter(p.slotAt(c, idx+length-1), nh)
		p.freelists[bucketFor(rem)].InsertHead(&nh.node)
	}

	p.elementsFree -= n
	return slot
}

// runNear searches the bitmap word holding the hint's index, then the
// word before it, for the endpoint of a free run. The endpoint resolves
// to the run's first slot, which is then consumed through the normal
// split path. Returns nil when the window holds no endpoint; the far
// scan takes over then.
func (p *Pool) runNear(near unsafe.Pointer) *runHeader {
	c := p.findCluster(near)
	if c == nil {
		panic("mpool: allocation hint outside any cluster")
	}
	idx := p.indexOf(c, near)
	words := c.words

	quot, rem := idx/64, uint(idx%64)
	bit := -1
	if w := words[quot]; w != 0 {
		bit = nearestSetBit(w, rem)
	} else if quot > 0 && words[quot-1] != 0 {
		// a slight bias towards the cluster begin keeps the pool compact
		quot--
		bit = nearestSetBit(words[quot], 63)
	}
	if bit < 0 {
		return nil
	}

	i := quot*64 + bit
	if i >= p.slotsPerCluster {
		return nil
	}
	slot := p.slotAt(c, i)
	if slotMark(slot) == 0 {
		return footerAt(slot).first
	}
	return (*runHeader)(slot)
}

// nearestSetBit returns the index of the set bit of w closest to pos,
// preferring the lower one on a tie, or -1 when w is zero.
func nearestSetBit(w uint64, pos uint) int {
	below := w << (63 - pos) // bit pos shifted to bit 63
	above := w >> pos        // bit pos shifted to bit 0
	db := bits.LeadingZeros64(below)
	da := bits.TrailingZeros64(above)
	if db == 64 && da == 64 {
		return -1
	}
	if db <= da {
		return int(pos) - db
	}
	return int(pos) + da
}
