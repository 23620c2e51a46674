package mpool

import "unsafe"

// Free returns a slot to the pool and nils the caller's reference.
// The freed slot is coalesced with adjacent free runs on either side,
// so runs stay maximal and the bitmap keeps marking exactly the run
// endpoints.
//
// Freeing a nil reference is a no-op. Freeing an address that does not
// belong to the pool panics. Freeing a slot that is already free panics
// when the slot is an endpoint of its free run or the second slot of a
// longer run; a free of a slot further inside a free run is not
// detected.
func (p *Pool) Free(ref *unsafe.Pointer) {
	if p == nil || ref == nil || *ref == nil {
		return
	}
	slot := *ref

	c := p.findCluster(slot)
	if c == nil {
		panic("mpool: free of pointer outside any cluster")
	}
	idx := p.indexOf(c, slot)
	if c.bits.Test(uint(idx)) {
		panic("mpool: double free")
	}

	start, length := idx, 1

	// coalesce with the run ending at idx-1
	frontMerged := false
	if idx > 0 && c.bits.Test(uint(idx-1)) {
		prev := p.slotAt(c, idx-1)
		if slotMark(prev) != 0 {
			// a first-slot; its run must be the single slot idx-1,
			// anything longer would overlap the slot being freed
			h := (*runHeader)(prev)
			if h.length != 1 {
				panic("mpool: double free")
			}
			h.node.Unlink()
			start--
			length++
			// its endpoint bit stays set, it is the merged run's left end
		} else {
			h := footerAt(prev).first
			h.node.Unlink()
			c.bits.Clear(uint(idx - 1)) // no longer an endpoint
			start = p.indexOf(c, unsafe.Pointer(h))
			length += int(h.length)
		}
		frontMerged = true
	}
	if !frontMerged {
		c.bits.Set(uint(start))
	}

	// coalesce with the run starting at start+length
	backMerged := false
	if next := start + length; next < p.slotsPerCluster && c.bits.Test(uint(next)) {
		ns := p.slotAt(c, next)
		if slotMark(ns) == 0 {
			panic("mpool: corrupt free-run encoding")
		}
		h := (*runHeader)(ns)
		h.node.Unlink()
		if h.length == 1 {
			length++
			// its endpoint bit stays set, it is the merged run's right end
		} else {
			c.bits.Clear(uint(next))
			length += int(h.length)
			// the absorbed run's last-slot bit stays set as the new end
		}
		backMerged = true
	}
	if !backMerged && length > 1 {
		c.bits.Set(uint(start + length - 1))
	}

	h := p.headerAt(c, start)
	h.node.Init()
	h.length = uintptr(length)
	if length >= 2 {
		writeFooter(p.slotAt(c, start+length-1), h)
	}
	p.freelists[bucketFor(length)].InsertHead(&h.node)
	p.elementsFree++

	if length == p.slotsPerCluster {
		p.retire(c)
	}

	*ref = nil
}

// retire marks c, now entirely free, as the pool's linger cluster. A
// previously lingering cluster that is still entirely free is released,
// which gives one cluster of hysteresis against alloc/free churn right
// at a cluster boundary.
func (p *Pool) retire(c *cluster) {
	if p.linger != nil && p.linger != c && p.wholeFree(p.linger) {
		p.releaseCluster(p.linger)
	}
	p.linger = c
}
