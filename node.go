package mpool

import (
	"unsafe"

	"github.com/cehteh/mpool/internal/llist"
)

// While a slot is free it is overlaid with one of two shapes. The first
// slot of a run carries the bucket linkage and the run length. The last
// slot of a run of two or more carries a back-pointer to the first slot
// and a zero mark word. The mark is what tells the two shapes apart when
// an arbitrary endpoint slot is inspected: a linked runHeader always has
// a non-nil prev pointer in its second word, a runFooter always has zero
// there.

// runHeader overlays the first slot of a free run.
// The embedded node must stay the first field, bucket lists recover the
// header from the node address by a plain pointer conversion.
type runHeader struct {
	node   llist.Node
	length uintptr // slots in the run, including this one
}

// runFooter overlays the last slot of a run of length >= 2.
type runFooter struct {
	first *runHeader
	mark  uintptr // always zero
}

const (
	wordSize = unsafe.Sizeof(uintptr(0))

	// minSlotSize is the smallest slot that can hold either overlay.
	minSlotSize = unsafe.Sizeof(runHeader{})
)

// headerOf recovers the run header from its bucket list node.
func headerOf(n *llist.Node) *runHeader {
	return (*runHeader)(unsafe.Pointer(n))
}

// slotMark reads the second word of a free slot. Zero means the slot is
// footer-shaped, anything else is the prev pointer of a linked header.
func slotMark(slot unsafe.Pointer) uintptr {
	return *(*uintptr)(unsafe.Add(slot, wordSize))
}

// writeFooter stamps the last-slot overlay onto slot.
func writeFooter(slot unsafe.Pointer, first *runHeader) {
	f := (*runFooter)(slot)
	f.first = first
	f.mark = 0
}

// footerAt reads slot as a last-slot overlay.
func footerAt(slot unsafe.Pointer) *runFooter {
	return (*runFooter)(slot)
}
