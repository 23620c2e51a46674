// Package llist provides an intrusive circular doubly-linked list.
//
// A Node is embedded at the start of the structure it links. The same Node
// type serves as a list head: an initialized, otherwise unused Node is an
// empty list. Nodes may live in raw, non-pointer-typed memory; the list
// performs no allocation and never retains a node beyond its linkage.
//
// Unlink is O(1) and requires only the node itself, not the list head.
package llist

// Node is both a list head and a list element.
// The zero value is not usable; call Init first.
type Node struct {
	next, prev *Node
}

// Init makes n an empty list (or an unlinked element) and returns it.
func (n *Node) Init() *Node {
	n.next = n
	n.prev = n
	return n
}

// Empty reports whether the list head n has no elements.
func (n *Node) Empty() bool {
	return n.next == n
}

// InsertHead links e as the first element of list l.
func (l *Node) InsertHead(e *Node) {
	e.next = l.next
	e.prev = l
	l.next.prev = e
	l.next = e
}

// InsertTail links e as the last element of list l.
func (l *Node) InsertTail(e *Node) {
	e.next = l
	e.prev = l.prev
	l.prev.next = e
	l.prev = e
}

// Unlink removes n from whatever list it is on and reinitializes it.
// Unlinking an unlinked node is a no-op.
func (n *Node) Unlink() {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.Init()
}

// Head returns the first element of list l, or nil if l is empty.
func (l *Node) Head() *Node {
	if l.Empty() {
		return nil
	}
	return l.next
}

// Tail returns the last element of list l, or nil if l is empty.
func (l *Node) Tail() *Node {
	if l.Empty() {
		return nil
	}
	return l.prev
}

// Find walks the list and returns the first element for which match
// returns true, or nil if no element matches.
func (l *Node) Find(match func(*Node) bool) *Node {
	for n := l.next; n != l; n = n.next {
		if match(n) {
			return n
		}
	}
	return nil
}

// Do calls f for every element of the list. f must not unlink elements.
func (l *Node) Do(f func(*Node)) {
	for n := l.next; n != l; n = n.next {
		f(n)
	}
}

// Len counts the elements of the list.
func (l *Node) Len() int {
	c := 0
	for n := l.next; n != l; n = n.next {
		c++
	}
	return c
}
