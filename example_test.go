package mpool

import (
	"fmt"
	"unsafe"
)

// Example demonstrates basic pool usage
func Example() {
	// 64-byte slots, 1024 per cluster
	pool := New(64, 1024)
	defer pool.Destroy()

	// Allocate one slot
	slot := pool.Alloc(nil)
	fmt.Printf("Got a slot: %v\n", slot != nil)
	fmt.Printf("Available: %d\n", pool.Available())

	// Allocate close to an existing slot (locality hint)
	neighbor := pool.Alloc(slot)
	distance := uintptr(neighbor) - uintptr(slot)
	fmt.Printf("Neighbor distance: %d bytes\n", distance)

	// Free nulls the caller's reference
	pool.Free(&slot)
	pool.Free(&neighbor)
	fmt.Printf("After free: %v, available: %d\n", slot == nil, pool.Available())

	// Output:
	// Got a slot: true
	// Available: 1023
	// Neighbor distance: 64 bytes
	// After free: true, available: 1024
}

// ExampleTypedPool demonstrates the type-safe façade
func ExampleTypedPool() {
	type node struct {
		next  unsafe.Pointer
		key   uint64
		value uint64
	}

	nodes := NewTyped[node](1024)
	defer nodes.Destroy()

	n := nodes.Alloc(nil)
	n.key, n.value = 1, 42
	fmt.Printf("node: key=%d value=%d\n", n.key, n.value)

	nodes.Free(&n)
	fmt.Printf("freed: %v\n", n == nil)

	// Output:
	// node: key=1 value=42
	// freed: true
}

// ExamplePool_Reserve demonstrates preallocation
func ExamplePool_Reserve() {
	pool := New(64, 1024)
	defer pool.Destroy()

	// Ensure at least 3000 free slots
	if err := pool.Reserve(3000); err != nil {
		fmt.Println("reserve failed:", err)
		return
	}
	fmt.Printf("Available: %d\n", pool.Available())
	fmt.Printf("Clusters: %d\n", pool.Clusters())

	// Output:
	// Available: 3072
	// Clusters: 3
}

// ExamplePoolMetrics demonstrates monitoring pool state
func ExamplePoolMetrics() {
	pool := New(64, 1024)
	defer pool.Destroy()

	slot := pool.Alloc(nil)
	_ = slot

	m := pool.Metrics()
	fmt.Printf("Element size: %d\n", m.ElemSize)
	fmt.Printf("Free: %d of %d\n", m.FreeSlots, m.Capacity)
	fmt.Printf("Utilization: %.2f%%\n", m.Utilization*100)

	// Output:
	// Element size: 64
	// Free: 1023 of 1024
	// Utilization: 0.10%
}

// ExampleWithFinalizer demonstrates slot finalization at destroy time
func ExampleWithFinalizer() {
	finalized := 0
	pool := New(64, 1024, WithFinalizer(func(unsafe.Pointer) {
		finalized++
	}))

	a := pool.Alloc(nil)
	b := pool.Alloc(a)
	pool.Free(&a) // freed slots are not finalized
	_ = b

	pool.Destroy()
	fmt.Printf("finalized: %d\n", finalized)

	// Output:
	// finalized: 1
}
