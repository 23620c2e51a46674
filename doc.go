// Package mpool implements a fixed-element-size memory pool for Go.
//
// # Overview
//
// A memory pool hands out and reclaims equally sized slots in amortized
// constant time. Slots are grouped into large contiguous clusters which
// are acquired on demand (or preallocated with Reserve), and adjacent
// free slots are coalesced into runs so the pool stays compact under
// churn. This is particularly useful for:
//
//   - Interpreter cells, parse-tree nodes, skiplist links
//   - Any workload allocating and freeing enormous numbers of small
//     objects of identical footprint
//   - Reducing general-purpose heap pressure and fragmentation
//   - Predictable allocation behavior with stable object addresses
//
// # Basic Usage
//
//	pool := mpool.New(64, 16384) // 64-byte slots, 16384 per cluster
//	defer pool.Destroy()         // Clean up when done
//
//	slot := pool.Alloc(nil)      // Allocate one slot
//	other := pool.Alloc(slot)    // Allocate close to slot (locality hint)
//	pool.Free(&slot)             // Return it; slot is nil afterwards
//
// Or with the typed façade:
//
//	cells := mpool.NewTyped[Cell](16384)
//	c := cells.Alloc(nil)
//	cells.Free(&c)
//
// # Memory Layout
//
// Each cluster holds a bitmap followed by a fixed array of slots. The
// bitmap marks the endpoints of free runs, not free slots: the first
// and last slot of every maximal sequence of adjacent free slots have
// their bit set, everything else is clear. Free slots carry the pool's
// bookkeeping in place (an intrusive free-list node and the run length
// at the run's first slot, a back-pointer at its last), so a cluster
// needs no per-slot metadata beyond the single bitmap bit.
//
// Free runs are threaded on eight free-lists bucketed by the binary
// logarithm of their length. Freeing a slot coalesces it with the runs
// on either side in O(1); the endpoints to inspect are always the two
// neighboring slots, regardless of run length.
//
// A cluster whose last live slot is freed is not released immediately:
// one entirely free cluster lingers, absorbing alloc/free churn at a
// cluster boundary. It is released when a second cluster becomes
// entirely free.
//
// # Thread Safety
//
// Pool and TypedPool are not thread-safe; callers serialize externally.
// SafePool wraps every operation in a mutex:
//
//	pool := mpool.NewSafe(64, 16384)
//	defer pool.Destroy()
//
// # Performance Characteristics
//
//   - Alloc: O(C) for the cluster lookup, bucket scan bounded by 8
//   - Free: O(C) for the cluster lookup, O(1) coalescing
//   - Reserve: O(clusters acquired)
//   - Destroy: O(total slots) with a finalizer, O(clusters) without
//
// # Important Notes
//
//   - Slot addresses are stable; the pool never moves live objects
//   - Memory is not zeroed on allocation
//   - One pool serves one element size; the size is rounded up to the
//     machine word and to the free-slot bookkeeping footprint
//   - Freeing a foreign pointer panics; freeing a slot twice panics when
//     the slot is an endpoint or the second slot of a free run, while a
//     slot further inside a free run is not detected
//
// # Monitoring
//
// Metrics returns a snapshot of pool statistics, and Collector exports
// them as prometheus gauges:
//
//	metrics := pool.Metrics()
//	fmt.Printf("Utilization: %.2f%%\n", metrics.Utilization*100)
//	prometheus.MustRegister(mpool.NewCollector(pool, "myapp"))
package mpool
