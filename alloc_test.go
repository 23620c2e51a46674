package mpool

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allocChain allocates n slots, hinting each allocation at the previous
// one. The hints keep the pool from acquiring extra clusters at the
// half-cluster threshold, so slots come out in cluster order.
func allocChain(t *testing.T, p *Pool, n int) []unsafe.Pointer {
	t.Helper()
	slots := make([]unsafe.Pointer, n)
	for i := range slots {
		var near unsafe.Pointer
		if i > 0 {
			near = slots[i-1]
		}
		slots[i] = p.Alloc(near)
		require.NotNil(t, slots[i])
	}
	return slots
}

func TestAllocSplitsRunFromFront(t *testing.T) {
	p := New(32, 64)
	defer p.Destroy()

	slots := allocChain(t, p, 4)
	c := clusterOf(p.clusters.Head())

	// slots come out in order, one element apart
	for i := 1; i < 4; i++ {
		assert.Equal(t, uintptr(slots[i-1])+p.elemSize, uintptr(slots[i]))
	}

	// the remaining run is [4,63], endpoint bits only
	assert.True(t, c.bits.Test(4))
	assert.True(t, c.bits.Test(63))
	assert.Equal(t, uint(2), c.bits.Count())
	assert.Equal(t, 60, p.Available())
	require.NoError(t, p.Check())
}

func TestAllocConsumesRunCompletely(t *testing.T) {
	p := New(32, 2)
	defer p.Destroy()

	a := p.Alloc(nil)
	require.NotNil(t, a)
	assert.Equal(t, 1, p.Available())

	// the single remaining slot is a run of its own
	c := clusterOf(p.clusters.Head())
	assert.True(t, c.bits.Test(1))
	assert.Equal(t, uint(1), c.bits.Count())
	require.NoError(t, p.Check())

	b := p.Alloc(a)
	require.NotNil(t, b)
	assert.Equal(t, 0, p.Available())
	assert.Equal(t, uint(0), c.bits.Count())
	require.NoError(t, p.Check())
}

func TestAllocNearPrefersNeighborhood(t *testing.T) {
	p := New(32, 256)
	defer p.Destroy()

	slots := allocChain(t, p, 200)

	// free one slot deep inside the allocated region, then ask for a
	// slot near its neighbor: the hole is reused
	hole := slots[100]
	freed := hole
	p.Free(&freed)
	require.NoError(t, p.Check())

	got := p.Alloc(slots[99])
	assert.Equal(t, hole, got)
	require.NoError(t, p.Check())
}

func TestAllocFarWhenWindowEmpty(t *testing.T) {
	p := New(32, 1024)
	defer p.Destroy()

	slots := allocChain(t, p, 300)

	// the free space starts at slot 300, several bitmap words away from
	// slot 10; the near scan finds nothing and the far path answers
	got := p.Alloc(slots[10])
	require.NotNil(t, got)
	c := clusterOf(p.clusters.Head())
	assert.Equal(t, 300, p.indexOf(c, got))
	require.NoError(t, p.Check())
}

func TestAllocGrowsAtHalfClusterThreshold(t *testing.T) {
	p := New(32, 64)
	defer p.Destroy()

	slots := allocChain(t, p, 33)
	assert.Equal(t, 1, p.Clusters())
	assert.Equal(t, 31, p.Available())

	// hinted allocations do not trigger the threshold
	hinted := p.Alloc(slots[32])
	require.NotNil(t, hinted)
	assert.Equal(t, 1, p.Clusters())
	p.Free(&hinted)
	assert.Equal(t, 31, p.Available())

	// a hintless allocation below half a cluster of free slots acquires
	// a fresh cluster, but still serves from the best-fitting run
	got := p.Alloc(nil)
	require.NotNil(t, got)
	assert.Equal(t, 2, p.Clusters())
	assert.Equal(t, 94, p.Available())
	require.NoError(t, p.Check())

	// a hinted allocation is served from the existing clusters
	before := p.Clusters()
	p.Alloc(slots[0])
	assert.Equal(t, before, p.Clusters())
}

func TestAllocSecondClusterWhenExhausted(t *testing.T) {
	p := New(32, 64)
	defer p.Destroy()

	slots := allocChain(t, p, 64)
	assert.Equal(t, 0, p.Available())
	assert.Equal(t, 1, p.Clusters())

	got := p.Alloc(slots[63])
	require.NotNil(t, got)
	assert.Equal(t, 2, p.Clusters())
	assert.Equal(t, 63, p.Available())
	require.NoError(t, p.Check())
}

func TestAllocExhaustion(t *testing.T) {
	p := New(32, 64, WithHooks(func(int) []byte { return nil }, nil))

	assert.Nil(t, p.Alloc(nil))
	assert.Equal(t, 0, p.Available())
	assert.Equal(t, 0, p.Clusters())
}

func TestAllocContinuesWhenGrowthFails(t *testing.T) {
	calls := 0
	acquire := func(size int) []byte {
		calls++
		if calls > 1 {
			return nil
		}
		return heapAcquire(size)
	}
	p := New(32, 64, WithHooks(acquire, nil))

	allocChain(t, p, 40)
	assert.Equal(t, 24, p.Available())

	// the threshold trigger fails to acquire, but free slots remain
	got := p.Alloc(nil)
	require.NotNil(t, got)
	assert.Equal(t, 23, p.Available())
	assert.Equal(t, 1, p.Clusters())
	require.NoError(t, p.Check())
}

func TestNearestSetBit(t *testing.T) {
	tests := []struct {
		name string
		w    uint64
		pos  uint
		want int
	}{
		{"zero word", 0, 17, -1},
		{"exact hit", 1 << 17, 17, 17},
		{"above", 1 << 20, 17, 20},
		{"below", 1 << 3, 17, 3},
		{"tie prefers below", 1<<2 | 1<<6, 4, 2},
		{"closer above wins", 1<<0 | 1<<6, 5, 6},
		{"bit zero", 1, 0, 0},
		{"bit 63", 1 << 63, 63, 63},
		{"from the top", 1 << 5, 63, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nearestSetBit(tt.w, tt.pos))
		})
	}
}
