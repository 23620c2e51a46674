package mpool

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FreeSlots returns the number of free slots across all clusters.
func (p *Pool) FreeSlots() int {
	return p.elementsFree
}

// Clusters returns the number of clusters currently allocated.
func (p *Pool) Clusters() int {
	return p.clustersAllocated
}

// Capacity returns the total number of slots, free and live, across all
// clusters.
func (p *Pool) Capacity() int {
	return p.clustersAllocated * p.slotsPerCluster
}

// Utilization returns the ratio of live slots to total capacity (0.0 to
// 1.0). Returns 0.0 for a pool without clusters.
func (p *Pool) Utilization() float64 {
	capacity := p.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(capacity-p.elementsFree) / float64(capacity)
}

// ClusterSize returns the byte footprint of one cluster, header and
// bitmap included.
func (p *Pool) ClusterSize() int {
	return int(p.clusterSize)
}

// Metrics returns a snapshot of pool statistics.
func (p *Pool) Metrics() PoolMetrics {
	return PoolMetrics{
		ElemSize:        int(p.elemSize),
		SlotsPerCluster: p.slotsPerCluster,
		ClusterSize:     int(p.clusterSize),
		FreeSlots:       p.elementsFree,
		Clusters:        p.clustersAllocated,
		Capacity:        p.Capacity(),
		Utilization:     p.Utilization(),
	}
}

// PoolMetrics contains statistical information about a pool.
type PoolMetrics struct {
	ElemSize        int     // effective slot size in bytes, after rounding
	SlotsPerCluster int     // slots per cluster
	ClusterSize     int     // byte footprint of one cluster
	FreeSlots       int     // free slots across all clusters
	Clusters        int     // clusters allocated
	Capacity        int     // total slots across all clusters
	Utilization     float64 // ratio of live slots to capacity (0.0-1.0)
}

// String renders the snapshot in a single human-readable line.
func (m PoolMetrics) String() string {
	return fmt.Sprintf("%d/%d slots free in %d clusters (%s each, %s total), %.1f%% used",
		m.FreeSlots, m.Capacity, m.Clusters,
		humanize.IBytes(uint64(m.ClusterSize)),
		humanize.IBytes(uint64(m.ClusterSize*m.Clusters)),
		m.Utilization*100)
}
