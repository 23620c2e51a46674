package mpool

import "github.com/prometheus/client_golang/prometheus"

// MetricsSource is anything that can produce a PoolMetrics snapshot.
// Pool and SafePool both qualify; hand a SafePool to the collector when
// the registry scrapes concurrently with pool operations.
type MetricsSource interface {
	Metrics() PoolMetrics
}

// Collector exports pool statistics as prometheus gauges. Register it
// with a prometheus.Registerer:
//
//	pool := mpool.NewSafe(64, 16384)
//	prometheus.MustRegister(mpool.NewCollector(pool, "myapp_cellpool"))
type Collector struct {
	src MetricsSource

	freeSlots   *prometheus.Desc
	clusters    *prometheus.Desc
	capacity    *prometheus.Desc
	utilization *prometheus.Desc
}

// NewCollector creates a Collector reading from src. namespace prefixes
// every metric name.
func NewCollector(src MetricsSource, namespace string) *Collector {
	return &Collector{
		src: src,
		freeSlots: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "mpool", "free_slots"),
			"Free slots across all clusters of the pool.",
			nil, nil),
		clusters: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "mpool", "clusters"),
			"Clusters currently allocated by the pool.",
			nil, nil),
		capacity: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "mpool", "capacity_slots"),
			"Total slots, free and live, across all clusters.",
			nil, nil),
		utilization: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "mpool", "utilization_ratio"),
			"Ratio of live slots to capacity.",
			nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.freeSlots
	ch <- c.clusters
	ch <- c.capacity
	ch <- c.utilization
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := c.src.Metrics()
	ch <- prometheus.MustNewConstMetric(c.freeSlots, prometheus.GaugeValue, float64(m.FreeSlots))
	ch <- prometheus.MustNewConstMetric(c.clusters, prometheus.GaugeValue, float64(m.Clusters))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(m.Capacity))
	ch <- prometheus.MustNewConstMetric(c.utilization, prometheus.GaugeValue, m.Utilization)
}
