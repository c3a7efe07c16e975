package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nmxmxh/region/kernel/zone"
)

// metricsCollector exports a region's allocator state and a zone store's
// count of distinct owner names as Prometheus gauges. It implements prometheus.Collector
// directly rather than registering plain Gauges and updating them on a
// timer, so every scrape reflects the region's state at scrape time.
type metricsCollector struct {
	store *zone.Store

	totalPages *prometheus.Desc
	freePage   *prometheus.Desc
	slabCount  *prometheus.Desc
	zoneNames  *prometheus.Desc
}

func newMetricsCollector(store *zone.Store) *metricsCollector {
	return &metricsCollector{
		store: store,
		totalPages: prometheus.NewDesc(
			"region_total_pages", "Total number of pages in the region.", nil, nil),
		freePage: prometheus.NewDesc(
			"region_free_page_hint", "Current free_page allocation hint (0 = none known).", nil, nil),
		slabCount: prometheus.NewDesc(
			"region_cache_slabs", "Slab count per size class and list.",
			[]string{"size_class", "list"}, nil),
		zoneNames: prometheus.NewDesc(
			"zone_owner_names", "Number of distinct owner names held in the zone store.", nil, nil),
	}
}

func (c *metricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalPages
	ch <- c.freePage
	ch <- c.slabCount
	ch <- c.zoneNames
}

func (c *metricsCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.store.Stats()

	ch <- prometheus.MustNewConstMetric(c.totalPages, prometheus.GaugeValue, float64(st.TotalPages))
	ch <- prometheus.MustNewConstMetric(c.freePage, prometheus.GaugeValue, float64(st.FreePage))

	for _, cs := range st.Caches {
		ch <- prometheus.MustNewConstMetric(c.slabCount, prometheus.GaugeValue, float64(cs.FullSlabs), cs.Name, "full")
		ch <- prometheus.MustNewConstMetric(c.slabCount, prometheus.GaugeValue, float64(cs.PartialSlabs), cs.Name, "partial")
		ch <- prometheus.MustNewConstMetric(c.slabCount, prometheus.GaugeValue, float64(cs.FreeSlabs), cs.Name, "free")
	}

	ch <- prometheus.MustNewConstMetric(c.zoneNames, prometheus.GaugeValue, float64(c.store.Len()))
}
