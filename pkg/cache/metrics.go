package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	descHitsTotal = prometheus.NewDesc(
		prometheus.BuildFQName("contactsql", "cache", "hits_total"),
		"Number of cache hits",
		[]string{"cache"},
		nil,
	)

	descMissesTotal = prometheus.NewDesc(
		prometheus.BuildFQName("contactsql", "cache", "misses_total"),
		"Number of cache misses",
		[]string{"cache"},
		nil,
	)

	descEntriesAddedTotal = prometheus.NewDesc(
		prometheus.BuildFQName("contactsql", "cache", "entries_added_total"),
		"Number of entries set in the cache",
		[]string{"cache"},
		nil,
	)
)

type withMetrics interface {
	GetMetrics() Metrics
}

// NewCollector exports the hit, miss and insert counters of c, labelled with
// name. The collector reads the counters on every scrape.
func NewCollector(name string, c withMetrics) prometheus.Collector {
	return &collector{name: name, cache: c}
}

type collector struct {
	name  string
	cache withMetrics
}

var _ prometheus.Collector = (*collector)(nil)

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descHitsTotal
	ch <- descMissesTotal
	ch <- descEntriesAddedTotal
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	metrics := c.cache.GetMetrics()
	ch <- prometheus.MustNewConstMetric(descHitsTotal, prometheus.CounterValue, float64(metrics.Hits()), c.name)
	ch <- prometheus.MustNewConstMetric(descMissesTotal, prometheus.CounterValue, float64(metrics.Misses()), c.name)
	ch <- prometheus.MustNewConstMetric(descEntriesAddedTotal, prometheus.CounterValue, float64(metrics.EntriesAdded()), c.name)
}
