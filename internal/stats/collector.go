// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Client metrics.
	MetricOpens             = "assetcache_opens_total"
	MetricSourceReads       = "assetcache_source_reads_total"
	MetricSourceErrors      = "assetcache_source_errors_total"
	MetricUncachedReads     = "assetcache_uncached_reads_total"
	MetricSourceReadSeconds = "assetcache_source_read_seconds"

	// Cache metrics.
	MetricCacheHits        = "assetcache_cache_hits_total"
	MetricCacheMisses      = "assetcache_cache_misses_total"
	MetricAdmissions       = "assetcache_admissions_total"
	MetricRejections       = "assetcache_rejections_total"
	MetricEvictions        = "assetcache_evictions_total"
	MetricRemovals         = "assetcache_removals_total"
	MetricDeferredRemovals = "assetcache_deferred_removals_total"
	MetricCacheBytes       = "assetcache_cache_bytes"
	MetricCacheEntries     = "assetcache_cache_entries"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
