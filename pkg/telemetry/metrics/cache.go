package metrics

import (
	"tessera-hq/meridian/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheStatsFunc supplies a point-in-time snapshot of the resolved-policy
// cache counters. The cache package exposes matching counters via Stats().
type CacheStatsFunc func() (hits, misses, evictions int64, entries int)

// CacheMetrics tracks metrics for the resolved-policy cache. The counters
// are read from the cache on scrape rather than incremented on each
// operation, so the cache stays free of metrics plumbing.
//
// Metrics:
//   - tessera_meridian_cache_hits_total
//   - tessera_meridian_cache_misses_total
//   - tessera_meridian_cache_evictions_total
//   - tessera_meridian_cache_entries
type CacheMetrics struct {
	hits      prometheus.CounterFunc
	misses    prometheus.CounterFunc
	evictions prometheus.CounterFunc
	entries   prometheus.GaugeFunc
}

// NewCacheMetrics creates and registers cache metrics with the provided
// registry. The stats function is called on every scrape and must be safe
// for concurrent use.
func NewCacheMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry, stats CacheStatsFunc) *CacheMetrics {
	cm := &CacheMetrics{
		hits: prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_hits_total",
				Help:      "Total number of resolved-policy cache hits",
			},
			func() float64 {
				h, _, _, _ := stats()
				return float64(h)
			},
		),

		misses: prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_misses_total",
				Help:      "Total number of resolved-policy cache misses",
			},
			func() float64 {
				_, m, _, _ := stats()
				return float64(m)
			},
		),

		evictions: prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_evictions_total",
				Help:      "Total number of resolved-policy cache evictions",
			},
			func() float64 {
				_, _, e, _ := stats()
				return float64(e)
			},
		),

		entries: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_entries",
				Help:      "Current number of resolved-policy cache entries",
			},
			func() float64 {
				_, _, _, n := stats()
				return float64(n)
			},
		),
	}

	registry.MustRegister(cm.hits, cm.misses, cm.evictions, cm.entries)

	return cm
}
