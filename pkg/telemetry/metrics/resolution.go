package metrics

import (
	"time"

	"tessera-hq/meridian/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ResolutionMetrics tracks metrics related to policy resolution.
//
// Metrics:
//   - tessera_meridian_resolutions_total: Total resolutions by outcome
//   - tessera_meridian_resolution_duration_seconds: Resolution duration
//   - tessera_meridian_resolution_scope_count: Scopes contributing to a resolution
type ResolutionMetrics struct {
	// Total resolutions by outcome ("resolved", "cached", "conflict", "error")
	resolutionsTotal *prometheus.CounterVec

	// Resolution duration histogram, cache hits included
	resolutionDuration *prometheus.HistogramVec

	// Number of scopes contributing to each resolution
	scopeCount prometheus.Histogram
}

// NewResolutionMetrics creates and registers resolution metrics with the
// provided registry.
func NewResolutionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ResolutionMetrics {
	rm := &ResolutionMetrics{
		resolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "resolutions_total",
				Help:      "Total number of policy resolutions",
			},
			[]string{"outcome"},
		),

		resolutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "resolution_duration_seconds",
				Help:      "Duration of policy resolution in seconds",
				Buckets:   cfg.ResolveDurationBuckets,
			},
			[]string{"outcome"},
		),

		scopeCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "resolution_scope_count",
				Help:      "Number of scopes contributing to a resolution",
				Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
			},
		),
	}

	registry.MustRegister(
		rm.resolutionsTotal,
		rm.resolutionDuration,
		rm.scopeCount,
	)

	return rm
}

// RecordResolution records a completed policy resolution.
//
// outcome is one of "resolved", "cached", "conflict", or "error".
// scopeCount is the number of scopes that contributed; pass -1 when the
// count is unknown (error paths).
func (rm *ResolutionMetrics) RecordResolution(outcome string, duration time.Duration, scopeCount int) {
	rm.resolutionsTotal.WithLabelValues(outcome).Inc()
	rm.resolutionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	if scopeCount >= 0 {
		rm.scopeCount.Observe(float64(scopeCount))
	}
}
