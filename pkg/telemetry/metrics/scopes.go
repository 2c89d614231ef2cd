package metrics

import (
	"tessera-hq/meridian/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ScopeMetrics tracks metrics for the scope registry and reload lifecycle.
//
// Metrics:
//   - tessera_meridian_scopes_loaded: Scopes currently in the registry
//   - tessera_meridian_scopes_active: Active scopes currently in the registry
//   - tessera_meridian_scope_reloads_total: Reload attempts by status
type ScopeMetrics struct {
	scopesLoaded prometheus.Gauge
	scopesActive prometheus.Gauge
	reloadsTotal *prometheus.CounterVec
}

// NewScopeMetrics creates and registers scope metrics with the provided
// registry.
func NewScopeMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ScopeMetrics {
	sm := &ScopeMetrics{
		scopesLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "scopes_loaded",
				Help:      "Number of scopes currently in the registry",
			},
		),

		scopesActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "scopes_active",
				Help:      "Number of active scopes currently in the registry",
			},
		),

		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "scope_reloads_total",
				Help:      "Total number of scope reload attempts by status",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(sm.scopesLoaded, sm.scopesActive, sm.reloadsTotal)

	return sm
}

// SetScopeCounts updates the registry gauges after a load or reload.
func (sm *ScopeMetrics) SetScopeCounts(loaded, active int) {
	sm.scopesLoaded.Set(float64(loaded))
	sm.scopesActive.Set(float64(active))
}

// RecordReload records a reload attempt. status is "success" or "failure".
func (sm *ScopeMetrics) RecordReload(status string) {
	sm.reloadsTotal.WithLabelValues(status).Inc()
}
