package metrics

import (
	"time"

	"tessera-hq/meridian/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the orchestrator for all Prometheus metrics in Tessera
// Meridian. It owns the registry and the metric subsystems, and provides a
// unified recording interface. All Record methods are no-ops when metrics
// are disabled in configuration.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	resolution  *ResolutionMetrics
	enforcement *EnforcementMetrics
	scopes      *ScopeMetrics
	cache       *CacheMetrics
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry is created.
//
// cacheStats may be nil when no policy cache is configured; cache metrics
// are then not registered.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry, cacheStats CacheStatsFunc) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.ResolveDurationBuckets) == 0 {
		cfg.ResolveDurationBuckets = append(
			[]float64(nil), config.DefaultResolveDurationBuckets...)
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.resolution = NewResolutionMetrics(cfg, registry)
	c.enforcement = NewEnforcementMetrics(cfg, registry)
	c.scopes = NewScopeMetrics(cfg, registry)
	if cacheStats != nil {
		c.cache = NewCacheMetrics(cfg, registry, cacheStats)
	}

	return c
}

// RecordResolution records a completed policy resolution.
func (c *Collector) RecordResolution(outcome string, duration time.Duration, scopeCount int) {
	if !c.config.Enabled {
		return
	}
	c.resolution.RecordResolution(outcome, duration, scopeCount)
}

// RecordTopicDecision records a topic check decision.
func (c *Collector) RecordTopicDecision(decision string) {
	if !c.config.Enabled {
		return
	}
	c.enforcement.RecordTopicDecision(decision)
}

// RecordContentDecision records a content admission decision.
func (c *Collector) RecordContentDecision(admitted bool) {
	if !c.config.Enabled {
		return
	}
	c.enforcement.RecordContentDecision(admitted)
}

// RecordScopeCounts updates the registry gauges after a load or reload.
func (c *Collector) RecordScopeCounts(loaded, active int) {
	if !c.config.Enabled {
		return
	}
	c.scopes.SetScopeCounts(loaded, active)
}

// RecordReload records a scope reload attempt.
func (c *Collector) RecordReload(status string) {
	if !c.config.Enabled {
		return
	}
	c.scopes.RecordReload(status)
}

// Registry returns the underlying Prometheus registry, for registering
// additional collectors or for testing.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
