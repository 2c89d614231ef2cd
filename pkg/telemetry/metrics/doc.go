// Package metrics provides Prometheus metrics for Tessera Meridian.
//
// The Collector owns the registry and the metric subsystems:
//
//   - resolution: policy resolutions by outcome, resolution duration
//   - enforcement: topic check decisions, content admission decisions
//   - cache: resolved-policy cache hits, misses, evictions, size
//   - scopes: loaded scope count, reload outcomes
//
// An Observer adapter attaches the collector to the enforcement facade so
// resolution and decision metrics are recorded without the engine importing
// this package.
//
// Metrics are exposed in Prometheus exposition format via Handler().
package metrics
