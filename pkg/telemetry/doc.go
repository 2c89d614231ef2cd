// Package telemetry provides observability for Tessera Meridian.
//
// The package is organized into subpackages:
//
//   - logging: structured logging built on log/slog
//   - metrics: Prometheus metrics for resolution, enforcement, caching,
//     and scope loading
//
// Both subpackages are wired from the telemetry section of the root
// configuration and are safe for concurrent use.
package telemetry
