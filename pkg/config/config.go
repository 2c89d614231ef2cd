package config

import "time"

// Config is the root configuration structure for Tessera Meridian.
// It contains all configuration sections for scope loading, the policy
// resolution engine, decision auditing, and telemetry.
type Config struct {
	// Scopes contains configuration for scope definition loading including
	// the source location, validation settings, and watch mode.
	Scopes ScopesConfig `yaml:"scopes"`

	// Engine contains configuration for the policy resolution engine
	// including the resolved-policy cache.
	Engine EngineConfig `yaml:"engine"`

	// Audit contains configuration for decision recording and storage
	// including backend selection and retention settings.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains configuration for observability including logging
	// and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ScopesConfig contains configuration for scope definition loading.
type ScopesConfig struct {
	// Path is the scope source: a YAML file or a directory of YAML files.
	// Default: "./scopes"
	Path string `yaml:"path"`

	// Watch enables automatic reloading when scope files change.
	// Default: false
	Watch bool `yaml:"watch"`

	// Validation contains scope validation settings.
	Validation ScopeValidationConfig `yaml:"validation"`

	// Snapshot contains last-known-good snapshot configuration. When a
	// snapshot path is set, the loaded scope set is persisted after every
	// successful load and restored at startup if the source is unreadable.
	Snapshot SnapshotConfig `yaml:"snapshot"`

	// MaxFileSize is the maximum size in bytes of a single scope file.
	// Default: 1048576 (1MB)
	MaxFileSize int64 `yaml:"max_file_size"`
}

// ScopeValidationConfig contains configuration for scope validation.
type ScopeValidationConfig struct {
	// Strict controls whether validation errors fail the entire load.
	// When false, invalid scopes are dropped and the rest are loaded.
	// Default: false
	Strict bool `yaml:"strict"`
}

// SnapshotConfig contains last-known-good snapshot configuration.
type SnapshotConfig struct {
	// Path is the file path for the snapshot SQLite database.
	// Empty disables snapshotting.
	Path string `yaml:"path"`

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5m
	CheckpointInterval time.Duration `yaml:"checkpoint_interval"`
}

// EngineConfig contains configuration for the policy resolution engine.
type EngineConfig struct {
	// Cache contains resolved-policy cache configuration.
	Cache CacheConfig `yaml:"cache"`
}

// CacheConfig contains resolved-policy cache configuration.
type CacheConfig struct {
	// Enabled controls whether resolved policies are cached.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// TTL is the maximum age of a cached policy.
	// Default: 5m
	TTL time.Duration `yaml:"ttl"`

	// MaxEntries is the maximum number of cached bots.
	// Default: 10000
	MaxEntries int `yaml:"max_entries"`
}

// AuditConfig contains configuration for decision recording and storage.
type AuditConfig struct {
	// Enabled controls whether decision recording is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend specifies the storage backend for decision records.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Recorder contains decision recorder configuration.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`

	// Query contains query configuration.
	Query QueryConfig `yaml:"query"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig contains decision recorder configuration.
type RecorderConfig struct {
	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// MaxSubjectLength is the maximum length for the subject field
	// before truncation.
	// Default: 200
	MaxSubjectLength int `yaml:"max_subject_length"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// Days is the number of days to retain decision records.
	// Records older than this are eligible for deletion.
	// 0 means keep records forever (no pruning).
	// Default: 90
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}

// QueryConfig contains query configuration.
type QueryConfig struct {
	// DefaultLimit is the default number of records to return if not specified.
	// Default: 100
	DefaultLimit int `yaml:"default_limit"`

	// MaxLimit is the maximum number of records that can be returned in a single query.
	// Default: 10000
	MaxLimit int `yaml:"max_limit"`

	// Timeout is the query execution timeout.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "tessera"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "meridian"
	Subsystem string `yaml:"subsystem"`

	// ResolveDurationBuckets defines histogram buckets for policy
	// resolution duration (seconds).
	// Default: [0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5]
	ResolveDurationBuckets []float64 `yaml:"resolve_duration_buckets"`
}
