package config

import "time"

// Default values for configuration fields.
const (
	// Scope defaults
	DefaultScopesPath              = "./scopes"
	DefaultScopesWatch             = false
	DefaultScopesValidationStrict  = false
	DefaultScopesMaxFileSize       = int64(1048576) // 1MB
	DefaultSnapshotCheckpointEvery = 5 * time.Minute

	// Engine defaults
	DefaultCacheEnabled    = true
	DefaultCacheTTL        = 5 * time.Minute
	DefaultCacheMaxEntries = 10000

	// Audit defaults
	DefaultAuditEnabled              = true
	DefaultAuditBackend              = "sqlite"
	DefaultAuditSQLitePath           = "data/audit.db"
	DefaultAuditSQLiteMaxOpenConns   = 10
	DefaultAuditSQLiteMaxIdleConns   = 5
	DefaultAuditSQLiteWALMode        = true
	DefaultAuditSQLiteBusyTimeout    = 5 * time.Second
	DefaultAuditRecorderAsyncBuffer  = 1000
	DefaultAuditRecorderWriteTimeout = 5 * time.Second
	DefaultAuditRecorderMaxSubject   = 200
	DefaultAuditRetentionDays        = 90
	DefaultAuditRetentionSchedule    = "0 3 * * *"
	DefaultAuditRetentionMaxRecords  = int64(0)
	DefaultAuditQueryDefaultLimit    = 100
	DefaultAuditQueryMaxLimit        = 10000
	DefaultAuditQueryTimeout         = 30 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsEnabled   = true
	DefaultPrometheusPath   = "/metrics"
	DefaultMetricsNamespace = "tessera"
	DefaultMetricsSubsystem = "meridian"
)

// DefaultResolveDurationBuckets are the histogram buckets for policy
// resolution duration in seconds. Resolution is in-memory, so the buckets
// skew far lower than typical request-latency buckets.
var DefaultResolveDurationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Scope defaults
	if cfg.Scopes.Path == "" {
		cfg.Scopes.Path = DefaultScopesPath
	}
	if cfg.Scopes.MaxFileSize == 0 {
		cfg.Scopes.MaxFileSize = DefaultScopesMaxFileSize
	}
	if cfg.Scopes.Snapshot.CheckpointInterval == 0 {
		cfg.Scopes.Snapshot.CheckpointInterval = DefaultSnapshotCheckpointEvery
	}

	// Engine defaults
	if cfg.Engine.Cache.TTL == 0 {
		cfg.Engine.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Engine.Cache.MaxEntries == 0 {
		cfg.Engine.Cache.MaxEntries = DefaultCacheMaxEntries
	}

	// Audit defaults
	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}

	// SQLite defaults
	if cfg.Audit.SQLite.Path == "" {
		cfg.Audit.SQLite.Path = DefaultAuditSQLitePath
	}
	if cfg.Audit.SQLite.MaxOpenConns == 0 {
		cfg.Audit.SQLite.MaxOpenConns = DefaultAuditSQLiteMaxOpenConns
	}
	if cfg.Audit.SQLite.MaxIdleConns == 0 {
		cfg.Audit.SQLite.MaxIdleConns = DefaultAuditSQLiteMaxIdleConns
	}
	if cfg.Audit.SQLite.BusyTimeout == 0 {
		cfg.Audit.SQLite.BusyTimeout = DefaultAuditSQLiteBusyTimeout
	}

	// Recorder defaults
	if cfg.Audit.Recorder.AsyncBuffer == 0 {
		cfg.Audit.Recorder.AsyncBuffer = DefaultAuditRecorderAsyncBuffer
	}
	if cfg.Audit.Recorder.WriteTimeout == 0 {
		cfg.Audit.Recorder.WriteTimeout = DefaultAuditRecorderWriteTimeout
	}
	if cfg.Audit.Recorder.MaxSubjectLength == 0 {
		cfg.Audit.Recorder.MaxSubjectLength = DefaultAuditRecorderMaxSubject
	}

	// Retention defaults
	if cfg.Audit.Retention.Days == 0 {
		cfg.Audit.Retention.Days = DefaultAuditRetentionDays
	}
	if cfg.Audit.Retention.PruneSchedule == "" {
		cfg.Audit.Retention.PruneSchedule = DefaultAuditRetentionSchedule
	}

	// Query defaults
	if cfg.Audit.Query.DefaultLimit == 0 {
		cfg.Audit.Query.DefaultLimit = DefaultAuditQueryDefaultLimit
	}
	if cfg.Audit.Query.MaxLimit == 0 {
		cfg.Audit.Query.MaxLimit = DefaultAuditQueryMaxLimit
	}
	if cfg.Audit.Query.Timeout == 0 {
		cfg.Audit.Query.Timeout = DefaultAuditQueryTimeout
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.ResolveDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.ResolveDurationBuckets = append(
			[]float64(nil), DefaultResolveDurationBuckets...)
	}
}
