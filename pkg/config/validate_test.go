package config

import (
	"errors"
	"strings"
	"testing"
)

// validConfig returns a fully defaulted configuration that passes validation.
func validConfig() *Config {
	cfg := &Config{}
	cfg.Engine.Cache.Enabled = DefaultCacheEnabled
	cfg.Audit.Enabled = DefaultAuditEnabled
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(cfg *Config)
		wantField string
	}{
		{
			name:      "missing scope path",
			mutate:    func(cfg *Config) { cfg.Scopes.Path = "" },
			wantField: "scopes.path",
		},
		{
			name:      "negative max file size",
			mutate:    func(cfg *Config) { cfg.Scopes.MaxFileSize = -1 },
			wantField: "scopes.max_file_size",
		},
		{
			name:      "excessive max file size",
			mutate:    func(cfg *Config) { cfg.Scopes.MaxFileSize = 200 * 1024 * 1024 },
			wantField: "scopes.max_file_size",
		},
		{
			name:      "negative checkpoint interval",
			mutate:    func(cfg *Config) { cfg.Scopes.Snapshot.CheckpointInterval = -1 },
			wantField: "scopes.snapshot.checkpoint_interval",
		},
		{
			name:      "negative cache ttl",
			mutate:    func(cfg *Config) { cfg.Engine.Cache.TTL = -1 },
			wantField: "engine.cache.ttl",
		},
		{
			name:      "negative cache max entries",
			mutate:    func(cfg *Config) { cfg.Engine.Cache.MaxEntries = -1 },
			wantField: "engine.cache.max_entries",
		},
		{
			name:      "unknown audit backend",
			mutate:    func(cfg *Config) { cfg.Audit.Backend = "postgres" },
			wantField: "audit.backend",
		},
		{
			name: "sqlite backend without path",
			mutate: func(cfg *Config) {
				cfg.Audit.Backend = "sqlite"
				cfg.Audit.SQLite.Path = ""
			},
			wantField: "audit.sqlite.path",
		},
		{
			name: "idle conns exceed open conns",
			mutate: func(cfg *Config) {
				cfg.Audit.SQLite.MaxOpenConns = 2
				cfg.Audit.SQLite.MaxIdleConns = 5
			},
			wantField: "audit.sqlite.max_idle_conns",
		},
		{
			name:      "negative async buffer",
			mutate:    func(cfg *Config) { cfg.Audit.Recorder.AsyncBuffer = -1 },
			wantField: "audit.recorder.async_buffer",
		},
		{
			name:      "negative write timeout",
			mutate:    func(cfg *Config) { cfg.Audit.Recorder.WriteTimeout = -1 },
			wantField: "audit.recorder.write_timeout",
		},
		{
			name:      "negative retention days",
			mutate:    func(cfg *Config) { cfg.Audit.Retention.Days = -1 },
			wantField: "audit.retention.days",
		},
		{
			name:      "negative max records",
			mutate:    func(cfg *Config) { cfg.Audit.Retention.MaxRecords = -1 },
			wantField: "audit.retention.max_records",
		},
		{
			name:      "invalid cron expression",
			mutate:    func(cfg *Config) { cfg.Audit.Retention.PruneSchedule = "every tuesday" },
			wantField: "audit.retention.prune_schedule",
		},
		{
			name:      "negative default limit",
			mutate:    func(cfg *Config) { cfg.Audit.Query.DefaultLimit = -1 },
			wantField: "audit.query.default_limit",
		},
		{
			name: "default limit exceeds max limit",
			mutate: func(cfg *Config) {
				cfg.Audit.Query.DefaultLimit = 500
				cfg.Audit.Query.MaxLimit = 100
			},
			wantField: "audit.query.default_limit",
		},
		{
			name:      "unknown log level",
			mutate:    func(cfg *Config) { cfg.Telemetry.Logging.Level = "verbose" },
			wantField: "telemetry.logging.level",
		},
		{
			name:      "unknown log format",
			mutate:    func(cfg *Config) { cfg.Telemetry.Logging.Format = "logfmt" },
			wantField: "telemetry.logging.format",
		},
		{
			name:      "metrics path without leading slash",
			mutate:    func(cfg *Config) { cfg.Telemetry.Metrics.Path = "metrics" },
			wantField: "telemetry.metrics.path",
		},
		{
			name: "non-positive bucket",
			mutate: func(cfg *Config) {
				cfg.Telemetry.Metrics.ResolveDurationBuckets = []float64{0, 0.1}
			},
			wantField: "telemetry.metrics.resolve_duration_buckets",
		},
		{
			name: "non-increasing buckets",
			mutate: func(cfg *Config) {
				cfg.Telemetry.Metrics.ResolveDurationBuckets = []float64{0.1, 0.1, 0.5}
			},
			wantField: "telemetry.metrics.resolve_duration_buckets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() error = nil, want validation error")
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error type = %T, want ValidationError", err)
			}

			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() errors = %v, want error on field %q", verr.Errors, tt.wantField)
			}
		})
	}
}

func TestValidateCaseInsensitiveLevels(t *testing.T) {
	cfg := validConfig()
	cfg.Telemetry.Logging.Level = "DEBUG"
	cfg.Telemetry.Logging.Format = "Text"

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v, want nil for mixed-case level and format", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Scopes.Path = ""
	cfg.Audit.Backend = "redis"
	cfg.Telemetry.Logging.Level = "loud"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() error = nil, want validation errors")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error type = %T, want ValidationError", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("Validate() returned %d errors, want 3: %v", len(verr.Errors), verr.Errors)
	}
}

func TestValidationErrorMessages(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := ValidationError{Errors: []FieldError{
			{Field: "scopes.path", Message: "scope source path is required"},
		}}
		got := err.Error()
		if !strings.Contains(got, "scopes.path: scope source path is required") {
			t.Errorf("Error() = %q, want it to contain the field error", got)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := ValidationError{Errors: []FieldError{
			{Field: "a", Message: "first"},
			{Field: "b", Message: "second"},
		}}
		got := err.Error()
		if !strings.Contains(got, "2 errors") {
			t.Errorf("Error() = %q, want error count", got)
		}
		if !strings.Contains(got, "a: first") || !strings.Contains(got, "b: second") {
			t.Errorf("Error() = %q, want both field errors listed", got)
		}
	})
}
