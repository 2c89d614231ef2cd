package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeConfigFile writes a config YAML to a temp dir and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meridian.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
scopes:
  path: /etc/meridian/scopes
  watch: true
  validation:
    strict: true
engine:
  cache:
    ttl: 30s
    max_entries: 250
audit:
  backend: memory
telemetry:
  logging:
    level: debug
    format: text
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Scopes.Path != "/etc/meridian/scopes" {
		t.Errorf("Scopes.Path = %q, want %q", cfg.Scopes.Path, "/etc/meridian/scopes")
	}
	if !cfg.Scopes.Watch {
		t.Error("Scopes.Watch = false, want true")
	}
	if !cfg.Scopes.Validation.Strict {
		t.Error("Scopes.Validation.Strict = false, want true")
	}
	if cfg.Engine.Cache.TTL != 30*time.Second {
		t.Errorf("Engine.Cache.TTL = %v, want 30s", cfg.Engine.Cache.TTL)
	}
	if cfg.Engine.Cache.MaxEntries != 250 {
		t.Errorf("Engine.Cache.MaxEntries = %d, want 250", cfg.Engine.Cache.MaxEntries)
	}
	if cfg.Audit.Backend != "memory" {
		t.Errorf("Audit.Backend = %q, want %q", cfg.Audit.Backend, "memory")
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Telemetry.Logging.Level = %q, want %q", cfg.Telemetry.Logging.Level, "debug")
	}
	if cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("Telemetry.Logging.Format = %q, want %q", cfg.Telemetry.Logging.Format, "text")
	}
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	// Minimal file: only the required scope path.
	path := writeConfigFile(t, "scopes:\n  path: ./scopes\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Scopes.MaxFileSize != DefaultScopesMaxFileSize {
		t.Errorf("Scopes.MaxFileSize = %d, want %d", cfg.Scopes.MaxFileSize, DefaultScopesMaxFileSize)
	}
	if cfg.Engine.Cache.TTL != DefaultCacheTTL {
		t.Errorf("Engine.Cache.TTL = %v, want %v", cfg.Engine.Cache.TTL, DefaultCacheTTL)
	}
	if cfg.Engine.Cache.MaxEntries != DefaultCacheMaxEntries {
		t.Errorf("Engine.Cache.MaxEntries = %d, want %d", cfg.Engine.Cache.MaxEntries, DefaultCacheMaxEntries)
	}
	if cfg.Audit.Backend != DefaultAuditBackend {
		t.Errorf("Audit.Backend = %q, want %q", cfg.Audit.Backend, DefaultAuditBackend)
	}
	if cfg.Audit.SQLite.Path != DefaultAuditSQLitePath {
		t.Errorf("Audit.SQLite.Path = %q, want %q", cfg.Audit.SQLite.Path, DefaultAuditSQLitePath)
	}
	if cfg.Audit.Recorder.AsyncBuffer != DefaultAuditRecorderAsyncBuffer {
		t.Errorf("Audit.Recorder.AsyncBuffer = %d, want %d", cfg.Audit.Recorder.AsyncBuffer, DefaultAuditRecorderAsyncBuffer)
	}
	if cfg.Audit.Retention.Days != DefaultAuditRetentionDays {
		t.Errorf("Audit.Retention.Days = %d, want %d", cfg.Audit.Retention.Days, DefaultAuditRetentionDays)
	}
	if cfg.Audit.Retention.PruneSchedule != DefaultAuditRetentionSchedule {
		t.Errorf("Audit.Retention.PruneSchedule = %q, want %q", cfg.Audit.Retention.PruneSchedule, DefaultAuditRetentionSchedule)
	}
	if cfg.Telemetry.Logging.Level != DefaultLoggingLevel {
		t.Errorf("Telemetry.Logging.Level = %q, want %q", cfg.Telemetry.Logging.Level, DefaultLoggingLevel)
	}
	if cfg.Telemetry.Logging.Format != DefaultLoggingFormat {
		t.Errorf("Telemetry.Logging.Format = %q, want %q", cfg.Telemetry.Logging.Format, DefaultLoggingFormat)
	}
	if cfg.Telemetry.Metrics.Path != DefaultPrometheusPath {
		t.Errorf("Telemetry.Metrics.Path = %q, want %q", cfg.Telemetry.Metrics.Path, DefaultPrometheusPath)
	}
	if len(cfg.Telemetry.Metrics.ResolveDurationBuckets) != len(DefaultResolveDurationBuckets) {
		t.Errorf("ResolveDurationBuckets has %d entries, want %d",
			len(cfg.Telemetry.Metrics.ResolveDurationBuckets), len(DefaultResolveDurationBuckets))
	}
}

// Booleans that default to true must survive an absent key but yield to an
// explicit false in the file.
func TestLoadConfigEnabledDefaults(t *testing.T) {
	t.Run("absent keys keep enabled", func(t *testing.T) {
		path := writeConfigFile(t, "scopes:\n  path: ./scopes\n")

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if !cfg.Engine.Cache.Enabled {
			t.Error("Engine.Cache.Enabled = false, want true by default")
		}
		if !cfg.Audit.Enabled {
			t.Error("Audit.Enabled = false, want true by default")
		}
		if !cfg.Telemetry.Metrics.Enabled {
			t.Error("Telemetry.Metrics.Enabled = false, want true by default")
		}
	})

	t.Run("explicit false wins", func(t *testing.T) {
		path := writeConfigFile(t, `
scopes:
  path: ./scopes
engine:
  cache:
    enabled: false
audit:
  enabled: false
telemetry:
  metrics:
    enabled: false
`)

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Engine.Cache.Enabled {
			t.Error("Engine.Cache.Enabled = true, want false")
		}
		if cfg.Audit.Enabled {
			t.Error("Audit.Enabled = true, want false")
		}
		if cfg.Telemetry.Metrics.Enabled {
			t.Error("Telemetry.Metrics.Enabled = true, want false")
		}
	})
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("LoadConfig() error = nil, want read error")
	}
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "scopes:\n\tpath: broken\n")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig() error = nil, want parse error")
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := writeConfigFile(t, `
scopes:
  path: ./scopes
audit:
  backend: postgres
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig() error = nil, want validation error")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
scopes:
  path: ./scopes
  watch: false
`)

	t.Setenv("MERIDIAN_SCOPES_PATH", "/override/scopes")
	t.Setenv("MERIDIAN_SCOPES_WATCH", "true")
	t.Setenv("MERIDIAN_SCOPES_VALIDATION_STRICT", "true")
	t.Setenv("MERIDIAN_SCOPES_SNAPSHOT_PATH", "/override/snapshot.db")
	t.Setenv("MERIDIAN_ENGINE_CACHE_ENABLED", "false")
	t.Setenv("MERIDIAN_ENGINE_CACHE_TTL", "90s")
	t.Setenv("MERIDIAN_ENGINE_CACHE_MAX_ENTRIES", "42")
	t.Setenv("MERIDIAN_AUDIT_BACKEND", "memory")
	t.Setenv("MERIDIAN_AUDIT_RETENTION_DAYS", "7")
	t.Setenv("MERIDIAN_TELEMETRY_LOGGING_LEVEL", "warn")
	t.Setenv("MERIDIAN_TELEMETRY_METRICS_PATH", "/internal/metrics")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Scopes.Path != "/override/scopes" {
		t.Errorf("Scopes.Path = %q, want %q", cfg.Scopes.Path, "/override/scopes")
	}
	if !cfg.Scopes.Watch {
		t.Error("Scopes.Watch = false, want true")
	}
	if !cfg.Scopes.Validation.Strict {
		t.Error("Scopes.Validation.Strict = false, want true")
	}
	if cfg.Scopes.Snapshot.Path != "/override/snapshot.db" {
		t.Errorf("Scopes.Snapshot.Path = %q, want %q", cfg.Scopes.Snapshot.Path, "/override/snapshot.db")
	}
	if cfg.Engine.Cache.Enabled {
		t.Error("Engine.Cache.Enabled = true, want false")
	}
	if cfg.Engine.Cache.TTL != 90*time.Second {
		t.Errorf("Engine.Cache.TTL = %v, want 90s", cfg.Engine.Cache.TTL)
	}
	if cfg.Engine.Cache.MaxEntries != 42 {
		t.Errorf("Engine.Cache.MaxEntries = %d, want 42", cfg.Engine.Cache.MaxEntries)
	}
	if cfg.Audit.Backend != "memory" {
		t.Errorf("Audit.Backend = %q, want %q", cfg.Audit.Backend, "memory")
	}
	if cfg.Audit.Retention.Days != 7 {
		t.Errorf("Audit.Retention.Days = %d, want 7", cfg.Audit.Retention.Days)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Telemetry.Logging.Level = %q, want %q", cfg.Telemetry.Logging.Level, "warn")
	}
	if cfg.Telemetry.Metrics.Path != "/internal/metrics" {
		t.Errorf("Telemetry.Metrics.Path = %q, want %q", cfg.Telemetry.Metrics.Path, "/internal/metrics")
	}
}

func TestLoadConfigEnvOverridesIgnoreUnparseable(t *testing.T) {
	path := writeConfigFile(t, `
scopes:
  path: ./scopes
engine:
  cache:
    ttl: 10s
`)

	t.Setenv("MERIDIAN_SCOPES_WATCH", "not-a-bool")
	t.Setenv("MERIDIAN_ENGINE_CACHE_TTL", "not-a-duration")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}
	if cfg.Scopes.Watch {
		t.Error("Scopes.Watch = true, want false for unparseable override")
	}
	if cfg.Engine.Cache.TTL != 10*time.Second {
		t.Errorf("Engine.Cache.TTL = %v, want file value 10s", cfg.Engine.Cache.TTL)
	}
}

func TestLoadConfigEnvOverridesRevalidate(t *testing.T) {
	path := writeConfigFile(t, "scopes:\n  path: ./scopes\n")

	t.Setenv("MERIDIAN_AUDIT_BACKEND", "postgres")

	_, err := LoadConfigWithEnvOverrides(path)
	if err == nil {
		t.Fatal("LoadConfigWithEnvOverrides() error = nil, want validation error for invalid backend")
	}
}

func TestApplyDefaultsIdempotent(t *testing.T) {
	cfg := Config{}
	ApplyDefaults(&cfg)
	first := cfg
	ApplyDefaults(&cfg)

	if cfg.Scopes.Path != first.Scopes.Path ||
		cfg.Engine.Cache.TTL != first.Engine.Cache.TTL ||
		cfg.Audit.Backend != first.Audit.Backend {
		t.Error("ApplyDefaults changed values on second call")
	}
}

func TestSetConfigAndGetConfig(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)

	cfg := &Config{}
	ApplyDefaults(cfg)
	SetConfig(cfg)

	if got := GetConfig(); got != cfg {
		t.Errorf("GetConfig() = %p, want %p", got, cfg)
	}
	if got := MustGetConfig(); got != cfg {
		t.Errorf("MustGetConfig() = %p, want %p", got, cfg)
	}
}

func TestMustGetConfigPanics(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)

	SetConfig(nil)

	defer func() {
		if recover() == nil {
			t.Error("MustGetConfig() did not panic with nil config")
		}
	}()
	MustGetConfig()
}
