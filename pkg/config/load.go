package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// newBaseConfig returns a Config with the enabled-by-default booleans set.
// Unmarshalling over this base lets an explicit `enabled: false` in the
// file win while an absent key keeps the default.
func newBaseConfig() Config {
	return Config{
		Engine: EngineConfig{
			Cache: CacheConfig{Enabled: DefaultCacheEnabled},
		},
		Audit: AuditConfig{Enabled: DefaultAuditEnabled},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
		},
	}
}

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := newBaseConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention MERIDIAN_SECTION_FIELD (e.g., MERIDIAN_SCOPES_PATH).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	// First load from file (this already applies defaults)
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format MERIDIAN_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Scope overrides
	if val := os.Getenv("MERIDIAN_SCOPES_PATH"); val != "" {
		cfg.Scopes.Path = val
	}
	if val := os.Getenv("MERIDIAN_SCOPES_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Scopes.Watch = b
		}
	}
	if val := os.Getenv("MERIDIAN_SCOPES_VALIDATION_STRICT"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Scopes.Validation.Strict = b
		}
	}
	if val := os.Getenv("MERIDIAN_SCOPES_SNAPSHOT_PATH"); val != "" {
		cfg.Scopes.Snapshot.Path = val
	}
	if val := os.Getenv("MERIDIAN_SCOPES_MAX_FILE_SIZE"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Scopes.MaxFileSize = i
		}
	}

	// Engine overrides
	if val := os.Getenv("MERIDIAN_ENGINE_CACHE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Engine.Cache.Enabled = b
		}
	}
	if val := os.Getenv("MERIDIAN_ENGINE_CACHE_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.Cache.TTL = d
		}
	}
	if val := os.Getenv("MERIDIAN_ENGINE_CACHE_MAX_ENTRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Engine.Cache.MaxEntries = i
		}
	}

	// Audit overrides
	if val := os.Getenv("MERIDIAN_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("MERIDIAN_AUDIT_BACKEND"); val != "" {
		cfg.Audit.Backend = val
	}
	if val := os.Getenv("MERIDIAN_AUDIT_SQLITE_PATH"); val != "" {
		cfg.Audit.SQLite.Path = val
	}
	if val := os.Getenv("MERIDIAN_AUDIT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.Retention.Days = i
		}
	}
	if val := os.Getenv("MERIDIAN_AUDIT_RETENTION_MAX_RECORDS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Audit.Retention.MaxRecords = i
		}
	}

	// Telemetry overrides
	if val := os.Getenv("MERIDIAN_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("MERIDIAN_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("MERIDIAN_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("MERIDIAN_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
}
