package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "scopes.path").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateScopes(&cfg.Scopes)...)
	errs = append(errs, validateEngine(&cfg.Engine)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateScopes validates scope loading configuration.
func validateScopes(cfg *ScopesConfig) []FieldError {
	var errs []FieldError

	if cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "scopes.path",
			Message: "scope source path is required",
		})
	}

	if cfg.MaxFileSize < 0 {
		errs = append(errs, FieldError{
			Field:   "scopes.max_file_size",
			Message: "max file size must be non-negative",
		})
	}
	if cfg.MaxFileSize > 100*1024*1024 { // 100MB is excessive for YAML
		errs = append(errs, FieldError{
			Field:   "scopes.max_file_size",
			Message: "max file size exceeds reasonable limit (100MB)",
		})
	}

	if cfg.Snapshot.CheckpointInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "scopes.snapshot.checkpoint_interval",
			Message: "checkpoint interval must be non-negative",
		})
	}

	return errs
}

// validateEngine validates engine configuration.
func validateEngine(cfg *EngineConfig) []FieldError {
	var errs []FieldError

	if cfg.Cache.TTL < 0 {
		errs = append(errs, FieldError{
			Field:   "engine.cache.ttl",
			Message: "cache TTL must be non-negative",
		})
	}
	if cfg.Cache.MaxEntries < 0 {
		errs = append(errs, FieldError{
			Field:   "engine.cache.max_entries",
			Message: "cache max entries must be non-negative",
		})
	}

	return errs
}

// validateAudit validates audit configuration.
func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	validBackends := map[string]bool{"sqlite": true, "memory": true}
	if !validBackends[cfg.Backend] {
		errs = append(errs, FieldError{
			Field:   "audit.backend",
			Message: fmt.Sprintf("invalid backend %q (valid: sqlite, memory)", cfg.Backend),
		})
	}

	if cfg.Backend == "sqlite" && cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{
			Field:   "audit.sqlite.path",
			Message: "database path is required for the sqlite backend",
		})
	}
	if cfg.SQLite.MaxOpenConns < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.sqlite.max_open_conns",
			Message: "max open connections must be non-negative",
		})
	}
	if cfg.SQLite.MaxIdleConns > cfg.SQLite.MaxOpenConns {
		errs = append(errs, FieldError{
			Field:   "audit.sqlite.max_idle_conns",
			Message: "max idle connections cannot exceed max open connections",
		})
	}

	if cfg.Recorder.AsyncBuffer < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.recorder.async_buffer",
			Message: "async buffer size must be non-negative",
		})
	}
	if cfg.Recorder.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.recorder.write_timeout",
			Message: "write timeout must be non-negative",
		})
	}

	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention.days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention.max_records",
			Message: "max records must be non-negative",
		})
	}
	if cfg.Retention.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "audit.retention.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	if cfg.Query.DefaultLimit < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.query.default_limit",
			Message: "default limit must be non-negative",
		})
	}
	if cfg.Query.MaxLimit > 0 && cfg.Query.DefaultLimit > cfg.Query.MaxLimit {
		errs = append(errs, FieldError{
			Field:   "audit.query.default_limit",
			Message: "default limit cannot exceed max limit",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (valid: json, text)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Path != "" && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	for i, b := range cfg.Metrics.ResolveDurationBuckets {
		if b <= 0 {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.resolve_duration_buckets",
				Message: fmt.Sprintf("bucket %d must be positive", i),
			})
			break
		}
		if i > 0 && b <= cfg.Metrics.ResolveDurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.resolve_duration_buckets",
				Message: "buckets must be strictly increasing",
			})
			break
		}
	}

	return errs
}
