// Package config provides configuration management for Tessera Meridian.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention MERIDIAN_SECTION_FIELD.
// For example:
//
//   - MERIDIAN_SCOPES_PATH overrides scopes.path
//   - MERIDIAN_AUDIT_SQLITE_PATH overrides audit.sqlite.path
//   - MERIDIAN_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Scopes.Path)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	scopes:
//	  path: "./scopes"
//	  watch: true
//
//	engine:
//	  cache:
//	    enabled: true
//	    ttl: 5m
//
//	audit:
//	  enabled: true
//	  sqlite:
//	    path: "data/audit.db"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton pattern uses read-write
// locks to allow concurrent reads while protecting against concurrent writes during
// reload operations.
package config
