package config

import (
	"fmt"
	"sync"
)

var (
	globalMu sync.RWMutex

	// globalConfig is the process-wide configuration shared by the CLI
	// commands. nil until Initialize or SetConfig succeeds.
	globalConfig *Config

	// globalPath is the path globalConfig was loaded from, used by
	// ReloadConfig. Empty when the config came from SetConfig.
	globalPath string
)

// Initialize loads configuration from path with environment overrides and
// installs it as the process-wide instance. The first successful call wins;
// later calls with any path return nil without reloading. A failed call
// leaves the singleton unset, so callers may fix the file and retry.
func Initialize(path string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalConfig != nil {
		return nil
	}

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return err
	}

	globalConfig = cfg
	globalPath = path
	return nil
}

// GetConfig returns the process-wide configuration, or nil when Initialize
// has not succeeded. Safe for concurrent use.
func GetConfig() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig
}

// SetConfig replaces the process-wide configuration directly, bypassing file
// loading. Intended for tests; it clears the recorded load path, so a later
// ReloadConfig must be given an explicit path.
func SetConfig(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = cfg
	globalPath = ""
}

// ReloadConfig re-reads the configuration and swaps the process-wide
// instance. With an empty path it reloads from the path Initialize used.
// On error the existing configuration stays in place.
func ReloadConfig(path string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if path == "" {
		path = globalPath
	}
	if path == "" {
		return fmt.Errorf("no configuration path recorded: call Initialize first")
	}

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}

	globalConfig = cfg
	globalPath = path
	return nil
}

// MustGetConfig returns the process-wide configuration and panics when it is
// unset. Only for paths that run strictly after a successful Initialize.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}
