package manager

import "time"

// ScopeLoaderConfig contains configuration for the scope loader.
type ScopeLoaderConfig struct {
	// MaxFileSize is the maximum size of a scope file in bytes
	MaxFileSize int64

	// AllowedExtensions is the list of file extensions to load
	AllowedExtensions []string

	// FollowSymlinks controls whether symbolic links are followed
	FollowSymlinks bool

	// SkipHidden controls whether hidden files and directories are skipped
	SkipHidden bool
}

// DefaultLoaderConfig returns the default loader configuration.
func DefaultLoaderConfig() *ScopeLoaderConfig {
	return &ScopeLoaderConfig{
		MaxFileSize:       1 * 1024 * 1024, // 1MB
		AllowedExtensions: []string{".yaml", ".yml"},
		FollowSymlinks:    true,
		SkipHidden:        true,
	}
}

// Config contains configuration for the scope manager.
type Config struct {
	// Path is the scope file or directory to load from.
	Path string

	// Watch enables hot-reload via file system notifications.
	Watch bool

	// StrictValidation rejects the whole load when any scope has a
	// validation error. When false, invalid scopes are skipped with a
	// logged error and valid scopes still load.
	StrictValidation bool

	// SnapshotPath is the SQLite database used for the last-known-good
	// scope snapshot. Empty disables snapshots.
	SnapshotPath string
}

// LoadResult summarizes a load or reload operation.
type LoadResult struct {
	// Loaded is the number of scopes accepted into the registry.
	Loaded int

	// Rejected is the number of scopes dropped by validation.
	Rejected int

	// Warnings is the number of validation warnings across all scopes.
	Warnings int

	// Version is the registry version after the load.
	Version string

	// Duration is how long the load took.
	Duration time.Duration
}
