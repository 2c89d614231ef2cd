package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tessera-hq/meridian/pkg/scope"
	"tessera-hq/meridian/pkg/scope/parser"
	"tessera-hq/meridian/pkg/scope/validator"
)

// ScopeManager coordinates scope loading, validation, registration, hot-reload,
// and last-known-good snapshots.
type ScopeManager struct {
	config    *Config
	loader    *ScopeLoader
	registry  *ScopeRegistry
	parser    *parser.Parser
	validator *validator.Validator
	snapshot  *SnapshotStore
	logger    *slog.Logger

	mu            sync.RWMutex
	lastLoadTime  time.Time
	lastLoadError error

	// reloadHooks run after every successful load or reload, outside the
	// manager lock. The policy cache registers one to drop stale entries.
	hookMu      sync.Mutex
	reloadHooks []func(version string)

	watchMu     sync.Mutex
	watchCancel context.CancelFunc
}

// NewScopeManager creates a new scope manager.
func NewScopeManager(
	config *Config,
	scopeParser *parser.Parser,
	scopeValidator *validator.Validator,
	logger *slog.Logger,
) (*ScopeManager, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.Path == "" {
		return nil, fmt.Errorf("scope path cannot be empty")
	}
	if scopeParser == nil {
		scopeParser = parser.NewParser()
	}
	if scopeValidator == nil {
		scopeValidator = validator.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "scope.manager")

	m := &ScopeManager{
		config:    config,
		loader:    NewScopeLoader(DefaultLoaderConfig(), scopeParser),
		registry:  NewScopeRegistry(),
		parser:    scopeParser,
		validator: scopeValidator,
		logger:    logger,
	}

	if config.SnapshotPath != "" {
		store, err := NewSnapshotStore(config.SnapshotPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open snapshot store: %w", err)
		}
		m.snapshot = store
	}

	return m, nil
}

// OnReload registers a hook that runs after every successful load or reload
// with the new registry version.
func (m *ScopeManager) OnReload(hook func(version string)) {
	m.hookMu.Lock()
	defer m.hookMu.Unlock()
	m.reloadHooks = append(m.reloadHooks, hook)
}

// LoadScopes loads all scopes from the configured source, validates them,
// and atomically replaces the registry contents. If the source is unreadable
// and a snapshot exists, the snapshot is restored instead.
func (m *ScopeManager) LoadScopes(ctx context.Context) (*LoadResult, error) {
	result, err := m.loadAndApply(ctx, false)
	if err == nil {
		m.notifyReload(result.Version)
		return result, nil
	}

	// Fail closed: an unreadable source on startup falls back to the
	// last-known-good snapshot rather than running with no guardrails.
	if m.snapshot != nil && m.registry.Count() == 0 {
		restored, rerr := m.restoreFromSnapshot(ctx)
		if rerr != nil {
			m.logger.Error("Snapshot restore failed after load failure",
				"load_error", err,
				"snapshot_error", rerr,
			)
			return nil, err
		}
		if restored > 0 {
			m.logger.Warn("Loaded scopes from last-known-good snapshot",
				"count", restored,
				"load_error", err,
			)
			m.notifyReload(m.registry.GetVersion())
			return &LoadResult{
				Loaded:  restored,
				Version: m.registry.GetVersion(),
			}, nil
		}
	}

	return nil, err
}

// ReloadScopes reloads all scopes from the configured source.
// This is an atomic operation with error recovery: on failure the previous
// scope set stays active.
func (m *ScopeManager) ReloadScopes(ctx context.Context) (*LoadResult, error) {
	result, err := m.loadAndApply(ctx, true)
	if err != nil {
		return nil, err
	}
	m.notifyReload(result.Version)
	return result, nil
}

// loadAndApply performs the load/validate/replace sequence under the manager
// lock. On any error the registry is left untouched.
func (m *ScopeManager) loadAndApply(ctx context.Context, reload bool) (*LoadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	startTime := time.Now()
	verb := "Loading"
	if reload {
		verb = "Reloading"
	}
	m.logger.Info(verb+" scopes", "path", m.config.Path)

	scopes, err := m.loadFromSource()
	if err != nil {
		m.lastLoadError = err
		m.logger.Error("Failed to load scopes",
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds(),
		)
		return nil, err
	}

	accepted, rejected, warnings, err := m.validateScopes(scopes)
	if err != nil {
		m.lastLoadError = err
		m.logger.Error("Scope validation failed",
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds(),
		)
		return nil, err
	}

	if err := m.registry.Replace(accepted); err != nil {
		m.lastLoadError = err
		m.logger.Error("Failed to register scopes",
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds(),
		)
		return nil, err
	}

	m.lastLoadTime = time.Now()
	m.lastLoadError = nil

	version := m.registry.GetVersion()
	m.logger.Info("Scopes loaded",
		"count", len(accepted),
		"rejected", rejected,
		"warnings", warnings,
		"version", version,
		"duration_ms", time.Since(startTime).Milliseconds(),
	)

	if m.snapshot != nil {
		if err := m.snapshot.Save(ctx, accepted, version); err != nil {
			// Snapshot failures degrade recovery, not the live scope set.
			m.logger.Error("Failed to persist scope snapshot", "error", err)
		}
	}

	return &LoadResult{
		Loaded:   len(accepted),
		Rejected: rejected,
		Warnings: warnings,
		Version:  version,
		Duration: time.Since(startTime),
	}, nil
}

// loadFromSource loads scopes from the configured file or directory.
func (m *ScopeManager) loadFromSource() ([]*scope.Scope, error) {
	isDir, err := m.loader.IsDirectory(m.config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to access scope path: %w", err)
	}

	if isDir {
		scopes, err := m.loader.LoadFromDirectory(m.config.Path)
		if err != nil {
			if len(scopes) == 0 {
				return nil, fmt.Errorf("failed to load scopes from directory: %w", err)
			}
			// Partial failure: keep the good files, surface the bad ones.
			m.logger.Warn("Some scope files failed to load", "error", err)
		}
		return scopes, nil
	}

	s, err := m.loader.LoadFromFile(m.config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load scope file: %w", err)
	}
	return []*scope.Scope{s}, nil
}

// validateScopes validates each loaded scope. In strict mode any validation
// error fails the whole load; otherwise invalid scopes are dropped with a
// logged error and the rest proceed.
func (m *ScopeManager) validateScopes(scopes []*scope.Scope) (accepted []*scope.Scope, rejected, warnings int, err error) {
	errList := &ErrorList{}
	seen := make(map[string]bool)

	for _, s := range scopes {
		report := m.validator.ValidateScope(s)
		warnings += len(report.Warnings)

		for _, w := range report.Warnings {
			m.logger.Warn("Scope validation warning",
				"scope", s.Name,
				"scope_id", s.ID,
				"warning", w,
			)
		}

		if !report.IsValid {
			rejected++
			for _, msg := range report.Errors {
				errList.Add(&ValidationError{
					ScopeID:   s.ID,
					ScopeName: s.Name,
					Message:   msg,
				})
			}
			if m.config.StrictValidation {
				return nil, rejected, warnings, errList.ToError()
			}
			m.logger.Error("Rejecting invalid scope",
				"scope", s.Name,
				"scope_id", s.ID,
				"errors", report.Errors,
			)
			continue
		}

		if seen[s.ID] {
			m.logger.Warn("Duplicate scope id detected, last file wins",
				"scope_id", s.ID,
				"file", s.SourceFile,
			)
		}
		seen[s.ID] = true
		accepted = append(accepted, s)
	}

	return accepted, rejected, warnings, nil
}

// restoreFromSnapshot replaces the registry with the snapshotted scope set.
func (m *ScopeManager) restoreFromSnapshot(ctx context.Context) (int, error) {
	scopes, _, err := m.snapshot.Restore(ctx)
	if err != nil {
		return 0, err
	}
	if len(scopes) == 0 {
		return 0, nil
	}
	if err := m.registry.Replace(scopes); err != nil {
		return 0, err
	}
	return len(scopes), nil
}

// GetScope retrieves a single scope by id.
func (m *ScopeManager) GetScope(id string) (*scope.Scope, error) {
	s, ok := m.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("scope %q not found", id)
	}
	return s, nil
}

// GetAllScopes retrieves all loaded scopes sorted by id.
func (m *ScopeManager) GetAllScopes() []*scope.Scope {
	return m.registry.GetAll()
}

// ActiveScopesForBot retrieves the active scopes assigned to a bot, sorted
// by id. This is the input the policy resolver expects.
func (m *ScopeManager) ActiveScopesForBot(botID string) []*scope.Scope {
	return m.registry.ActiveScopesForBot(botID)
}

// GetVersion returns the version of the currently loaded scope set.
func (m *ScopeManager) GetVersion() string {
	return m.registry.GetVersion()
}

// GetRegistry returns the underlying scope registry.
// This is useful for testing and introspection.
func (m *ScopeManager) GetRegistry() *ScopeRegistry {
	return m.registry
}

// GetLastLoadTime returns the timestamp of the last successful load.
func (m *ScopeManager) GetLastLoadTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastLoadTime
}

// GetLastLoadError returns the error from the last load attempt.
func (m *ScopeManager) GetLastLoadError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastLoadError
}

// ValidateDryRun validates the configured scope source without applying it
// to the registry. Useful for linting scope files before deployment.
func (m *ScopeManager) ValidateDryRun() error {
	m.logger.Info("Dry-run validation", "path", m.config.Path)

	scopes, err := m.loadFromSource()
	if err != nil {
		return fmt.Errorf("failed to load scopes: %w", err)
	}

	errList := &ErrorList{}
	for _, s := range scopes {
		report := m.validator.ValidateScope(s)
		for _, msg := range report.Errors {
			errList.Add(&ValidationError{
				ScopeID:   s.ID,
				ScopeName: s.Name,
				Message:   msg,
			})
		}
		for _, w := range report.Warnings {
			m.logger.Warn("Scope validation warning",
				"scope", s.Name,
				"warning", w,
			)
		}
	}

	if err := errList.ToError(); err != nil {
		return fmt.Errorf("scope validation failed: %w", err)
	}

	m.logger.Info("Dry-run validation successful", "count", len(scopes))
	return nil
}

// Watch starts watching the scope source for changes and reloads on each
// debounced change. This blocks until the context is cancelled.
func (m *ScopeManager) Watch(ctx context.Context) error {
	if !m.config.Watch {
		return fmt.Errorf("scope watching is not enabled in configuration")
	}

	m.watchMu.Lock()
	if m.watchCancel != nil {
		m.watchMu.Unlock()
		return fmt.Errorf("watch already started")
	}
	watchCtx, cancel := context.WithCancel(ctx)
	m.watchCancel = cancel
	m.watchMu.Unlock()

	watchConfig := DefaultFileWatcherConfig()
	watchConfig.Path = m.config.Path

	watcher, err := NewFileWatcher(watchConfig, m.logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	go func() {
		if err := watcher.Watch(watchCtx, func() error {
			_, err := m.ReloadScopes(watchCtx)
			return err
		}); err != nil {
			m.logger.Error("File watcher error", "error", err)
		}
	}()

	<-watchCtx.Done()

	if err := watcher.Stop(); err != nil {
		m.logger.Error("Failed to stop file watcher", "error", err)
		return err
	}

	return nil
}

// Close performs cleanup and releases resources.
func (m *ScopeManager) Close() error {
	m.watchMu.Lock()
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchMu.Unlock()

	if m.snapshot != nil {
		if err := m.snapshot.Close(); err != nil {
			m.logger.Error("Failed to close snapshot store", "error", err)
			return err
		}
	}

	m.logger.Info("Scope manager closed")
	return nil
}

// notifyReload runs all registered reload hooks outside the manager lock.
func (m *ScopeManager) notifyReload(version string) {
	m.hookMu.Lock()
	hooks := make([]func(string), len(m.reloadHooks))
	copy(hooks, m.reloadHooks)
	m.hookMu.Unlock()

	for _, hook := range hooks {
		hook(version)
	}
}
