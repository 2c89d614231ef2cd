package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"tessera-hq/meridian/pkg/cli"
	"tessera-hq/meridian/pkg/config"
	"tessera-hq/meridian/pkg/policy/engine"
	"tessera-hq/meridian/pkg/scope/manager"
	"tessera-hq/meridian/pkg/telemetry/logging"
)

// enforcementStack is the minimal wiring for one-shot commands: config,
// loaded scopes, and an enforcer without audit or metrics attached.
type enforcementStack struct {
	cfg      *config.Config
	manager  *manager.ScopeManager
	enforcer *engine.Enforcer
}

// buildStack loads configuration and scopes for a one-shot command.
// scopePath overrides the configured scope source when non-empty.
func buildStack(ctx context.Context, scopePath string) (*enforcementStack, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// One-shot commands log errors only, unless --verbose.
	logCfg := cfg.Telemetry.Logging
	if !verbose {
		logCfg.Level = "error"
	}
	logger, err := logging.New(logCfg, os.Stderr)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	path := cfg.Scopes.Path
	if scopePath != "" {
		path = scopePath
	}

	mgr, err := manager.NewScopeManager(&manager.Config{
		Path:             path,
		StrictValidation: cfg.Scopes.Validation.Strict,
	}, nil, nil, logger)
	if err != nil {
		return nil, err
	}

	if _, err := mgr.LoadScopes(ctx); err != nil {
		mgr.Close()
		return nil, fmt.Errorf("failed to load scopes from %s: %w", path, err)
	}

	return &enforcementStack{
		cfg:     cfg,
		manager: mgr,
		enforcer: engine.NewEnforcer(&engine.EnforcerConfig{
			Logger: logger,
		}),
	}, nil
}

// Close releases the stack's resources.
func (s *enforcementStack) Close() {
	s.manager.Close()
}

// commandResolveError wraps a resolution failure, tagging conflicts with
// their dedicated exit status.
func commandResolveError(command string, err error) error {
	if engine.IsConflict(err) {
		return cli.NewCommandErrorWithCode(command, err, cli.ExitPolicyConflict)
	}
	return cli.NewCommandError(command, err)
}
