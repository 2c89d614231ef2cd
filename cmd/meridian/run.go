package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tessera-hq/meridian/pkg/audit"
	"tessera-hq/meridian/pkg/audit/recorder"
	"tessera-hq/meridian/pkg/audit/retention"
	auditstorage "tessera-hq/meridian/pkg/audit/storage"
	"tessera-hq/meridian/pkg/cli"
	"tessera-hq/meridian/pkg/config"
	"tessera-hq/meridian/pkg/policy/cache"
	"tessera-hq/meridian/pkg/policy/engine"
	"tessera-hq/meridian/pkg/scope/manager"
	"tessera-hq/meridian/pkg/telemetry/health"
	"tessera-hq/meridian/pkg/telemetry/logging"
	"tessera-hq/meridian/pkg/telemetry/metrics"
)

var runFlags struct {
	metricsAddr string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the policy resolution daemon",
	Long: `Run Meridian as a long-lived process.

The daemon loads scope definitions, keeps them hot-reloaded when watch
mode is enabled, maintains the last-known-good snapshot, prunes the
decision audit trail on schedule, and optionally serves health probes
and Prometheus metrics over HTTP.

Examples:
  # Run with the default configuration file
  meridian run

  # Run with a custom configuration and a metrics endpoint
  meridian run --config /etc/meridian/config.yaml --metrics-addr :9090`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.metricsAddr, "metrics-addr", "", "listen address for the health and metrics HTTP endpoint (empty disables)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	logger, err := logging.Setup(cfg.Telemetry.Logging, os.Stderr)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	ctx := cli.SetupSignalHandler()

	// Scope lifecycle
	mgr, err := manager.NewScopeManager(&manager.Config{
		Path:             cfg.Scopes.Path,
		Watch:            cfg.Scopes.Watch,
		StrictValidation: cfg.Scopes.Validation.Strict,
		SnapshotPath:     cfg.Scopes.Snapshot.Path,
	}, nil, nil, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer mgr.Close()

	// Policy cache
	var policyCache *cache.Cache
	if cfg.Engine.Cache.Enabled {
		policyCache = cache.New(&cache.Config{
			TTL:        cfg.Engine.Cache.TTL,
			MaxEntries: cfg.Engine.Cache.MaxEntries,
		})
	}

	// Metrics
	var cacheStats metrics.CacheStatsFunc
	if policyCache != nil {
		cacheStats = func() (int64, int64, int64, int) {
			s := policyCache.GetStats()
			return s.Hits, s.Misses, s.Evictions, s.Entries
		}
	}
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil, cacheStats)

	observers := []engine.Observer{metrics.NewObserver(collector)}

	// Decision audit trail
	var pruner *retention.Pruner
	var auditStore audit.Storage
	if cfg.Audit.Enabled {
		store, err := openAuditStorage(cfg)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer store.Close()
		auditStore = store

		rec := recorder.NewRecorder(store, &recorder.Config{
			Enabled:          true,
			AsyncBuffer:      cfg.Audit.Recorder.AsyncBuffer,
			WriteTimeout:     cfg.Audit.Recorder.WriteTimeout,
			MaxSubjectLength: cfg.Audit.Recorder.MaxSubjectLength,
		})
		defer rec.Close()
		observers = append(observers, rec)

		if cfg.Audit.Retention.Days > 0 || cfg.Audit.Retention.MaxRecords > 0 {
			pruner = retention.NewPruner(store, &retention.Config{
				RetentionDays: cfg.Audit.Retention.Days,
				PruneSchedule: cfg.Audit.Retention.PruneSchedule,
				MaxRecords:    cfg.Audit.Retention.MaxRecords,
			})
			if err := pruner.Start(ctx); err != nil {
				return cli.NewCommandError("run", err)
			}
			defer pruner.Stop()
		}
	}

	enforcer := engine.NewEnforcer(&engine.EnforcerConfig{
		Cache:     policyCache,
		Observers: observers,
		Logger:    logger,
	})

	// After every load: drop stale cached policies, update gauges, and
	// re-resolve every assigned bot so conflicts surface immediately
	// instead of on the first request.
	mgr.OnReload(func(version string) {
		if policyCache != nil {
			policyCache.Clear()
		}
		stats := mgr.GetRegistry().GetStats()
		collector.RecordScopeCounts(stats.ScopeCount, stats.ActiveScopes)
		collector.RecordReload("success")
		warmResolve(ctx, mgr, enforcer, logger)
	})

	result, err := mgr.LoadScopes(ctx)
	if err != nil {
		collector.RecordReload("failure")
		return cli.NewCommandError("run", fmt.Errorf("initial scope load failed: %w", err))
	}
	logger.Info("scopes loaded",
		"loaded", result.Loaded,
		"rejected", result.Rejected,
		"version", result.Version,
	)

	// HTTP endpoints: health probes always, metrics when enabled
	if runFlags.metricsAddr != "" {
		checker := health.New(0)
		checker.Register("scopes", func(ctx context.Context) error {
			if err := mgr.GetLastLoadError(); err != nil {
				return err
			}
			if mgr.GetLastLoadTime().IsZero() {
				return fmt.Errorf("scopes not loaded")
			}
			return nil
		})
		if auditStore != nil {
			checker.Register("audit", func(ctx context.Context) error {
				_, err := auditStore.Count(ctx, &audit.Query{})
				return err
			})
		}

		mux := http.NewServeMux()
		checker.Routes(mux)
		if cfg.Telemetry.Metrics.Enabled {
			mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
		}
		srv := &http.Server{
			Addr:              runFlags.metricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("telemetry endpoint listening",
				"addr", runFlags.metricsAddr,
				"metrics", cfg.Telemetry.Metrics.Enabled,
			)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("telemetry endpoint failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if cfg.Scopes.Watch {
		go func() {
			if err := mgr.Watch(ctx); err != nil && ctx.Err() == nil {
				logger.Error("scope watcher stopped", "error", err)
			}
		}()
	}

	logger.Info("meridian running",
		"scope_path", cfg.Scopes.Path,
		"watch", cfg.Scopes.Watch,
		"audit", cfg.Audit.Enabled,
	)

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// warmResolve resolves every bot with scope assignments. Conflicting scope
// combinations log here rather than failing the first live request.
func warmResolve(ctx context.Context, mgr *manager.ScopeManager, enforcer *engine.Enforcer, logger *slog.Logger) {
	registry := mgr.GetRegistry()
	for _, botID := range registry.Bots() {
		if _, err := enforcer.Resolve(ctx, botID, mgr.ActiveScopesForBot(botID)); err != nil {
			logger.Warn("bot has a conflicting scope assignment",
				"bot_id", botID,
				"error", err,
			)
		}
	}
}

// openAuditStorage opens the configured audit storage backend.
func openAuditStorage(cfg *config.Config) (audit.Storage, error) {
	switch cfg.Audit.Backend {
	case "sqlite":
		return auditstorage.NewSQLiteStorage(&auditstorage.SQLiteConfig{
			Path:         cfg.Audit.SQLite.Path,
			MaxOpenConns: cfg.Audit.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Audit.SQLite.MaxIdleConns,
			WALMode:      cfg.Audit.SQLite.WALMode,
			BusyTimeout:  cfg.Audit.SQLite.BusyTimeout,
		})
	case "memory":
		return auditstorage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported audit backend: %s (supported: sqlite, memory)", cfg.Audit.Backend)
	}
}
