package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tessera-hq/meridian/pkg/audit"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain decision records.
	// 0 means keep records forever (no age-based pruning).
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	MaxRecords int64
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 90,
		PruneSchedule: "0 3 * * *",
		MaxRecords:    0,
	}
}

// Pruner enforces retention policies on decision records.
type Pruner struct {
	storage   audit.Storage
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
}

// NewPruner creates a new retention pruner.
func NewPruner(storage audit.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	pruner := &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "audit.retention"),
	}

	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// Prune deletes decision records older than the retention period or
// exceeding the max record count.
//
// Pruning happens in two phases:
//  1. Age-based: delete records older than retention_days
//  2. Count-based: if total records > max_records, delete oldest
//
// Returns the total number of records deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
		p.logger.Info("pruned records by age",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
		)
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
		p.logger.Info("pruned records by count",
			"deleted_count", deleted,
			"max_records", p.config.MaxRecords,
		)
	}

	if totalDeleted == 0 {
		p.logger.Debug("no records pruned",
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	} else {
		p.logger.Info("audit pruning completed",
			"total_deleted", totalDeleted,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}

	return totalDeleted, nil
}

// pruneByAge deletes records older than the retention period.
func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)

	p.logger.Debug("pruning by age",
		"cutoff_time", cutoff,
		"retention_days", p.config.RetentionDays,
	)

	deleted, err := p.storage.Delete(ctx, &audit.Query{EndTime: &cutoff})
	if err != nil {
		return 0, audit.NewRetentionError(p.config.RetentionDays, err)
	}

	return deleted, nil
}

// pruneByCount deletes oldest records if total count exceeds max_records.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &audit.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}

	if count <= p.config.MaxRecords {
		p.logger.Debug("record count within limit",
			"current", count,
			"max", p.config.MaxRecords,
		)
		return 0, nil
	}

	toDelete := count - p.config.MaxRecords

	p.logger.Info("record count exceeds limit, pruning oldest",
		"current_count", count,
		"max_records", p.config.MaxRecords,
		"to_delete", toDelete,
	)

	// Find the cutoff: the recorded time of the newest record among those
	// to delete, by walking oldest-first.
	oldest, err := p.storage.Query(ctx, &audit.Query{
		Limit:     int(toDelete),
		SortOrder: "asc",
	})
	if err != nil {
		return 0, fmt.Errorf("failed to query oldest records: %w", err)
	}
	if len(oldest) == 0 {
		return 0, nil
	}

	// Delete is inclusive of the cutoff, so records sharing the cutoff
	// timestamp are all removed: the count may undershoot max_records by the
	// number of ties. Retention only needs an upper bound, never an exact
	// count, so ties are tolerated rather than paging through record ids.
	cutoff := oldest[len(oldest)-1].RecordedTime

	p.logger.Debug("calculated cutoff time for count-based pruning",
		"cutoff_time", cutoff,
		"records_to_delete", len(oldest),
	)

	deleted, err := p.storage.Delete(ctx, &audit.Query{EndTime: &cutoff})
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}

	return deleted, nil
}

// Start starts the automatic pruning scheduler.
// Call this when starting the application.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
// Call this during graceful shutdown.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
