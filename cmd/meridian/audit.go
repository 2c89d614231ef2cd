package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tessera-hq/meridian/pkg/audit"
	"tessera-hq/meridian/pkg/audit/retention"
	"tessera-hq/meridian/pkg/cli"
	"tessera-hq/meridian/pkg/config"
)

var auditFlags struct {
	backend   string
	timeRange string
	bot       string
	kind      string
	decision  string
	limit     int
	offset    int
	format    string
	output    string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query the decision audit trail",
	Long: `Query and maintain the decision audit trail.

Every resolution, topic check, and content admission decision is recorded
with the policy fingerprint that produced it, so past decisions can be
traced back to the exact scope set in force at the time.

Subcommands:
  query  - Query decision records with filters
  prune  - Apply the retention policy now

Examples:
  # Query the last day of topic checks for one bot
  meridian audit query --bot support-bot --kind topic_check \
    --time-range "2026-08-30T00:00:00Z/2026-08-31T00:00:00Z"

  # Export forbidden decisions to CSV
  meridian audit query --decision forbidden --format csv --output denials.csv`,
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query decision records",
	Long: `Query decision records with various filters.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-08-30T00:00:00Z/2026-08-31T00:00:00Z"`,
	RunE: queryAudit,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy now",
	Long: `Delete decision records past the configured retention window.

Pruning normally runs on the configured cron schedule inside the daemon;
this command runs one pruning pass immediately.`,
	RunE: pruneAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQueryCmd, auditPruneCmd)

	auditQueryCmd.Flags().StringVar(&auditFlags.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")
	auditQueryCmd.Flags().StringVar(&auditFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	auditQueryCmd.Flags().StringVar(&auditFlags.bot, "bot", "", "filter by bot id")
	auditQueryCmd.Flags().StringVar(&auditFlags.kind, "kind", "", "filter by record kind (resolution, topic_check, content_check)")
	auditQueryCmd.Flags().StringVar(&auditFlags.decision, "decision", "", "filter by decision (resolved, conflict, allowed, forbidden, admitted, rejected, ...)")
	auditQueryCmd.Flags().IntVar(&auditFlags.limit, "limit", 100, "max results")
	auditQueryCmd.Flags().IntVar(&auditFlags.offset, "offset", 0, "pagination offset")
	auditQueryCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json, csv")
	auditQueryCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "", "output file (default: stdout)")

	auditPruneCmd.Flags().StringVar(&auditFlags.backend, "backend", "", "backend: sqlite, memory")
}

// RecordList renders decision records as a table for text and CSV output.
type RecordList []*audit.DecisionRecord

// Header returns the table header.
func (RecordList) Header() []string {
	return []string{"time", "kind", "bot", "decision", "subject", "fingerprint", "cached"}
}

// Rows returns one row per record.
func (l RecordList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		rows = append(rows, []string{
			r.RecordedTime.Format(time.RFC3339),
			r.Kind,
			r.BotID,
			r.Decision,
			r.Subject,
			r.Fingerprint,
			fmt.Sprintf("%v", r.Cached),
		})
	}
	return rows
}

func queryAudit(cmd *cobra.Command, args []string) error {
	cfg, store, err := openAuditBackend()
	if err != nil {
		return err
	}
	defer store.Close()

	query := &audit.Query{
		BotID:    auditFlags.bot,
		Kind:     auditFlags.kind,
		Decision: auditFlags.decision,
		Limit:    auditFlags.limit,
		Offset:   auditFlags.offset,
	}
	if query.Limit <= 0 {
		query.Limit = cfg.Audit.Query.DefaultLimit
	}
	if max := cfg.Audit.Query.MaxLimit; max > 0 && query.Limit > max {
		query.Limit = max
	}

	if auditFlags.timeRange != "" {
		start, end, err := parseTimeRange(auditFlags.timeRange)
		if err != nil {
			return err
		}
		query.StartTime = &start
		query.EndTime = &end
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Audit.Query.Timeout)
	defer cancel()

	records, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("audit query", err)
	}

	out := os.Stdout
	if auditFlags.output != "" {
		f, err := os.Create(auditFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	formatter := cli.NewFormatter(cli.OutputFormat(auditFlags.format))
	if auditFlags.format == "json" {
		return formatter.FormatTo(out, records)
	}
	if err := formatter.FormatTo(out, RecordList(records)); err != nil {
		return err
	}
	if auditFlags.format == "text" {
		fmt.Fprintf(out, "\n%d records\n", len(records))
	}
	return nil
}

func pruneAudit(cmd *cobra.Command, args []string) error {
	cfg, store, err := openAuditBackend()
	if err != nil {
		return err
	}
	defer store.Close()

	pruner := retention.NewPruner(store, &retention.Config{
		RetentionDays: cfg.Audit.Retention.Days,
		PruneSchedule: cfg.Audit.Retention.PruneSchedule,
		MaxRecords:    cfg.Audit.Retention.MaxRecords,
	})

	deleted, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("audit prune", err)
	}

	fmt.Printf("pruned %d records\n", deleted)
	return nil
}

// openAuditBackend loads configuration and opens the selected audit storage.
func openAuditBackend() (*config.Config, audit.Storage, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if auditFlags.backend != "" {
		cfg.Audit.Backend = auditFlags.backend
	}

	store, err := openAuditStorage(cfg)
	if err != nil {
		return nil, nil, cli.NewCommandError("audit", err)
	}
	return cfg, store, nil
}

// parseTimeRange parses an RFC3339 interval of the form "start/end".
func parseTimeRange(s string) (time.Time, time.Time, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid time range %q: expected start/end", s)
	}
	start, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end time: %w", err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("time range end must be after start")
	}
	return start, end, nil
}
