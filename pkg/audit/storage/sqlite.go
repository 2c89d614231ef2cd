package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tessera-hq/meridian/pkg/audit"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

var _ audit.Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "audit.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		_, err := s.db.Exec("PRAGMA journal_mode=WAL;")
		if err != nil {
			return audit.NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	_, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs))
	if err != nil {
		return audit.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	_, err = s.db.Exec(Schema)
	if err != nil {
		return audit.NewStorageError("sqlite", "create_schema", err)
	}
	s.logger.Debug("database schema created")

	_, err = s.db.Exec(InsertSchemaVersion, SchemaVersion)
	if err != nil {
		return audit.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err = s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return audit.NewStorageError("sqlite", "get_schema_version", err)
	}

	if version != SchemaVersion {
		return audit.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)

	return nil
}

// Store persists a decision record to the database.
func (s *SQLiteStorage) Store(ctx context.Context, record *audit.DecisionRecord) error {
	scopeIDs, _ := json.Marshal(record.ScopeIDs)

	query := `
		INSERT INTO decisions (
			id, recorded_time, kind,
			bot_id, fingerprint, scope_ids,
			decision, cached, subject, detail, elapsed_us
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.RecordedTime, record.Kind,
		record.BotID, record.Fingerprint, string(scopeIDs),
		record.Decision, record.Cached, record.Subject, record.Detail,
		record.Elapsed.Microseconds(),
	)
	if err != nil {
		return audit.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Query retrieves decision records matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.DecisionRecord, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := `
		SELECT id, recorded_time, kind,
			bot_id, fingerprint, scope_ids,
			decision, cached, subject, detail, elapsed_us
		FROM decisions`
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	sortOrder := "DESC"
	if strings.EqualFold(query.SortOrder, "asc") {
		sortOrder = "ASC"
	}
	sqlQuery += " ORDER BY recorded_time " + sortOrder

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)

	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*audit.DecisionRecord{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "iterate", err)
	}

	return records, nil
}

// Count returns the number of decision records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM decisions"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Delete removes decision records matching the query filters.
// Returns the number of records deleted.
func (s *SQLiteStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM decisions"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "rows_affected", err)
	}

	return deleted, nil
}

// Close releases the database connection.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return audit.NewStorageError("sqlite", "close", err)
	}
	return nil
}

// buildWhereClause builds a WHERE clause and arguments from query filters.
func buildWhereClause(query *audit.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.StartTime != nil {
		conditions = append(conditions, "recorded_time >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		conditions = append(conditions, "recorded_time <= ?")
		args = append(args, *query.EndTime)
	}
	if query.BotID != "" {
		conditions = append(conditions, "bot_id = ?")
		args = append(args, query.BotID)
	}
	if query.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, query.Kind)
	}
	if query.Decision != "" {
		conditions = append(conditions, "decision = ?")
		args = append(args, query.Decision)
	}
	if query.Fingerprint != "" {
		conditions = append(conditions, "fingerprint = ?")
		args = append(args, query.Fingerprint)
	}

	return strings.Join(conditions, " AND "), args
}

// scanRow scans a single row into a decision record.
func scanRow(rows *sql.Rows) (*audit.DecisionRecord, error) {
	var (
		record    audit.DecisionRecord
		scopeIDs  string
		elapsedUs int64
	)

	err := rows.Scan(
		&record.ID, &record.RecordedTime, &record.Kind,
		&record.BotID, &record.Fingerprint, &scopeIDs,
		&record.Decision, &record.Cached, &record.Subject, &record.Detail,
		&elapsedUs,
	)
	if err != nil {
		return nil, err
	}

	if scopeIDs != "" {
		if err := json.Unmarshal([]byte(scopeIDs), &record.ScopeIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scope ids: %w", err)
		}
	}
	record.Elapsed = time.Duration(elapsedUs) * time.Microsecond

	return &record, nil
}
