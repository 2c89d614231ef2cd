package manager

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"tessera-hq/meridian/pkg/scope"
)

// SnapshotStore persists the last-known-good scope set to SQLite. When a
// process restarts and the scope source is unreadable or invalid, the manager
// restores from the snapshot instead of starting with no guardrails at all.
//
// The store uses a write-ahead log (WAL) for better concurrent performance
// and automatic checkpointing to balance write performance with durability.
type SnapshotStore struct {
	db                 *sql.DB
	dbPath             string
	checkpointInterval time.Duration
	done               chan struct{}
	mu                 sync.RWMutex
	closeOnce          sync.Once

	saveStmt *sql.Stmt
	listStmt *sql.Stmt
	metaStmt *sql.Stmt
}

// SnapshotStoreConfig configures the snapshot store.
type SnapshotStoreConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	CheckpointInterval time.Duration

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSnapshotStore creates a new snapshot store with default settings.
func NewSnapshotStore(dbPath string) (*SnapshotStore, error) {
	return NewSnapshotStoreWithConfig(SnapshotStoreConfig{
		DBPath:             dbPath,
		CheckpointInterval: 5 * time.Minute,
		BusyTimeout:        5 * time.Second,
	})
}

// NewSnapshotStoreWithConfig creates a new snapshot store with custom configuration.
func NewSnapshotStoreWithConfig(cfg SnapshotStoreConfig) (*SnapshotStore, error) {
	if cfg.DBPath == "" {
		return nil, &SnapshotError{Operation: "open", Message: "db path cannot be empty"}
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = 5 * time.Minute
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &SnapshotError{Operation: "open", Message: "failed to open database", Cause: err}
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SnapshotStore{
		db:                 db,
		dbPath:             cfg.DBPath,
		checkpointInterval: cfg.CheckpointInterval,
		done:               make(chan struct{}),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, &SnapshotError{Operation: "open", Message: "failed to initialize schema", Cause: err}
	}

	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, &SnapshotError{Operation: "open", Message: "failed to prepare statements", Cause: err}
	}

	go store.checkpointLoop()

	return store, nil
}

// initSchema creates the database schema if it doesn't exist.
func (s *SnapshotStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scope_snapshots (
		scope_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		active INTEGER NOT NULL,
		payload TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		saved_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshot_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshot_saved_at ON scope_snapshots(saved_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (s *SnapshotStore) prepareStatements() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO scope_snapshots (scope_id, name, active, payload, updated_at, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (scope_id) DO UPDATE SET
			name = excluded.name,
			active = excluded.active,
			payload = excluded.payload,
			updated_at = excluded.updated_at,
			saved_at = excluded.saved_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}

	s.listStmt, err = s.db.Prepare(`
		SELECT payload FROM scope_snapshots ORDER BY scope_id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}

	s.metaStmt, err = s.db.Prepare(`
		INSERT INTO snapshot_meta (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare meta statement: %w", err)
	}

	return nil
}

// Save replaces the snapshot with the given scope set. The whole write runs
// in one transaction so a crash mid-save never leaves a torn snapshot.
func (s *SnapshotStore) Save(ctx context.Context, scopes []*scope.Scope, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &SnapshotError{Operation: "save", Message: "failed to begin transaction", Cause: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM scope_snapshots`); err != nil {
		return &SnapshotError{Operation: "save", Message: "failed to clear previous snapshot", Cause: err}
	}

	now := time.Now().Unix()
	for _, sc := range scopes {
		if sc == nil || sc.ID == "" {
			continue
		}

		payload, err := json.Marshal(sc)
		if err != nil {
			return &SnapshotError{Operation: "save", Message: fmt.Sprintf("failed to marshal scope %q", sc.ID), Cause: err}
		}

		active := 0
		if sc.Active {
			active = 1
		}

		_, err = tx.StmtContext(ctx, s.saveStmt).ExecContext(ctx,
			sc.ID,
			sc.Name,
			active,
			string(payload),
			sc.Updated.Unix(),
			now,
		)
		if err != nil {
			return &SnapshotError{Operation: "save", Message: fmt.Sprintf("failed to save scope %q", sc.ID), Cause: err}
		}
	}

	if _, err := tx.StmtContext(ctx, s.metaStmt).ExecContext(ctx, "version", version); err != nil {
		return &SnapshotError{Operation: "save", Message: "failed to save version", Cause: err}
	}
	if _, err := tx.StmtContext(ctx, s.metaStmt).ExecContext(ctx, "saved_at", fmt.Sprintf("%d", now)); err != nil {
		return &SnapshotError{Operation: "save", Message: "failed to save timestamp", Cause: err}
	}

	if err := tx.Commit(); err != nil {
		return &SnapshotError{Operation: "save", Message: "failed to commit transaction", Cause: err}
	}

	return nil
}

// Restore loads the snapshotted scope set and its registry version.
// An empty snapshot returns an empty slice and version, not an error.
func (s *SnapshotStore) Restore(ctx context.Context) ([]*scope.Scope, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.listStmt.QueryContext(ctx)
	if err != nil {
		return nil, "", &SnapshotError{Operation: "restore", Message: "failed to query snapshot", Cause: err}
	}
	defer rows.Close()

	var scopes []*scope.Scope
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, "", &SnapshotError{Operation: "restore", Message: "failed to scan row", Cause: err}
		}

		var sc scope.Scope
		if err := json.Unmarshal([]byte(payload), &sc); err != nil {
			return nil, "", &SnapshotError{Operation: "restore", Message: "failed to unmarshal scope", Cause: err}
		}
		scopes = append(scopes, sc.Normalize())
	}
	if err := rows.Err(); err != nil {
		return nil, "", &SnapshotError{Operation: "restore", Message: "error iterating rows", Cause: err}
	}

	var version string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM snapshot_meta WHERE key = 'version'`).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return nil, "", &SnapshotError{Operation: "restore", Message: "failed to load version", Cause: err}
	}

	return scopes, version, nil
}

// SavedAt returns when the snapshot was last written. The zero time means
// no snapshot has been saved yet.
func (s *SnapshotStore) SavedAt(ctx context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM snapshot_meta WHERE key = 'saved_at'`).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, &SnapshotError{Operation: "saved_at", Message: "failed to load timestamp", Cause: err}
	}

	var unix int64
	if _, err := fmt.Sscanf(raw, "%d", &unix); err != nil {
		return time.Time{}, &SnapshotError{Operation: "saved_at", Message: "malformed timestamp", Cause: err}
	}
	return time.Unix(unix, 0), nil
}

// Close releases any resources held by the store.
// Close is idempotent and safe to call multiple times.
func (s *SnapshotStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		if s.saveStmt != nil {
			s.saveStmt.Close()
		}
		if s.listStmt != nil {
			s.listStmt.Close()
		}
		if s.metaStmt != nil {
			s.metaStmt.Close()
		}

		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

// checkpointLoop runs periodic WAL checkpoints.
func (s *SnapshotStore) checkpointLoop() {
	ticker := time.NewTicker(s.checkpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}
