package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the decision database schema.
const Schema = `
-- Decision records table
CREATE TABLE IF NOT EXISTS decisions (
    id TEXT PRIMARY KEY,

    recorded_time TIMESTAMP NOT NULL,
    kind TEXT NOT NULL,

    bot_id TEXT,
    fingerprint TEXT,
    scope_ids TEXT,

    decision TEXT NOT NULL,
    cached BOOLEAN,
    subject TEXT,
    detail TEXT,
    elapsed_us INTEGER
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_decisions_recorded_time ON decisions(recorded_time);
CREATE INDEX IF NOT EXISTS idx_decisions_bot_id ON decisions(bot_id);
CREATE INDEX IF NOT EXISTS idx_decisions_kind ON decisions(kind);
CREATE INDEX IF NOT EXISTS idx_decisions_decision ON decisions(decision);
CREATE INDEX IF NOT EXISTS idx_decisions_fingerprint ON decisions(fingerprint);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
