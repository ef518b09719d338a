package history

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the run history tables. Times are unix nanoseconds so both
// drivers round-trip them identically.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    started_at INTEGER NOT NULL,
    duration_ns INTEGER NOT NULL,
    documents INTEGER NOT NULL,
    failed INTEGER NOT NULL,
    violations INTEGER NOT NULL,
    failures TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
`

// InsertSchemaVersion records the schema version.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, ?)
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
