package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3" (cgo)
	_ "modernc.org/sqlite"          // registers "sqlite" (pure Go)
)

// Supported database/sql driver names.
const (
	DriverModernc = "sqlite"
	DriverMattn   = "sqlite3"
)

// SQLiteConfig contains configuration for the SQLite store.
type SQLiteConfig struct {
	// Driver is DriverModernc or DriverMattn.
	// Default: DriverModernc
	Driver string

	// Path is the database file path.
	Path string

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int
}

// SQLiteStore implements Store on SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore opens (creating if needed) the history database.
func NewSQLiteStore(cfg *SQLiteConfig) (*SQLiteStore, error) {
	c := *cfg
	if c.Driver == "" {
		c.Driver = DriverModernc
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = 5 * time.Second
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 4
	}
	if c.Path == "" {
		return nil, NewStorageError(c.Driver, "open", errors.New("database path cannot be empty"))
	}

	dsn, err := buildDSN(c.Driver, c.Path, c.BusyTimeout)
	if err != nil {
		return nil, NewStorageError(c.Driver, "open", err)
	}

	db, err := sql.Open(c.Driver, dsn)
	if err != nil {
		return nil, NewStorageError(c.Driver, "open", err)
	}
	db.SetMaxOpenConns(c.MaxOpenConns)
	db.SetMaxIdleConns(c.MaxOpenConns)

	s := &SQLiteStore{
		db:     db,
		config: &c,
		logger: slog.Default().With("component", "history.sqlite"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Debug("history store opened",
		"driver", c.Driver,
		"path", c.Path,
		"max_open_conns", c.MaxOpenConns,
	)

	return s, nil
}

// buildDSN sets WAL mode and the busy timeout on every connection. The two
// drivers spell connection pragmas differently.
func buildDSN(driver, path string, busyTimeout time.Duration) (string, error) {
	ms := busyTimeout.Milliseconds()
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	switch driver {
	case DriverModernc:
		return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, sep, ms), nil
	case DriverMattn:
		return fmt.Sprintf("%s%s_busy_timeout=%d&_journal_mode=WAL", path, sep, ms), nil
	default:
		return "", fmt.Errorf("unsupported sqlite driver %q", driver)
	}
}

func (s *SQLiteStore) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError(s.config.Driver, "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion, time.Now().UnixNano()); err != nil {
		return NewStorageError(s.config.Driver, "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewStorageError(s.config.Driver, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStorageError(s.config.Driver, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Save persists a run record.
func (s *SQLiteStore) Save(ctx context.Context, record *Record) error {
	if record.RunID == "" {
		return NewStorageError(s.config.Driver, "save", errors.New("run id is required"))
	}

	var failures any
	if len(record.Failures) > 0 {
		data, err := json.Marshal(record.Failures)
		if err != nil {
			return NewStorageError(s.config.Driver, "save", err)
		}
		failures = string(data)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, source, started_at, duration_ns, documents, failed, violations, failures)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			source = excluded.source,
			started_at = excluded.started_at,
			duration_ns = excluded.duration_ns,
			documents = excluded.documents,
			failed = excluded.failed,
			violations = excluded.violations,
			failures = excluded.failures
	`,
		record.RunID, record.Source, record.StartedAt.UnixNano(), int64(record.Duration),
		record.Documents, record.Failed, record.Violations, failures,
	)
	if err != nil {
		return NewStorageError(s.config.Driver, "save", err)
	}
	return nil
}

const selectRuns = `SELECT run_id, source, started_at, duration_ns, documents, failed, violations, failures FROM runs`

// List returns records matching q, newest first.
func (s *SQLiteStore) List(ctx context.Context, q Query) ([]*Record, error) {
	var (
		where []string
		args  []any
	)
	if q.Source != "" {
		where = append(where, "source = ?")
		args = append(args, q.Source)
	}
	if !q.Since.IsZero() {
		where = append(where, "started_at >= ?")
		args = append(args, q.Since.UnixNano())
	}

	query := selectRuns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC, run_id"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError(s.config.Driver, "list", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, NewStorageError(s.config.Driver, "list", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError(s.config.Driver, "list", err)
	}
	return records, nil
}

// Get returns the record with the given run ID.
func (s *SQLiteStore) Get(ctx context.Context, runID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectRuns+" WHERE run_id = ?", runID)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, NewStorageError(s.config.Driver, "get", err)
	}
	return record, nil
}

// Prune deletes records started before cutoff.
func (s *SQLiteStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", cutoff.UnixNano())
	if err != nil {
		return 0, NewStorageError(s.config.Driver, "prune", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, NewStorageError(s.config.Driver, "prune", err)
	}
	if n > 0 {
		s.logger.Info("pruned run history", "deleted", n, "cutoff", cutoff)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return NewStorageError(s.config.Driver, "close", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		record     Record
		startedAt  int64
		durationNs int64
		failures   sql.NullString
	)
	if err := row.Scan(
		&record.RunID, &record.Source, &startedAt, &durationNs,
		&record.Documents, &record.Failed, &record.Violations, &failures,
	); err != nil {
		return nil, err
	}
	record.StartedAt = time.Unix(0, startedAt)
	record.Duration = time.Duration(durationNs)
	if failures.Valid && failures.String != "" {
		if err := json.Unmarshal([]byte(failures.String), &record.Failures); err != nil {
			return nil, fmt.Errorf("decode failures for run %s: %w", record.RunID, err)
		}
	}
	return &record, nil
}
