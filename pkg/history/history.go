package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bubu-hq/verifier/pkg/config"
)

// ErrNotFound is returned by Get when no run has the requested ID.
var ErrNotFound = errors.New("run not found")

// Record summarizes one verification run.
type Record struct {
	RunID      string        `json:"run_id"`
	Source     string        `json:"source"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Documents  int           `json:"documents"`
	Failed     int           `json:"failed"`
	Violations int           `json:"violations"`
	Failures   []Failure     `json:"failures,omitempty"`
}

// Passed reports whether every experiment in the run was valid.
func (r *Record) Passed() bool {
	return r.Failed == 0
}

// Failure lists the messages for one failed experiment.
type Failure struct {
	// Index is the zero-based position in the batch.
	Index    int      `json:"index"`
	Line     int      `json:"line,omitempty"`
	Messages []string `json:"messages"`
}

// Query filters List results. Zero values mean no filter.
type Query struct {
	Source string
	Since  time.Time
	Limit  int
}

// Store persists run records. Implementations are safe for concurrent use.
type Store interface {
	// Save persists a record. Saving an existing RunID replaces it.
	Save(ctx context.Context, record *Record) error

	// List returns records matching q, newest first.
	List(ctx context.Context, q Query) ([]*Record, error)

	// Get returns the record with the given run ID or ErrNotFound.
	Get(ctx context.Context, runID string) (*Record, error)

	// Prune deletes records started before cutoff and returns how many went.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases resources held by the store.
	Close() error
}

// Open creates the store selected by the history configuration.
func Open(cfg config.HistoryConfig) (Store, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case DriverModernc, DriverMattn:
		return NewSQLiteStore(&SQLiteConfig{
			Driver:       cfg.Driver,
			Path:         cfg.Path,
			BusyTimeout:  cfg.BusyTimeout,
			MaxOpenConns: cfg.MaxOpenConns,
		})
	default:
		return nil, NewStorageError(cfg.Driver, "open", fmt.Errorf("unsupported history driver %q", cfg.Driver))
	}
}
