package health

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Verdicts tracked per batch file.
const (
	VerdictPassed = "passed"
	VerdictFailed = "failed"
	VerdictError  = "error"
)

// BatchStatus is the latest verdict for one batch file.
type BatchStatus struct {
	Source     string    `json:"source"`
	Verdict    string    `json:"verdict"`
	RunID      string    `json:"run_id,omitempty"`
	Failed     int       `json:"failed"`
	Violations int       `json:"violations"`
	Error      string    `json:"error,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

// Tracker remembers the latest verdict of every watched batch file.
type Tracker struct {
	mu      sync.RWMutex
	batches map[string]BatchStatus
	now     func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		batches: make(map[string]BatchStatus),
		now:     time.Now,
	}
}

// Passed records a run with no failed experiments.
func (t *Tracker) Passed(source, runID string) {
	t.set(BatchStatus{Source: source, Verdict: VerdictPassed, RunID: runID})
}

// Failed records a run with failed experiments.
func (t *Tracker) Failed(source, runID string, failed, violations int) {
	t.set(BatchStatus{Source: source, Verdict: VerdictFailed, RunID: runID, Failed: failed, Violations: violations})
}

// Errored records a batch that could not be verified.
func (t *Tracker) Errored(source string, err error) {
	t.set(BatchStatus{Source: source, Verdict: VerdictError, Error: err.Error()})
}

// Forget drops a batch, e.g. after its file was removed.
func (t *Tracker) Forget(source string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.batches, source)
}

func (t *Tracker) set(status BatchStatus) {
	status.CheckedAt = t.now()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.batches[status.Source] = status
}

// Snapshot returns all batch statuses sorted by source.
func (t *Tracker) Snapshot() []BatchStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]BatchStatus, 0, len(t.batches))
	for _, s := range t.batches {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// Check is a CheckFunc that fails while any batch is failing or errored.
func (t *Tracker) Check(ctx context.Context) error {
	var bad []string
	for _, s := range t.Snapshot() {
		if s.Verdict != VerdictPassed {
			bad = append(bad, fmt.Sprintf("%s (%s)", s.Source, s.Verdict))
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("%d batch(es) not passing: %s", len(bad), strings.Join(bad, ", "))
	}
	return nil
}
