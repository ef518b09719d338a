package history

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	records map[string]*Record
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

// Save stores a copy of record.
func (s *MemoryStore) Save(ctx context.Context, record *Record) error {
	if record.RunID == "" {
		return NewStorageError("memory", "save", errors.New("run id is required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.RunID] = copyRecord(record)
	return nil
}

// List returns copies of matching records, newest first.
func (s *MemoryStore) List(ctx context.Context, q Query) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []*Record{}
	for _, record := range s.records {
		if q.Source != "" && record.Source != q.Source {
			continue
		}
		if !q.Since.IsZero() && record.StartedAt.Before(q.Since) {
			continue
		}
		results = append(results, copyRecord(record))
	}

	sort.Slice(results, func(i, j int) bool {
		if !results[i].StartedAt.Equal(results[j].StartedAt) {
			return results[i].StartedAt.After(results[j].StartedAt)
		}
		return results[i].RunID < results[j].RunID
	})

	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

// Get returns a copy of the record with the given run ID.
func (s *MemoryStore) Get(ctx context.Context, runID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[runID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(record), nil
}

// Prune deletes records started before cutoff.
func (s *MemoryStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, record := range s.records {
		if record.StartedAt.Before(cutoff) {
			delete(s.records, id)
			n++
		}
	}
	return n, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

func copyRecord(r *Record) *Record {
	c := *r
	if r.Failures != nil {
		c.Failures = make([]Failure, len(r.Failures))
		for i, f := range r.Failures {
			c.Failures[i] = Failure{
				Index:    f.Index,
				Line:     f.Line,
				Messages: append([]string(nil), f.Messages...),
			}
		}
	}
	return &c
}
