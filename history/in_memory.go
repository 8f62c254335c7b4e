package history

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/medmesh/core"
)

// DefaultCapacity bounds an InMemoryStore created with capacity <= 0.
const DefaultCapacity = 1000

// InMemoryStore is a volatile AnalysisStore keeping the most recent records
// in a process local map. It is safe for concurrent access and best suited
// for tests or ephemeral demo servers. Records are copied on the way in and
// out to prevent external mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	capacity int
	records  map[string]core.AnalysisRecord
	order    []string
}

// NewInMemoryStore constructs an empty store holding at most capacity
// records; the oldest record is evicted first.
func NewInMemoryStore(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &InMemoryStore{
		capacity: capacity,
		records:  make(map[string]core.AnalysisRecord),
	}
}

// Save stores a copy of rec. An ID that is already stored is rejected with
// core.ErrAlreadyExists.
func (s *InMemoryStore) Save(_ context.Context, rec core.AnalysisRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("history: record id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.ID]; ok {
		return fmt.Errorf("analysis %q: %w", rec.ID, core.ErrAlreadyExists)
	}
	s.order = append(s.order, rec.ID)
	s.records[rec.ID] = clone(rec)

	for len(s.order) > s.capacity {
		delete(s.records, s.order[0])
		s.order = s.order[1:]
	}

	return nil
}

// Get returns the record with the given ID or core.ErrNotFound.
func (s *InMemoryStore) Get(_ context.Context, id string) (core.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return core.AnalysisRecord{}, fmt.Errorf("analysis %q: %w", id, core.ErrNotFound)
	}
	return clone(rec), nil
}

// List returns up to limit records, newest first. limit <= 0 returns all.
func (s *InMemoryStore) List(_ context.Context, limit int) ([]core.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.AnalysisRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, clone(rec))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func clone(rec core.AnalysisRecord) core.AnalysisRecord {
	if rec.Result != nil {
		rec.Result = append([]byte(nil), rec.Result...)
	}
	return rec
}
