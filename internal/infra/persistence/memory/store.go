// Package memory implements an in-memory snapshot archive for tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"femtrans/internal/persistence/core"
)

// Store keeps records per model in process memory.
type Store struct {
	mu      sync.RWMutex
	records map[string][]core.Record
}

// New returns an empty in-memory store.
func New() *Store { return &Store{records: make(map[string][]core.Record)} }

// Driver returns the store driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverMemory }

// Save archives rec; a second record with the same model and run id fails.
func (s *Store) Save(_ context.Context, rec core.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.records[rec.Model] {
		if existing.RunID == rec.RunID {
			return fmt.Errorf("%s/%s: %w", rec.Model, rec.RunID, core.ErrExists)
		}
	}
	list := append(s.records[rec.Model], rec.Clone())
	sort.SliceStable(list, func(i, j int) bool { return list[i].RunID < list[j].RunID })
	s.records[rec.Model] = list
	return nil
}

// Get returns one record.
func (s *Store) Get(_ context.Context, model, runID string) (core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records[model] {
		if rec.RunID == runID {
			return rec.Clone(), nil
		}
	}
	return core.Record{}, fmt.Errorf("%s/%s: %w", model, runID, core.ErrNotFound)
}

// Latest returns the record with the greatest run id.
func (s *Store) Latest(_ context.Context, model string) (core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.records[model]
	if len(list) == 0 {
		return core.Record{}, fmt.Errorf("%s: %w", model, core.ErrNotFound)
	}
	return list[len(list)-1].Clone(), nil
}

// List returns the records of a model in run id order.
func (s *Store) List(_ context.Context, model string) ([]core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Record, 0, len(s.records[model]))
	for _, rec := range s.records[model] {
		out = append(out, rec.Clone())
	}
	return out, nil
}

// Delete removes a record, reporting whether it existed.
func (s *Store) Delete(_ context.Context, model, runID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.records[model]
	for i, rec := range list {
		if rec.RunID == runID {
			s.records[model] = append(list[:i:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
