package table

import (
	"context"
	"sync"
)

// MemoryStore is an in-process TableStore. It backs dry runs and tests.
type MemoryStore struct {
	mu       sync.Mutex
	table    Table
	replaces int

	// FetchErr and ReplaceErr, when set, are returned by the next calls.
	FetchErr   error
	ReplaceErr error
}

// NewMemoryStore creates a store holding a copy of t.
func NewMemoryStore(t Table) *MemoryStore {
	return &MemoryStore{table: t.Clone()}
}

// Fetch returns a copy of the stored table.
func (s *MemoryStore) Fetch(ctx context.Context) (Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	return s.table.Clone(), nil
}

// Replace swaps the stored table for a copy of t.
func (s *MemoryStore) Replace(ctx context.Context, t Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReplaceErr != nil {
		return s.ReplaceErr
	}
	s.table = t.Clone()
	s.replaces++
	return nil
}

// Replaces reports how many successful Replace calls the store has seen.
func (s *MemoryStore) Replaces() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaces
}

// Clone deep-copies t.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for i, row := range t {
		out[i] = make(Row, len(row))
		copy(out[i], row)
	}
	return out
}
