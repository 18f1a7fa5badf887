package memory

import (
	"context"
	"sync"

	"solana-copy-trader/internal/storage"
)

// AttemptLogStore is an in-memory implementation of storage.AttemptLogStore.
type AttemptLogStore struct {
	mu      sync.Mutex
	entries []*storage.AttemptLogEntry
}

// NewAttemptLogStore creates a new in-memory attempt log.
func NewAttemptLogStore() *AttemptLogStore {
	return &AttemptLogStore{}
}

// Compile-time interface check.
var _ storage.AttemptLogStore = (*AttemptLogStore)(nil)

// InsertBulk appends attempt rows.
func (s *AttemptLogStore) InsertBulk(_ context.Context, entries []*storage.AttemptLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if e == nil {
			return storage.ErrInvalidInput
		}
		cp := *e
		s.entries = append(s.entries, &cp)
	}
	return nil
}

// All returns a copy of every logged attempt, in insertion order.
func (s *AttemptLogStore) All() []*storage.AttemptLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*storage.AttemptLogEntry, len(s.entries))
	for i, e := range s.entries {
		cp := *e
		result[i] = &cp
	}
	return result
}
