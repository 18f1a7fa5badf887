// Package memory provides in-memory storage implementations for tests
// and single-process deployments without PostgreSQL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"solana-copy-trader/internal/domain"
	"solana-copy-trader/internal/storage"
)

// WalletStore is an in-memory implementation of storage.WalletStore.
type WalletStore struct {
	mu   sync.RWMutex
	data map[string]*domain.WalletRecord // keyed by address
}

// NewWalletStore creates a new in-memory wallet store.
func NewWalletStore() *WalletStore {
	return &WalletStore{
		data: make(map[string]*domain.WalletRecord),
	}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

// Insert adds a new wallet. Returns ErrDuplicateKey if the address exists.
func (s *WalletStore) Insert(_ context.Context, w *domain.WalletRecord) error {
	if w == nil || w.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[w.Address]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *w
	s.data[w.Address] = &cp
	return nil
}

// GetByAddress retrieves a wallet by address.
func (s *WalletStore) GetByAddress(_ context.Context, address string) (*domain.WalletRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.data[address]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

// List retrieves all wallets ordered by created_at ASC.
func (s *WalletStore) List(_ context.Context) ([]*domain.WalletRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*domain.WalletRecord) bool { return true }), nil
}

// ListActive retrieves all active wallets ordered by created_at ASC.
func (s *WalletStore) ListActive(_ context.Context) ([]*domain.WalletRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(w *domain.WalletRecord) bool { return w.IsActive }), nil
}

// collect copies matching records sorted by (created_at, address).
// Caller must hold at least a read lock.
func (s *WalletStore) collect(match func(*domain.WalletRecord) bool) []*domain.WalletRecord {
	var result []*domain.WalletRecord
	for _, w := range s.data {
		if match(w) {
			cp := *w
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].Address < result[j].Address
	})
	return result
}

// SetActive flips the active flag.
func (s *WalletStore) SetActive(_ context.Context, address string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.data[address]
	if !ok {
		return storage.ErrNotFound
	}
	w.IsActive = active
	w.UpdatedAt = time.Now().UnixMilli()
	return nil
}

// Delete removes a wallet.
func (s *WalletStore) Delete(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[address]; !ok {
		return storage.ErrNotFound
	}
	delete(s.data, address)
	return nil
}
