// Package monitor provides the monitored-wallet registry and the event
// filter that turns the raw log notification stream into typed activity
// events for the trading service.
package monitor

import (
	"sort"
	"sync"

	"solana-copy-trader/internal/wallet"
)

// Registry is the mutable set of wallet addresses under observation.
// Mutation is safe concurrently with filter passes: readers work on
// snapshots, so no registry operation blocks the event stream for longer
// than the membership copy. A wallet added before a notification arrives
// is visible to that notification's filter pass.
type Registry struct {
	mu      sync.RWMutex
	wallets map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		wallets: make(map[string]struct{}),
	}
}

// Add puts a wallet under observation. The address is validated first;
// malformed addresses never enter the registry.
func (r *Registry) Add(address string) error {
	if err := wallet.ValidateAddress(address); err != nil {
		return err
	}

	r.mu.Lock()
	r.wallets[address] = struct{}{}
	r.mu.Unlock()
	return nil
}

// Remove stops observing a wallet. Reports whether it was present.
func (r *Registry) Remove(address string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.wallets[address]
	delete(r.wallets, address)
	return ok
}

// Contains reports whether a wallet is under observation.
func (r *Registry) Contains(address string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.wallets[address]
	return ok
}

// Snapshot returns a copy of the current membership.
func (r *Registry) Snapshot() map[string]struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[string]struct{}, len(r.wallets))
	for w := range r.wallets {
		snapshot[w] = struct{}{}
	}
	return snapshot
}

// List returns the observed addresses in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]string, 0, len(r.wallets))
	for w := range r.wallets {
		list = append(list, w)
	}
	sort.Strings(list)
	return list
}

// Len returns the number of observed wallets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.wallets)
}
