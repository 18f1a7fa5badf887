package wallet

import (
	"context"
	"fmt"
	"sync"

	"solana-copy-trader/internal/storage"
)

// Follower is an active follower wallet paired with its signing capability.
type Follower struct {
	Address string
	Signer  Signer
}

// Registry resolves the active follower set for each replication round.
// Wallet records live in the store; signers are registered in memory for
// the process lifetime and are looked up by address.
type Registry struct {
	store storage.WalletStore

	mu      sync.RWMutex
	signers map[string]Signer
}

// NewRegistry creates a follower registry over a wallet store.
func NewRegistry(store storage.WalletStore) *Registry {
	return &Registry{
		store:   store,
		signers: make(map[string]Signer),
	}
}

// RegisterSigner attaches a signing capability to a wallet address.
// The address must validate; the registry never creates the wallet record.
func (r *Registry) RegisterSigner(address string, signer Signer) error {
	if err := ValidateAddress(address); err != nil {
		return err
	}
	r.mu.Lock()
	r.signers[address] = signer
	r.mu.Unlock()
	return nil
}

// ListActive returns the followers eligible for this replication round:
// active wallet records that have a registered signer. Records without a
// signer are skipped, not errors: the operator may stage wallets ahead
// of key distribution.
func (r *Registry) ListActive(ctx context.Context) ([]Follower, error) {
	records, err := r.store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active wallets: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	followers := make([]Follower, 0, len(records))
	for _, rec := range records {
		signer, ok := r.signers[rec.Address]
		if !ok {
			continue
		}
		followers = append(followers, Follower{Address: rec.Address, Signer: signer})
	}
	return followers, nil
}
