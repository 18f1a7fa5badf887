// Package market resolves DEX markets for token pairs and builds swap
// instructions against them.
package market

import (
	"context"
	"errors"
)

// ErrMarketNotFound is returned when no pool exists for a token pair.
var ErrMarketNotFound = errors.New("market not found")

// Market is a resolved venue for one token pair.
type Market struct {
	Address   string // pool account address
	ProgramID string // owning AMM program
	BaseMint  string
	QuoteMint string
	// BaseDecimals converts ui amounts of the base mint into raw units.
	BaseDecimals int
}

// Resolver resolves the market for a token pair. Resolution may perform
// network I/O and is safe to cache: a pool address is stable for the
// lifetime of the process.
type Resolver interface {
	Resolve(ctx context.Context, tokenA, tokenB string) (*Market, error)
}
