package market

import (
	"context"
	"sync"
)

// Cache wraps a Resolver and memoizes resolved markets for the lifetime
// of the process. The key is unordered: Resolve(A, B) and Resolve(B, A)
// share one entry. Failed resolutions are not cached.
type Cache struct {
	inner Resolver

	mu      sync.RWMutex
	entries map[pairKey]*Market
}

var _ Resolver = (*Cache)(nil)

type pairKey struct {
	lo, hi string
}

func newPairKey(tokenA, tokenB string) pairKey {
	if tokenA > tokenB {
		tokenA, tokenB = tokenB, tokenA
	}
	return pairKey{lo: tokenA, hi: tokenB}
}

// NewCache wraps inner with a pair-keyed cache.
func NewCache(inner Resolver) *Cache {
	return &Cache{
		inner:   inner,
		entries: make(map[pairKey]*Market),
	}
}

// Resolve returns the cached market for the pair, resolving and storing
// it on first use.
func (c *Cache) Resolve(ctx context.Context, tokenA, tokenB string) (*Market, error) {
	key := newPairKey(tokenA, tokenB)

	c.mu.RLock()
	m, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return m, nil
	}

	m, err := c.inner.Resolve(ctx, tokenA, tokenB)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	// A concurrent caller may have resolved the same pair; keep the
	// first stored entry so callers always see one market per pair.
	if existing, ok := c.entries[key]; ok {
		m = existing
	} else {
		c.entries[key] = m
	}
	c.mu.Unlock()

	return m, nil
}

// Len reports the number of cached markets.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
