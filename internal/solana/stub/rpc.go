// Package stub provides in-memory solana client fakes for tests and dry runs.
package stub

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"solana-copy-trader/internal/solana"
)

// RPCClient implements solana.RPCClient for testing.
type RPCClient struct {
	mu           sync.Mutex
	Transactions map[string]*solana.Transaction
	Balances     map[string]uint64
	Blockhash    string

	// SendErr, when set, is returned by every SendTransaction call.
	SendErr error
	// ConfirmErr, when set, is returned by every ConfirmTransaction call.
	ConfirmErr error

	sent    [][]byte
	sendSeq atomic.Uint64
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Transactions: make(map[string]*solana.Transaction),
		Balances:     make(map[string]uint64),
		Blockhash:    "11111111111111111111111111111111",
	}
}

// Compile-time interface check.
var _ solana.RPCClient = (*RPCClient)(nil)

// GetTransaction retrieves a transaction by signature from the stub store.
// Returns (nil, nil) for unknown signatures, matching the HTTP client.
func (c *RPCClient) GetTransaction(_ context.Context, signature string) (*solana.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Transactions[signature], nil
}

// GetBalance retrieves a stubbed lamport balance.
func (c *RPCClient) GetBalance(_ context.Context, address string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Balances[address], nil
}

// GetLatestBlockhash returns the fixed stub blockhash.
func (c *RPCClient) GetLatestBlockhash(_ context.Context) (string, error) {
	return c.Blockhash, nil
}

// SendTransaction records the submitted bytes and returns a synthetic signature.
func (c *RPCClient) SendTransaction(_ context.Context, signedTx []byte) (string, error) {
	if c.SendErr != nil {
		return "", c.SendErr
	}
	c.mu.Lock()
	c.sent = append(c.sent, signedTx)
	c.mu.Unlock()
	return fmt.Sprintf("stub-sig-%d", c.sendSeq.Add(1)), nil
}

// ConfirmTransaction succeeds unless ConfirmErr is set.
func (c *RPCClient) ConfirmTransaction(_ context.Context, _ string) error {
	return c.ConfirmErr
}

// AddTransaction adds a transaction to the stub store.
func (c *RPCClient) AddTransaction(tx *solana.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Transactions[tx.Signature] = tx
}

// SentCount returns how many transactions were submitted.
func (c *RPCClient) SentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

// WSClient implements solana.WSClient over an in-memory channel.
type WSClient struct {
	ch     chan solana.LogNotification
	closed atomic.Bool
}

// NewWSClient creates a stub WS client with the given buffer size.
func NewWSClient(buffer int) *WSClient {
	return &WSClient{ch: make(chan solana.LogNotification, buffer)}
}

// Compile-time interface check.
var _ solana.WSClient = (*WSClient)(nil)

// SubscribeLogs returns the shared notification channel. The filter is ignored.
func (c *WSClient) SubscribeLogs(_ context.Context, _ solana.LogsFilter) (<-chan solana.LogNotification, error) {
	if c.closed.Load() {
		return nil, errors.New("client closed")
	}
	return c.ch, nil
}

// Publish injects a notification into the stream.
func (c *WSClient) Publish(notif solana.LogNotification) {
	c.ch <- notif
}

// Close closes the notification channel.
func (c *WSClient) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	close(c.ch)
	return nil
}
