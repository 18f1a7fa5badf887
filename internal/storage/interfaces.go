package storage

import (
	"context"

	"solana-copy-trader/internal/domain"
)

// WalletStore provides access to follower_wallets storage.
type WalletStore interface {
	// Insert adds a new wallet. Returns ErrDuplicateKey if the address exists.
	Insert(ctx context.Context, w *domain.WalletRecord) error

	// GetByAddress retrieves a wallet by address. Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, address string) (*domain.WalletRecord, error)

	// List retrieves all wallets ordered by created_at ASC.
	List(ctx context.Context) ([]*domain.WalletRecord, error)

	// ListActive retrieves all active wallets ordered by created_at ASC.
	ListActive(ctx context.Context) ([]*domain.WalletRecord, error)

	// SetActive flips the active flag. Returns ErrNotFound if not exists.
	SetActive(ctx context.Context, address string, active bool) error

	// Delete removes a wallet. Returns ErrNotFound if not exists.
	Delete(ctx context.Context, address string) error
}

// TradeRecordStore provides access to trade_records storage.
type TradeRecordStore interface {
	// Insert adds a new trade record. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.TradeRecord) error

	// GetByID retrieves a record by trade_id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.TradeRecord, error)

	// GetByFollower retrieves all records for a follower, ordered by created_at ASC.
	GetByFollower(ctx context.Context, follower string) ([]*domain.TradeRecord, error)

	// GetBySourceSignature retrieves all records copied from one observed
	// transaction, ordered by created_at ASC.
	GetBySourceSignature(ctx context.Context, signature string) ([]*domain.TradeRecord, error)
}

// AttemptLogStore is an append-only analytic log of every swap attempt,
// including the retries that preceded a terminal outcome.
type AttemptLogStore interface {
	// InsertBulk appends attempt rows. Duplicates are not rejected; the
	// log is analytic, not authoritative.
	InsertBulk(ctx context.Context, entries []*AttemptLogEntry) error
}

// AttemptLogEntry is one swap attempt as recorded for analysis.
type AttemptLogEntry struct {
	TradeID     string
	Follower    string
	TokenIn     string
	TokenOut    string
	AmountIn    float64
	AttemptSeq  int     // 0-based position within the retry ladder
	Slippage    float64 // slippage tolerance used, percent
	Signature   string  // empty unless the attempt confirmed
	Failure     string  // empty on success
	TimestampMs int64
}
