package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-copy-trader/internal/domain"
	"solana-copy-trader/internal/storage"
)

// TradeRecordStore implements storage.TradeRecordStore using PostgreSQL.
type TradeRecordStore struct {
	pool *Pool
}

// NewTradeRecordStore creates a new TradeRecordStore.
func NewTradeRecordStore(pool *Pool) *TradeRecordStore {
	return &TradeRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeRecordStore = (*TradeRecordStore)(nil)

const tradeRecordColumns = `
	trade_id, follower, source_wallet, source_signature,
	token_in, token_out, amount_in, signature, slippage_used,
	status, failure_reason, attempt_count, created_at
`

// Insert adds a new trade record. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeRecordStore) Insert(ctx context.Context, t *domain.TradeRecord) error {
	query := `
		INSERT INTO trade_records (` + tradeRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.pool.Exec(ctx, query,
		t.TradeID,
		t.Follower,
		t.SourceWallet,
		t.SourceSignature,
		t.TokenIn,
		t.TokenOut,
		t.AmountIn,
		t.Signature,
		t.SlippageUsed,
		t.Status,
		t.FailureReason,
		t.AttemptCount,
		t.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade record: %w", err)
	}
	return nil
}

// GetByID retrieves a record by trade_id. Returns ErrNotFound if not exists.
func (s *TradeRecordStore) GetByID(ctx context.Context, tradeID string) (*domain.TradeRecord, error) {
	query := `
		SELECT ` + tradeRecordColumns + `
		FROM trade_records
		WHERE trade_id = $1
	`

	row := s.pool.QueryRow(ctx, query, tradeID)

	t, err := scanTradeRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade record: %w", err)
	}
	return t, nil
}

// GetByFollower retrieves all records for a follower, ordered by created_at ASC.
func (s *TradeRecordStore) GetByFollower(ctx context.Context, follower string) ([]*domain.TradeRecord, error) {
	query := `
		SELECT ` + tradeRecordColumns + `
		FROM trade_records
		WHERE follower = $1
		ORDER BY created_at ASC, trade_id ASC
	`
	return s.queryRecords(ctx, query, follower)
}

// GetBySourceSignature retrieves all records copied from one observed
// transaction, ordered by created_at ASC.
func (s *TradeRecordStore) GetBySourceSignature(ctx context.Context, signature string) ([]*domain.TradeRecord, error) {
	query := `
		SELECT ` + tradeRecordColumns + `
		FROM trade_records
		WHERE source_signature = $1
		ORDER BY created_at ASC, trade_id ASC
	`
	return s.queryRecords(ctx, query, signature)
}

func (s *TradeRecordStore) queryRecords(ctx context.Context, query string, args ...interface{}) ([]*domain.TradeRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trade records: %w", err)
	}
	defer rows.Close()

	var result []*domain.TradeRecord
	for rows.Next() {
		t, err := scanTradeRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade record: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade records: %w", err)
	}
	return result, nil
}

func scanTradeRecord(row pgx.Row) (*domain.TradeRecord, error) {
	var t domain.TradeRecord
	err := row.Scan(
		&t.TradeID,
		&t.Follower,
		&t.SourceWallet,
		&t.SourceSignature,
		&t.TokenIn,
		&t.TokenOut,
		&t.AmountIn,
		&t.Signature,
		&t.SlippageUsed,
		&t.Status,
		&t.FailureReason,
		&t.AttemptCount,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
