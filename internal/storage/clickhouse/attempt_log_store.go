package clickhouse

import (
	"context"
	"fmt"

	"solana-copy-trader/internal/storage"
)

// AttemptLogStore implements storage.AttemptLogStore using ClickHouse.
// The log is append-only analytic data; MergeTree does not enforce
// uniqueness and none is needed here.
type AttemptLogStore struct {
	conn *Conn
}

// NewAttemptLogStore creates a new AttemptLogStore.
func NewAttemptLogStore(conn *Conn) *AttemptLogStore {
	return &AttemptLogStore{conn: conn}
}

// Compile-time interface check.
var _ storage.AttemptLogStore = (*AttemptLogStore)(nil)

// InsertBulk appends attempt rows.
func (s *AttemptLogStore) InsertBulk(ctx context.Context, entries []*storage.AttemptLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO swap_attempts (
			trade_id, follower, token_in, token_out, amount_in,
			attempt_seq, slippage, signature, failure, timestamp_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range entries {
		if e == nil {
			return storage.ErrInvalidInput
		}
		err = batch.Append(
			e.TradeID, e.Follower, e.TokenIn, e.TokenOut, e.AmountIn,
			uint32(e.AttemptSeq), e.Slippage, e.Signature, e.Failure,
			uint64(e.TimestampMs),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTradeID retrieves all attempts for a trade, ordered by attempt_seq ASC.
func (s *AttemptLogStore) GetByTradeID(ctx context.Context, tradeID string) ([]*storage.AttemptLogEntry, error) {
	query := `
		SELECT trade_id, follower, token_in, token_out, amount_in,
		       attempt_seq, slippage, signature, failure, timestamp_ms
		FROM swap_attempts
		WHERE trade_id = ?
		ORDER BY attempt_seq ASC
	`

	rows, err := s.conn.Query(ctx, query, tradeID)
	if err != nil {
		return nil, fmt.Errorf("query swap attempts: %w", err)
	}
	defer rows.Close()

	var result []*storage.AttemptLogEntry
	for rows.Next() {
		var (
			e           storage.AttemptLogEntry
			attemptSeq  uint32
			timestampMs uint64
		)
		err := rows.Scan(
			&e.TradeID, &e.Follower, &e.TokenIn, &e.TokenOut, &e.AmountIn,
			&attemptSeq, &e.Slippage, &e.Signature, &e.Failure, &timestampMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan swap attempt: %w", err)
		}
		e.AttemptSeq = int(attemptSeq)
		e.TimestampMs = int64(timestampMs)
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swap attempts: %w", err)
	}
	return result, nil
}
