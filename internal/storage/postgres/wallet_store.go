package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-copy-trader/internal/domain"
	"solana-copy-trader/internal/storage"
)

// WalletStore implements storage.WalletStore using PostgreSQL.
type WalletStore struct {
	pool *Pool
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(pool *Pool) *WalletStore {
	return &WalletStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

// Insert adds a new wallet. Returns ErrDuplicateKey if the address exists.
func (s *WalletStore) Insert(ctx context.Context, w *domain.WalletRecord) error {
	query := `
		INSERT INTO follower_wallets (address, label, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		w.Address,
		w.Label,
		w.IsActive,
		w.CreatedAt,
		w.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByAddress retrieves a wallet by address. Returns ErrNotFound if not exists.
func (s *WalletStore) GetByAddress(ctx context.Context, address string) (*domain.WalletRecord, error) {
	query := `
		SELECT address, label, is_active, created_at, updated_at
		FROM follower_wallets
		WHERE address = $1
	`

	row := s.pool.QueryRow(ctx, query, address)

	var w domain.WalletRecord
	err := row.Scan(&w.Address, &w.Label, &w.IsActive, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wallet by address: %w", err)
	}
	return &w, nil
}

// List retrieves all wallets ordered by created_at ASC.
func (s *WalletStore) List(ctx context.Context) ([]*domain.WalletRecord, error) {
	query := `
		SELECT address, label, is_active, created_at, updated_at
		FROM follower_wallets
		ORDER BY created_at ASC, address ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	return scanWallets(rows)
}

// ListActive retrieves all active wallets ordered by created_at ASC.
func (s *WalletStore) ListActive(ctx context.Context) ([]*domain.WalletRecord, error) {
	query := `
		SELECT address, label, is_active, created_at, updated_at
		FROM follower_wallets
		WHERE is_active
		ORDER BY created_at ASC, address ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active wallets: %w", err)
	}
	defer rows.Close()

	return scanWallets(rows)
}

func scanWallets(rows pgx.Rows) ([]*domain.WalletRecord, error) {
	var result []*domain.WalletRecord
	for rows.Next() {
		var w domain.WalletRecord
		if err := rows.Scan(&w.Address, &w.Label, &w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		result = append(result, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallets: %w", err)
	}
	return result, nil
}

// SetActive flips the active flag. Returns ErrNotFound if not exists.
func (s *WalletStore) SetActive(ctx context.Context, address string, active bool) error {
	query := `
		UPDATE follower_wallets
		SET is_active = $2, updated_at = (EXTRACT(EPOCH FROM now()) * 1000)::BIGINT
		WHERE address = $1
	`

	tag, err := s.pool.Exec(ctx, query, address, active)
	if err != nil {
		return fmt.Errorf("set wallet active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete removes a wallet. Returns ErrNotFound if not exists.
func (s *WalletStore) Delete(ctx context.Context, address string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM follower_wallets WHERE address = $1`, address)
	if err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
