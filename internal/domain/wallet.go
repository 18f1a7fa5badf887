package domain

// WalletRecord is a follower wallet eligible to receive replicated trades.
// Corresponds to follower_wallets table in PostgreSQL.
type WalletRecord struct {
	Address   string // base58 wallet address, unique
	Label     string // operator-facing name, optional
	IsActive  bool   // inactive wallets are skipped by replication
	CreatedAt int64  // Unix timestamp in milliseconds
	UpdatedAt int64  // Unix timestamp in milliseconds
}
