package solana

import "context"

// RPCClient defines the Solana RPC HTTP interface consumed by the bot.
type RPCClient interface {
	// GetTransaction retrieves a confirmed transaction by signature.
	// Returns (nil, nil) when the transaction is not found.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetBalance retrieves the lamport balance of an account.
	GetBalance(ctx context.Context, address string) (uint64, error)

	// GetLatestBlockhash retrieves a recent blockhash for transaction assembly.
	GetLatestBlockhash(ctx context.Context) (string, error)

	// SendTransaction submits a signed, serialized transaction and
	// returns its signature.
	SendTransaction(ctx context.Context, signedTx []byte) (string, error)

	// ConfirmTransaction polls until the signature reaches confirmed
	// commitment or the context expires. A non-nil chain error is
	// returned as *TransactionError.
	ConfirmTransaction(ctx context.Context, signature string) error
}

// Transaction represents a Solana transaction with the metadata the
// pipeline needs: execution error, log messages, account keys, and the
// pre/post token balance tables used for delta reconstruction.
type Transaction struct {
	Slot      int64
	Signature string
	BlockTime int64 // Unix timestamp (seconds)
	Meta      *TransactionMeta
	Message   *TransactionMessage
}

// TransactionMeta contains transaction metadata.
type TransactionMeta struct {
	Err               interface{}
	LogMessages       []string
	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance
}

// TransactionMessage contains the parsed transaction message.
type TransactionMessage struct {
	AccountKeys []string
}

// TokenBalance is one entry of a pre/post token balance table. Entries
// are keyed by the per-transaction account position, not the address.
type TokenBalance struct {
	AccountIndex int
	Mint         string
	Owner        string
	Amount       float64 // ui amount
}
