package solana

import "fmt"

// TransactionError reports a transaction that executed but failed on chain.
// The raw error value is the untyped JSON the RPC node returned.
type TransactionError struct {
	Signature string
	Raw       interface{}
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Signature, e.Raw)
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64
	Owner      string
	Data       string // base64 encoded
	Executable bool
}
