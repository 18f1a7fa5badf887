package executor

import (
	"errors"
	"fmt"
	"strings"

	"solana-copy-trader/internal/solana"
)

// ErrSlippageExceeded reports a swap rejected because the realized
// output fell below the minimum implied by the slippage bound. Attempts
// failing this way are retried at a wider bound.
var ErrSlippageExceeded = errors.New("slippage tolerance exceeded")

// slippageCustomCode is the AMM program's custom error for an output
// below the requested minimum.
const slippageCustomCode = "\"Custom\":30"

// IsSlippageExceeded reports whether err represents a slippage
// rejection, either from this package or from an on-chain transaction
// error carrying the AMM's min-out violation code.
func IsSlippageExceeded(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSlippageExceeded) {
		return true
	}
	var txErr *solana.TransactionError
	if errors.As(err, &txErr) {
		raw := fmt.Sprintf("%v", txErr.Raw)
		if strings.Contains(raw, slippageCustomCode) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "slippage")
}
