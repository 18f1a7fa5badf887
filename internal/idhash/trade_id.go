// Package idhash computes deterministic identifiers.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(source_signature|follower|token_in|token_out)
// Returns hex-encoded hash (64 characters).
//
// The same observed swap replicated for the same follower always maps
// to the same id, so a duplicate insert is rejected by the store rather
// than executed twice.
func ComputeTradeID(
	sourceSignature string,
	follower string,
	tokenIn string,
	tokenOut string,
) string {
	data := fmt.Sprintf("%s|%s|%s|%s",
		sourceSignature,
		follower,
		tokenIn,
		tokenOut,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
