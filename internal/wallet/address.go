// Package wallet provides follower wallet management: address validation,
// signing capabilities, and the active-follower registry read by replication.
package wallet

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ErrInvalidAddress is returned for strings that are not valid Solana
// wallet addresses. Malformed addresses are rejected before they enter
// the trading pipeline.
var ErrInvalidAddress = errors.New("invalid wallet address")

// ValidateAddress checks that s is a base58-encoded 32-byte ed25519
// public key on the curve. Program derived addresses are off-curve and
// are rejected: a follower wallet must be able to sign.
func ValidateAddress(s string) error {
	decoded, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("%w: %s: not base58", ErrInvalidAddress, s)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("%w: %s: decoded length %d, want 32", ErrInvalidAddress, s, len(decoded))
	}
	if !isOnCurve(decoded) {
		return fmt.Errorf("%w: %s: not on ed25519 curve", ErrInvalidAddress, s)
	}
	return nil
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
