package wallet

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// Signer is the signing capability handed to the swap executor. The
// executor uses it to sign transaction messages; it never owns the key.
type Signer interface {
	// PublicKey returns the base58-encoded public key.
	PublicKey() string

	// Sign signs a serialized transaction message.
	Sign(message []byte) ([]byte, error)
}

// Keypair is an in-memory ed25519 signer.
type Keypair struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

// KeypairFromBase58 decodes a base58-encoded 64-byte ed25519 private key
// (the standard Solana keypair export format).
func KeypairFromBase58(encoded string) (*Keypair, error) {
	decoded, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode keypair: %w", err)
	}
	if len(decoded) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("keypair length %d, want %d", len(decoded), ed25519.PrivateKeySize)
	}
	priv := ed25519.PrivateKey(decoded)
	return &Keypair{
		pub:  priv.Public().(ed25519.PublicKey),
		priv: priv,
	}, nil
}

// Compile-time interface check.
var _ Signer = (*Keypair)(nil)

// PublicKey returns the base58-encoded public key.
func (k *Keypair) PublicKey() string {
	return base58.Encode(k.pub)
}

// Sign signs a serialized transaction message.
func (k *Keypair) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(k.priv, message), nil
}
