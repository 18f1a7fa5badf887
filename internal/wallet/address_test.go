package wallet

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"testing"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

func TestValidateAddress_OnCurve(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	seed[0] = 7
	priv := ed25519.NewKeyFromSeed(seed)
	addr := base58.Encode(priv.Public().(ed25519.PublicKey))

	if err := ValidateAddress(addr); err != nil {
		t.Errorf("ValidateAddress(%s) = %v, want nil", addr, err)
	}
}

func TestValidateAddress_Invalid(t *testing.T) {
	tests := []struct {
		name string
		addr string
	}{
		{"empty", ""},
		{"not base58", "0OIl+/="},
		{"too short", base58.Encode([]byte{1, 2, 3})},
		{"too long", base58.Encode(make([]byte, 33))},
		{"off curve", offCurveAddress(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.addr)
			if !errors.Is(err, ErrInvalidAddress) {
				t.Errorf("ValidateAddress(%q) = %v, want ErrInvalidAddress", tt.addr, err)
			}
		})
	}
}

// offCurveAddress finds a deterministic 32-byte value that does not
// decode to an ed25519 point, i.e. a value only reachable as a PDA.
func offCurveAddress(t *testing.T) string {
	t.Helper()
	data := []byte("off-curve-seed")
	for i := 0; i < 256; i++ {
		hash := sha256.Sum256(data)
		if _, err := new(edwards25519.Point).SetBytes(hash[:]); err != nil {
			return base58.Encode(hash[:])
		}
		data = hash[:]
	}
	t.Fatal("no off-curve value found")
	return ""
}

func TestKeypairFromBase58(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	seed[0] = 42
	priv := ed25519.NewKeyFromSeed(seed)
	encoded := base58.Encode(priv)

	kp, err := KeypairFromBase58(encoded)
	if err != nil {
		t.Fatalf("KeypairFromBase58 failed: %v", err)
	}

	wantAddr := base58.Encode(priv.Public().(ed25519.PublicKey))
	if kp.PublicKey() != wantAddr {
		t.Errorf("PublicKey() = %s, want %s", kp.PublicKey(), wantAddr)
	}

	msg := []byte("message to sign")
	sig, err := kp.Sign(msg)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if !ed25519.Verify(priv.Public().(ed25519.PublicKey), msg, sig) {
		t.Error("signature does not verify against the public key")
	}
}

func TestKeypairFromBase58_Invalid(t *testing.T) {
	if _, err := KeypairFromBase58("not-base58-&&&"); err == nil {
		t.Error("invalid base58 should fail")
	}
	if _, err := KeypairFromBase58(base58.Encode([]byte{1, 2, 3})); err == nil {
		t.Error("wrong-length key should fail")
	}
}
