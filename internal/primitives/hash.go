// Package primitives implements the deterministic value types shared across
// the state-transition engine: hashes, addresses, denoms, fixed-width
// numerics, coins and timestamps.
package primitives

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash160 is a 160-bit digest, used for addresses.
type Hash160 [20]byte

// Hash256 is a 256-bit digest, used for code hashes and Merkle node hashes.
type Hash256 [32]byte

// ZeroHash256 is the all-zero 32-byte value internal Merkle nodes hash their
// absent children as.
var ZeroHash256 Hash256

func (h Hash160) String() string { return hex.EncodeToString(h[:]) }
func (h Hash256) String() string { return hex.EncodeToString(h[:]) }

func (h Hash160) Bytes() []byte { return h[:] }
func (h Hash256) Bytes() []byte { return h[:] }

// Compare implements lexicographic ordering over hash bytes.
func (h Hash160) Compare(other Hash160) int { return bytes.Compare(h[:], other[:]) }
func (h Hash256) Compare(other Hash256) int { return bytes.Compare(h[:], other[:]) }

// ParseHash160 decodes a lowercase hex string into a Hash160.
func ParseHash160(s string) (Hash160, error) {
	var h Hash160
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("parse hash160: %w", err)
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("parse hash160: expected %d bytes, got %d", len(h), len(b))
	}
	copy(h[:], b)
	return h, nil
}

// ParseHash256 decodes a lowercase hex string into a Hash256.
func ParseHash256(s string) (Hash256, error) {
	var h Hash256
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("parse hash256: %w", err)
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("parse hash256: expected %d bytes, got %d", len(h), len(b))
	}
	copy(h[:], b)
	return h, nil
}

// HashCode computes the CodeHash of an uploaded Wasm blob: sha2-256 of the
// raw bytecode.
func HashCode(bytecode []byte) Hash256 {
	return sha256.Sum256(bytecode)
}

// MarshalJSON renders as a lowercase hex string, per the on-chain JSON
// encoding rule in spec §6.4.
func (h Hash256) MarshalJSON() ([]byte, error) {
	return []byte(`"` + hex.EncodeToString(h[:]) + `"`), nil
}

// UnmarshalJSON parses a lowercase hex string.
func (h *Hash256) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("hash256: not a JSON string")
	}
	parsed, err := ParseHash256(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
