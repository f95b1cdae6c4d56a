// Package cryptohost implements the deterministic cryptographic primitives
// exposed to Wasm contracts through the host ABI (spec §4.4): hashers and
// signature verification. Every function here is pure and side-effect free;
// the VM layer is responsible for metering gas and mapping a non-nil error
// into a trap.
package cryptohost

import (
	"crypto/sha256"
	"crypto/sha512"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"
)

// Sha2_256 is the chain's canonical hash for key_hash/value_hash and code
// hashes; stdlib crypto/sha256 is used everywhere in this engine for sha2,
// not a third-party package — no example repo in the retrieval pack reaches
// for an alternative sha2 implementation, and Go's is already constant-time
// and hardware accelerated.
func Sha2_256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

func Sha2_512(data []byte) [64]byte {
	return sha512.Sum512(data)
}

// Sha2_512Truncated returns the first 32 bytes of SHA-512/256-style
// truncation of a plain SHA-512 digest, per the host import of the same
// name in spec §4.4.
func Sha2_512Truncated(data []byte) [32]byte {
	full := sha512.Sum512(data)
	var out [32]byte
	copy(out[:], full[:32])
	return out
}

func Sha3_256(data []byte) [32]byte {
	return sha3.Sum256(data)
}

func Sha3_512(data []byte) [64]byte {
	return sha3.Sum512(data)
}

func Sha3_512Truncated(data []byte) [32]byte {
	full := sha3.Sum512(data)
	var out [32]byte
	copy(out[:], full[:32])
	return out
}

// Keccak256 uses go-ethereum's crypto package, the same one the teacher
// repo imports for Ethereum-style transaction hashing and address
// derivation.
func Keccak256(data []byte) [32]byte {
	var out [32]byte
	copy(out[:], ethcrypto.Keccak256(data))
	return out
}

func Blake2s256(data []byte) [32]byte {
	return blake2s.Sum256(data)
}

func Blake2b512(data []byte) [64]byte {
	return blake2b.Sum512(data)
}

func Blake3(data []byte) [32]byte {
	h := blake3.New(32, nil)
	h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
