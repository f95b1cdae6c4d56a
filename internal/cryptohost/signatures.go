package cryptohost

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secp256k1ecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"corechain/internal/apperror"
)

// Secp256k1Verify checks a compact (r ‖ s, 64-byte) signature over
// messageHash against a compressed or uncompressed pubkey, grounded on the
// teacher's use of the decred secp256k1 package in
// core/compliance.go/core/transactions.go.
func Secp256k1Verify(messageHash, signature, pubKey []byte) (bool, error) {
	if len(messageHash) != 32 {
		return false, apperror.Std("secp256k1_verify: message hash must be 32 bytes")
	}
	if len(signature) != 64 {
		return false, apperror.Std("secp256k1_verify: signature must be 64 bytes (r ‖ s)")
	}
	pk, err := secp256k1.ParsePubKey(pubKey)
	if err != nil {
		return false, apperror.Std("secp256k1_verify: invalid public key: %v", err)
	}
	var r, s secp256k1.ModNScalar
	r.SetByteSlice(signature[:32])
	s.SetByteSlice(signature[32:])
	sig := secp256k1ecdsa.NewSignature(&r, &s)
	return sig.Verify(messageHash, pk), nil
}

// Secp256k1PubkeyRecover recovers the signer's public key from a 64-byte
// (r ‖ s) signature plus a recovery id, given the message hash, serialized
// compressed or uncompressed according to compressed.
func Secp256k1PubkeyRecover(messageHash, signature []byte, recoveryID byte, compressed bool) ([]byte, error) {
	if len(messageHash) != 32 {
		return nil, apperror.Std("secp256k1_pubkey_recover: message hash must be 32 bytes")
	}
	if len(signature) != 64 {
		return nil, apperror.Std("secp256k1_pubkey_recover: signature must be 64 bytes")
	}
	compact := make([]byte, 65)
	compact[0] = recoveryID + 27
	copy(compact[1:], signature)
	pk, _, err := secp256k1ecdsa.RecoverCompact(compact, messageHash)
	if err != nil {
		return nil, apperror.Std("secp256k1_pubkey_recover: %v", err)
	}
	if compressed {
		return pk.SerializeCompressed(), nil
	}
	return pk.SerializeUncompressed(), nil
}

// Secp256r1Verify checks an (r ‖ s) signature over the NIST P-256 curve.
// There is no third-party P-256 verifier anywhere in the retrieval pack;
// every repo that touches ECDSA uses crypto/ecdsa directly for curves other
// than secp256k1 (which has its own dedicated library), so this is one of
// the engine's few deliberately-stdlib primitives (see SPEC_FULL.md).
func Secp256r1Verify(messageHash, signature, pubKey []byte) (bool, error) {
	if len(messageHash) != 32 {
		return false, apperror.Std("secp256r1_verify: message hash must be 32 bytes")
	}
	if len(signature) != 64 {
		return false, apperror.Std("secp256r1_verify: signature must be 64 bytes")
	}
	curve := elliptic.P256()
	byteLen := (curve.Params().BitSize + 7) / 8
	if len(pubKey) != 1+2*byteLen || pubKey[0] != 0x04 {
		return false, apperror.Std("secp256r1_verify: public key must be uncompressed SEC1")
	}
	x := new(big.Int).SetBytes(pubKey[1 : 1+byteLen])
	y := new(big.Int).SetBytes(pubKey[1+byteLen:])
	pub := &ecdsa.PublicKey{Curve: curve, X: x, Y: y}
	r := new(big.Int).SetBytes(signature[:32])
	s := new(big.Int).SetBytes(signature[32:])
	return ecdsa.Verify(pub, messageHash, r, s), nil
}

// Ed25519Verify checks a single ed25519 signature.
// Go's crypto/ed25519 is the implementation every contract runtime in the
// pack falls back to (core/wallet.go, core/security.go) — there is no
// alternative ed25519 library in the retrieval set.
func Ed25519Verify(message, signature, pubKey []byte) bool {
	if len(pubKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pubKey), message, signature)
}

// Ed25519BatchVerify checks that every (message, signature, pubkey) triple
// verifies. The stdlib has no batch-verification fast path (that requires
// a custom multi-scalar-multiplication routine no pack example implements),
// so this is a plain per-signature loop — correct, just not asymptotically
// faster than N individual calls. Noted as a stdlib simplification in
// SPEC_FULL.md.
func Ed25519BatchVerify(messages, signatures, pubKeys [][]byte) (bool, error) {
	if len(messages) != len(signatures) || len(messages) != len(pubKeys) {
		return false, apperror.Std("ed25519_batch_verify: mismatched input counts")
	}
	for i := range messages {
		if !Ed25519Verify(messages[i], signatures[i], pubKeys[i]) {
			return false, nil
		}
	}
	return true, nil
}
