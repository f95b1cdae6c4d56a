package merkle

import "corechain/internal/apperror"

// NodeKey addresses a single tree node: the version at which it was written,
// and its path from the root. Encoding follows
// original_source/crates/jellyfish-merkle/src/node_key.rs: 8 bytes version
// (big-endian), 2 bytes num_bits (big-endian), then ceil(num_bits/8) bytes of
// packed path bits.
type NodeKey struct {
	Version uint64
	Bits    BitArray
}

// RootKey is the NodeKey of the tree root at a given version.
func RootKey(version uint64) NodeKey {
	return NodeKey{Version: version, Bits: EmptyBits}
}

// Encode serializes the key for use as a raw storage key.
func (k NodeKey) Encode() []byte {
	raw := k.Bits.RawBytes()
	out := make([]byte, 10+len(raw))
	beUint64(out[0:8], k.Version)
	numBits := k.Bits.Len()
	out[8] = byte(numBits >> 8)
	out[9] = byte(numBits)
	copy(out[10:], raw)
	return out
}

// DecodeNodeKey parses a key produced by Encode.
func DecodeNodeKey(b []byte) (NodeKey, error) {
	if len(b) < 10 {
		return NodeKey{}, apperror.DB("merkle: truncated node key")
	}
	version := beUint64ToU(b[0:8])
	numBits := int(b[8])<<8 | int(b[9])
	if numBits < 0 || numBits > 256 {
		return NodeKey{}, apperror.DB("merkle: invalid node key bit count %d", numBits)
	}
	rest := b[10:]
	numBytes := (numBits + 7) / 8
	if len(rest) != numBytes {
		return NodeKey{}, apperror.DB("merkle: node key bit count/byte length mismatch")
	}
	var full [32]byte
	copy(full[:numBytes], rest)
	return NodeKey{Version: version, Bits: BitsFromHashPrefix(full, numBits)}, nil
}
