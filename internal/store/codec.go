package store

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/rlp"
)

// Codec converts between a typed value and the bytes stored under a key.
// Typed accessors (Item, Map, Set, Counter) are parameterized over a Codec so
// the same storage shape can carry JSON, RLP, or raw bytes depending on what
// the caller needs (spec §4.2).
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(b []byte) (T, error)
}

// JSONCodec encodes values as JSON, the default for config and
// human-inspectable state.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(v T) ([]byte, error) { return json.Marshal(v) }
func (JSONCodec[T]) Decode(b []byte) (T, error) {
	var v T
	err := json.Unmarshal(b, &v)
	return v, err
}

// RLPCodec encodes values with Ethereum RLP, used where a compact
// self-describing binary encoding matters more than readability (mirrors the
// original's Borsh use for ledger-critical records; RLP is the pack's
// closest equivalent, already pulled in via go-ethereum for keccak).
type RLPCodec[T any] struct{}

func (RLPCodec[T]) Encode(v T) ([]byte, error) { return rlp.EncodeToBytes(v) }
func (RLPCodec[T]) Decode(b []byte) (T, error) {
	var v T
	err := rlp.DecodeBytes(b, &v)
	return v, err
}

// RawCodec stores []byte values verbatim, with no framing.
type RawCodec struct{}

func (RawCodec) Encode(v []byte) ([]byte, error) { return v, nil }
func (RawCodec) Decode(b []byte) ([]byte, error) { return b, nil }
