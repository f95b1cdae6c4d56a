package store

import (
	"encoding/binary"

	"corechain/internal/apperror"
)

// PrimaryKey is anything a Map can use as a key: a single scalar or a tuple
// of scalars serialized as a sequence of length-prefixed segments, so a
// partial-tuple prefix scan (spec §4.2, e.g. iterate all keys sharing the
// first element of a composite key) only needs a byte-prefix match.
type PrimaryKey interface {
	// KeyBytes returns the fully encoded key.
	KeyBytes() []byte
}

// RawKey is a PrimaryKey over an already-encoded byte string, used when the
// caller wants full control over the key layout (e.g. the merkle-backed
// contract storage keys, which are raw addresses and slots, not map keys).
type RawKey []byte

func (k RawKey) KeyBytes() []byte { return k }

// StringKey is a single string primary key, encoded verbatim as UTF-8 bytes.
type StringKey string

func (k StringKey) KeyBytes() []byte { return []byte(k) }

// Uint64Key is a single uint64 primary key, encoded big-endian so
// lexicographic byte order matches numeric order.
type Uint64Key uint64

func (k Uint64Key) KeyBytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return b[:]
}

// encodeSegment length-prefixes a key segment with a single byte (segments
// longer than 255 bytes cannot appear in a composite key — every segment in
// this engine is a hash, address, or short identifier well under that).
func encodeSegment(seg []byte) ([]byte, error) {
	if len(seg) > 255 {
		return nil, apperror.Std("composite key segment too long: %d bytes", len(seg))
	}
	out := make([]byte, 1+len(seg))
	out[0] = byte(len(seg))
	copy(out[1:], seg)
	return out, nil
}

// Pair2 is a two-element composite primary key, e.g. Map<(Addr, Denom), Coin>
// for a multi-holder balance table.
type Pair2[A, B PrimaryKey] struct {
	A A
	B B
}

func (p Pair2[A, B]) KeyBytes() []byte {
	sa, err := encodeSegment(p.A.KeyBytes())
	if err != nil {
		panic(err)
	}
	sb, err := encodeSegment(p.B.KeyBytes())
	if err != nil {
		panic(err)
	}
	return append(sa, sb...)
}

// Prefix returns the byte prefix shared by every key whose first element is
// a, for a partial-tuple range scan over a Pair2-keyed Map.
func Pair2Prefix[A PrimaryKey](a A) []byte {
	s, err := encodeSegment(a.KeyBytes())
	if err != nil {
		panic(err)
	}
	return s
}

// Pair3 is a three-element composite primary key.
type Pair3[A, B, C PrimaryKey] struct {
	A A
	B B
	C C
}

func (p Pair3[A, B, C]) KeyBytes() []byte {
	sa, err := encodeSegment(p.A.KeyBytes())
	if err != nil {
		panic(err)
	}
	sb, err := encodeSegment(p.B.KeyBytes())
	if err != nil {
		panic(err)
	}
	sc, err := encodeSegment(p.C.KeyBytes())
	if err != nil {
		panic(err)
	}
	return append(append(sa, sb...), sc...)
}
