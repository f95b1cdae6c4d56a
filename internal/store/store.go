// Package store implements the raw KV storage abstraction of spec §4.1 and
// the typed accessors of spec §4.2 on top of it.
package store

// Order selects ascending or descending iteration.
type Order int

const (
	Ascending Order = iota
	Descending
)

// KVPair is a single key-value record yielded by a scan.
type KVPair struct {
	Key   []byte
	Value []byte
}

// Storage is the raw byte-oriented KV interface every contract (and the
// engine itself) reads and writes through. min is inclusive, max is
// exclusive; min > max yields an empty sequence rather than an error
// (spec §4.1). An iterator reflects the state at the time of its creation —
// callers must not mutate through the same view while iterating.
type Storage interface {
	Read(key []byte) []byte
	Scan(min, max []byte, order Order) Iterator
	Write(key, value []byte)
	Remove(key []byte)
	RemoveRange(min, max []byte)
}

// Iterator yields key-value pairs in the order requested by Scan. Next
// returns false once exhausted.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Close()
}

// ReadAll drains an iterator into a slice; only used by tests and small
// admin paths, never on a hot path where a contract streams a scan.
func ReadAll(it Iterator) []KVPair {
	defer it.Close()
	var out []KVPair
	for it.Next() {
		out = append(out, KVPair{Key: append([]byte(nil), it.Key()...), Value: append([]byte(nil), it.Value()...)})
	}
	return out
}

// ScanKeys wraps Scan, yielding keys only (spec §4.1 scan_keys).
func ScanKeys(s Storage, min, max []byte, order Order) [][]byte {
	it := s.Scan(min, max, order)
	defer it.Close()
	var out [][]byte
	for it.Next() {
		out = append(out, append([]byte(nil), it.Key()...))
	}
	return out
}

// ScanValues wraps Scan, yielding values only (spec §4.1 scan_values).
func ScanValues(s Storage, min, max []byte, order Order) [][]byte {
	it := s.Scan(min, max, order)
	defer it.Close()
	var out [][]byte
	for it.Next() {
		out = append(out, append([]byte(nil), it.Value()...))
	}
	return out
}
