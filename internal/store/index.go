package store

import "corechain/internal/apperror"

// Index is a secondary index maintained alongside an IndexedMap's primary
// entries (spec §4.2). extractKey derives the indexed value from a stored
// record; the index itself only ever stores raw key bytes, never a copy of
// the record, so it must be rebuilt from the primary Map if it's ever lost.
type Index[K PrimaryKey, T any] interface {
	// onSave updates the index after pk -> value is written (oldValue, hadOld
	// reflect the replaced entry, if any).
	onSave(s Storage, pk K, value T, oldValue T, hadOld bool) error
	// onRemove updates the index after pk is removed.
	onRemove(s Storage, pk K, value T)
}

// UniqueIndex enforces at most one primary key per derived secondary key
// (e.g. one contract per code hash). Violations surface as AccountExists- or
// CodeExists-flavored errors at the call site, not from the index itself —
// the index only tracks the mapping and refuses silently-overwriting saves.
type UniqueIndex[K PrimaryKey, T any] struct {
	namespace []byte
	extractor func(T) []byte
}

// NewUniqueIndex declares a unique index rooted at namespace.
func NewUniqueIndex[K PrimaryKey, T any](namespace []byte, extractor func(T) []byte) *UniqueIndex[K, T] {
	return &UniqueIndex[K, T]{namespace: append([]byte(nil), namespace...), extractor: extractor}
}

func (ix *UniqueIndex[K, T]) idxKey(secondary []byte) []byte {
	return append(append([]byte(nil), ix.namespace...), secondary...)
}

func (ix *UniqueIndex[K, T]) onSave(s Storage, pk K, value T, oldValue T, hadOld bool) error {
	newSecondary := ix.extractor(value)
	if hadOld {
		oldSecondary := ix.extractor(oldValue)
		if string(oldSecondary) == string(newSecondary) {
			return nil
		}
		s.Remove(ix.idxKey(oldSecondary))
	}
	key := ix.idxKey(newSecondary)
	if s.Read(key) != nil {
		return apperror.Std("unique index violation: secondary key already bound to a primary key")
	}
	s.Write(key, pk.KeyBytes())
	return nil
}

func (ix *UniqueIndex[K, T]) onRemove(s Storage, pk K, value T) {
	s.Remove(ix.idxKey(ix.extractor(value)))
}

// Load resolves the primary key bytes bound to a secondary key, or nil if
// none is bound.
func (ix *UniqueIndex[K, T]) Load(s Storage, secondary []byte) []byte {
	return s.Read(ix.idxKey(secondary))
}

// MultiIndex allows many primary keys per derived secondary key (e.g. every
// contract instantiated from a given code hash). Entries are stored as
// namespace ‖ secondary ‖ primary -> empty marker, so Range over a fixed
// secondary yields every bound primary key in primary-key order.
type MultiIndex[K PrimaryKey, T any] struct {
	namespace []byte
	extractor func(T) []byte
}

func NewMultiIndex[K PrimaryKey, T any](namespace []byte, extractor func(T) []byte) *MultiIndex[K, T] {
	return &MultiIndex[K, T]{namespace: append([]byte(nil), namespace...), extractor: extractor}
}

func (ix *MultiIndex[K, T]) idxKey(secondary, primary []byte) []byte {
	sep, err := encodeSegment(secondary)
	if err != nil {
		panic(err)
	}
	full := append(append([]byte(nil), ix.namespace...), sep...)
	return append(full, primary...)
}

func (ix *MultiIndex[K, T]) onSave(s Storage, pk K, value T, oldValue T, hadOld bool) error {
	if hadOld {
		oldSecondary := ix.extractor(oldValue)
		newSecondary := ix.extractor(value)
		if string(oldSecondary) != string(newSecondary) {
			s.Remove(ix.idxKey(oldSecondary, pk.KeyBytes()))
		}
	}
	s.Write(ix.idxKey(ix.extractor(value), pk.KeyBytes()), []byte{})
	return nil
}

func (ix *MultiIndex[K, T]) onRemove(s Storage, pk K, value T) {
	s.Remove(ix.idxKey(ix.extractor(value), pk.KeyBytes()))
}

// Range returns every primary key bound to secondary.
func (ix *MultiIndex[K, T]) Range(s Storage, secondary []byte) [][]byte {
	sep, err := encodeSegment(secondary)
	if err != nil {
		panic(err)
	}
	prefix := append(append([]byte(nil), ix.namespace...), sep...)
	it := s.Scan(prefix, prefixUpperBound(prefix), Ascending)
	defer it.Close()

	var out [][]byte
	for it.Next() {
		out = append(out, append([]byte(nil), it.Key()[len(prefix):]...))
	}
	return out
}
