package store

import "corechain/internal/apperror"

// Map is a namespace of typed values keyed by a PrimaryKey, e.g.
// Map<Addr, Account> or Map<Pair2<Addr, Denom>, Uint> for per-holder
// balances (spec §4.2).
type Map[K PrimaryKey, T any] struct {
	namespace []byte
	codec     Codec[T]
	name      string
}

// NewMap declares a Map rooted at namespace, a prefix distinct from every
// other typed accessor sharing the same underlying Storage.
func NewMap[K PrimaryKey, T any](name string, namespace []byte, codec Codec[T]) *Map[K, T] {
	return &Map[K, T]{namespace: append([]byte(nil), namespace...), codec: codec, name: name}
}

func (m *Map[K, T]) fullKey(k K) []byte {
	return append(append([]byte(nil), m.namespace...), k.KeyBytes()...)
}

func (m *Map[K, T]) Load(s Storage, k K) (T, error) {
	var zero T
	b := s.Read(m.fullKey(k))
	if b == nil {
		return zero, apperror.DataNotFound(m.name, string(k.KeyBytes()))
	}
	v, err := m.codec.Decode(b)
	if err != nil {
		return zero, apperror.StdWrap(err, "decode "+m.name)
	}
	return v, nil
}

func (m *Map[K, T]) MayLoad(s Storage, k K) (T, bool, error) {
	var zero T
	b := s.Read(m.fullKey(k))
	if b == nil {
		return zero, false, nil
	}
	v, err := m.codec.Decode(b)
	if err != nil {
		return zero, false, apperror.StdWrap(err, "decode "+m.name)
	}
	return v, true, nil
}

func (m *Map[K, T]) Has(s Storage, k K) bool {
	return s.Read(m.fullKey(k)) != nil
}

func (m *Map[K, T]) Save(s Storage, k K, v T) error {
	b, err := m.codec.Encode(v)
	if err != nil {
		return apperror.StdWrap(err, "encode "+m.name)
	}
	s.Write(m.fullKey(k), b)
	return nil
}

func (m *Map[K, T]) Remove(s Storage, k K) {
	s.Remove(m.fullKey(k))
}

func (m *Map[K, T]) Update(s Storage, k K, fn func(T, bool) (T, error)) error {
	cur, ok, err := m.MayLoad(s, k)
	if err != nil {
		return err
	}
	next, err := fn(cur, ok)
	if err != nil {
		return err
	}
	return m.Save(s, k, next)
}

// MapEntry is a single decoded (key-suffix, value) pair yielded by Range.
type MapEntry[T any] struct {
	KeySuffix []byte
	Value     T
}

// Range iterates every entry whose key starts with prefix (e.g. a
// Pair2Prefix, for every entry sharing a composite key's first element).
// A nil prefix iterates the whole map. KeySuffix is the raw bytes of the key
// after the map's namespace — callers reassemble the original K themselves,
// since PrimaryKey only encodes, it does not decode.
func (m *Map[K, T]) Range(s Storage, prefix []byte, order Order) ([]MapEntry[T], error) {
	ps := NewPrefixStore(s, m.namespace)
	var lo, hi []byte
	lo = prefix
	if prefix != nil {
		hi = prefixUpperBound(prefix)
	}
	it := ps.Scan(lo, hi, order)
	defer it.Close()

	var out []MapEntry[T]
	for it.Next() {
		v, err := m.codec.Decode(it.Value())
		if err != nil {
			return nil, apperror.StdWrap(err, "decode "+m.name)
		}
		out = append(out, MapEntry[T]{
			KeySuffix: append([]byte(nil), it.Key()...),
			Value:     v,
		})
	}
	return out, nil
}

// ClearPrefix removes every entry whose key starts with prefix.
func (m *Map[K, T]) ClearPrefix(s Storage, prefix []byte) {
	lo := append(append([]byte(nil), m.namespace...), prefix...)
	hi := prefixUpperBound(lo)
	s.RemoveRange(lo, hi)
}
