package store

// Set is a namespace of presence-only keys, stored as key -> empty marker
// (spec §4.2) — e.g. the set of admin addresses, or an allow-list.
type Set[K PrimaryKey] struct {
	namespace []byte
}

func NewSet[K PrimaryKey](namespace []byte) *Set[K] {
	return &Set[K]{namespace: append([]byte(nil), namespace...)}
}

func (set *Set[K]) fullKey(k K) []byte {
	return append(append([]byte(nil), set.namespace...), k.KeyBytes()...)
}

func (set *Set[K]) Has(s Storage, k K) bool {
	return s.Read(set.fullKey(k)) != nil
}

func (set *Set[K]) Insert(s Storage, k K) {
	s.Write(set.fullKey(k), []byte{})
}

func (set *Set[K]) Remove(s Storage, k K) {
	s.Remove(set.fullKey(k))
}

// Range returns the raw key bytes (namespace trimmed) of every member, in
// key order.
func (set *Set[K]) Range(s Storage, order Order) [][]byte {
	ps := NewPrefixStore(s, set.namespace)
	it := ps.Scan(nil, nil, order)
	defer it.Close()

	var out [][]byte
	for it.Next() {
		out = append(out, append([]byte(nil), it.Key()...))
	}
	return out
}

// Clear removes every member.
func (set *Set[K]) Clear(s Storage) {
	lo := set.namespace
	s.RemoveRange(lo, prefixUpperBound(lo))
}
