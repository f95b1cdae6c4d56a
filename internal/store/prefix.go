package store

// PrefixStore wraps a Storage view with a fixed key prefix, transparently
// prepending it on reads/writes and trimming it from scan results
// (spec §4.1). It is how contract-private storage (§3.4, prefix 0x01 ‖
// contract_addr ‖ …) is isolated from every other partition.
type PrefixStore struct {
	inner  Storage
	prefix []byte
}

// NewPrefixStore constructs a view rooted at prefix.
func NewPrefixStore(inner Storage, prefix []byte) *PrefixStore {
	return &PrefixStore{inner: inner, prefix: append([]byte(nil), prefix...)}
}

func (p *PrefixStore) prefixed(key []byte) []byte {
	out := make([]byte, len(p.prefix)+len(key))
	copy(out, p.prefix)
	copy(out[len(p.prefix):], key)
	return out
}

func (p *PrefixStore) Read(key []byte) []byte {
	return p.inner.Read(p.prefixed(key))
}

func (p *PrefixStore) Write(key, value []byte) {
	p.inner.Write(p.prefixed(key), value)
}

func (p *PrefixStore) Remove(key []byte) {
	p.inner.Remove(p.prefixed(key))
}

// prefixUpperBound computes the exclusive upper bound of the prefix's own
// key space: the prefix with its last byte incremented (carrying as needed).
// A nil result means the prefix space runs to the end of the keyspace
// (every byte was 0xff).
func prefixUpperBound(prefix []byte) []byte {
	out := append([]byte(nil), prefix...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] < 0xff {
			out[i]++
			return out[:i+1]
		}
	}
	return nil
}

func (p *PrefixStore) RemoveRange(min, max []byte) {
	lo := p.prefixed(min)
	var hi []byte
	if max == nil {
		hi = prefixUpperBound(p.prefix)
	} else {
		hi = p.prefixed(max)
	}
	p.inner.RemoveRange(lo, hi)
}

func (p *PrefixStore) Scan(min, max []byte, order Order) Iterator {
	lo := p.prefixed(min)
	var hi []byte
	if max == nil {
		hi = prefixUpperBound(p.prefix)
	} else {
		hi = p.prefixed(max)
	}
	return &trimmingIterator{inner: p.inner.Scan(lo, hi, order), prefixLen: len(p.prefix)}
}

// trimmingIterator strips the owning PrefixStore's prefix off every key it
// yields.
type trimmingIterator struct {
	inner     Iterator
	prefixLen int
}

func (it *trimmingIterator) Next() bool { return it.inner.Next() }
func (it *trimmingIterator) Key() []byte {
	k := it.inner.Key()
	if len(k) < it.prefixLen {
		return nil
	}
	return k[it.prefixLen:]
}
func (it *trimmingIterator) Value() []byte { return it.inner.Value() }
func (it *trimmingIterator) Close()        { it.inner.Close() }
