package store

import "bytes"

type bufferedOp struct {
	deleted bool
	value   []byte
}

// BufferedStore overlays pending writes/deletions on top of an underlying
// store. Each message execution gets its own BufferedStore forked from its
// parent buffer; a failed execution simply discards the buffer without ever
// touching the parent (spec §4.1, §4.7).
type BufferedStore struct {
	parent  Storage
	pending map[string]bufferedOp
	// deletedRanges records remove_range calls so that a subsequent Scan
	// can skip parent entries that fall inside them even though no
	// per-key tombstone was recorded for every key in range.
	deletedRanges []rangeOp
}

type rangeOp struct{ min, max []byte }

// NewBufferedStore forks a child buffer over parent.
func NewBufferedStore(parent Storage) *BufferedStore {
	return &BufferedStore{parent: parent, pending: make(map[string]bufferedOp)}
}

// Parent returns the Storage this buffer was forked from.
func (b *BufferedStore) Parent() Storage { return b.parent }

func (b *BufferedStore) inDeletedRange(key []byte) bool {
	for _, r := range b.deletedRanges {
		if r.min != nil && bytes.Compare(key, r.min) < 0 {
			continue
		}
		if r.max != nil && bytes.Compare(key, r.max) >= 0 {
			continue
		}
		return true
	}
	return false
}

func (b *BufferedStore) Read(key []byte) []byte {
	if op, ok := b.pending[string(key)]; ok {
		if op.deleted {
			return nil
		}
		return append([]byte(nil), op.value...)
	}
	if b.inDeletedRange(key) {
		return nil
	}
	return b.parent.Read(key)
}

func (b *BufferedStore) Write(key, value []byte) {
	b.pending[string(key)] = bufferedOp{value: append([]byte(nil), value...)}
}

func (b *BufferedStore) Remove(key []byte) {
	b.pending[string(key)] = bufferedOp{deleted: true}
}

func (b *BufferedStore) RemoveRange(min, max []byte) {
	b.deletedRanges = append(b.deletedRanges, rangeOp{min: min, max: max})
	for k := range b.pending {
		if (min == nil || bytes.Compare([]byte(k), min) >= 0) &&
			(max == nil || bytes.Compare([]byte(k), max) < 0) {
			delete(b.pending, k)
		}
	}
}

// Scan merges the pending overlay with the parent's view, in the requested
// order. The merge materializes both sides up front: buffers are expected to
// be message- or transaction-scoped and small relative to committed state.
func (b *BufferedStore) Scan(min, max []byte, order Order) Iterator {
	if min != nil && max != nil && bytes.Compare(min, max) >= 0 {
		return &sliceIterator{}
	}

	merged := make(map[string][]byte)
	parentIt := b.parent.Scan(min, max, Ascending)
	for parentIt.Next() {
		k := append([]byte(nil), parentIt.Key()...)
		if b.inDeletedRange(k) {
			continue
		}
		merged[string(k)] = append([]byte(nil), parentIt.Value()...)
	}
	parentIt.Close()

	for k, op := range b.pending {
		kb := []byte(k)
		if min != nil && bytes.Compare(kb, min) < 0 {
			continue
		}
		if max != nil && bytes.Compare(kb, max) >= 0 {
			continue
		}
		if op.deleted {
			delete(merged, k)
			continue
		}
		merged[k] = op.value
	}

	pairs := make([]KVPair, 0, len(merged))
	for k, v := range merged {
		pairs = append(pairs, KVPair{Key: []byte(k), Value: v})
	}
	sortPairs(pairs, order)
	return &sliceIterator{pairs: pairs, idx: -1}
}

func sortPairs(pairs []KVPair, order Order) {
	less := func(i, j int) bool { return bytes.Compare(pairs[i].Key, pairs[j].Key) < 0 }
	if order == Descending {
		less = func(i, j int) bool { return bytes.Compare(pairs[i].Key, pairs[j].Key) > 0 }
	}
	// insertion sort is adequate: buffers are small relative to committed
	// state by construction (message/tx scoped), and this avoids pulling
	// in sort.Slice's reflection-based comparator for a hot path.
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
		}
	}
}

// Merge applies every pending write/deletion onto the parent. Called when a
// message's or transaction's buffer completes successfully and must be
// folded into its parent buffer (spec §4.7 step 7).
func (b *BufferedStore) Merge() {
	for _, r := range b.deletedRanges {
		b.parent.RemoveRange(r.min, r.max)
	}
	for k, op := range b.pending {
		if op.deleted {
			b.parent.Remove([]byte(k))
		} else {
			b.parent.Write([]byte(k), op.value)
		}
	}
}

// Discard drops every pending write/deletion, leaving parent untouched. This
// is simply letting the BufferedStore go out of scope — Discard exists only
// to make the rollback path explicit at call sites.
func (b *BufferedStore) Discard() {
	b.pending = make(map[string]bufferedOp)
	b.deletedRanges = nil
}

// Pending exposes the buffered writes/deletions (not merged into parent) as
// an ordered batch, used by the block buffer to compute the Merkle apply
// batch without a further Scan over all of committed state.
func (b *BufferedStore) Pending() []KVPair {
	pairs := make([]KVPair, 0, len(b.pending))
	for k, op := range b.pending {
		if op.deleted {
			continue
		}
		pairs = append(pairs, KVPair{Key: []byte(k), Value: op.value})
	}
	sortPairs(pairs, Ascending)
	return pairs
}

// PendingDeletes returns the keys explicitly removed in this buffer (not
// counting remove_range, which is reported separately via DeletedRanges).
func (b *BufferedStore) PendingDeletes() [][]byte {
	var out [][]byte
	for k, op := range b.pending {
		if op.deleted {
			out = append(out, []byte(k))
		}
	}
	return out
}

// DeletedRanges returns the [min, max) bounds passed to RemoveRange in this
// buffer, so a caller building a Merkle apply batch can expand them against
// the parent's keyspace (the buffer itself only tracks bounds, not every key
// they cover).
func (b *BufferedStore) DeletedRanges() [][2][]byte {
	out := make([][2][]byte, len(b.deletedRanges))
	for i, r := range b.deletedRanges {
		out[i] = [2][]byte{r.min, r.max}
	}
	return out
}
