package store

import (
	"bytes"
	"sync"

	"github.com/google/btree"
)

// kvItem is the btree element: an ordered (key, value) record compared by
// key only, following the ordered-map-over-btree pattern used for in-memory
// chain state in _examples/AKJUS-bsc-erigon (google/btree as the backing
// structure for a sorted KV view).
type kvItem struct {
	key, value []byte
}

func lessKV(a, b kvItem) bool { return bytes.Compare(a.key, b.key) < 0 }

// MemStore is an in-memory, btree-ordered Storage implementation. It backs
// the block buffer's eventual flush target in tests and the reference
// single-process node; on-disk persistence layers wrap the same interface.
type MemStore struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[kvItem]
}

// NewMemStore constructs an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{tree: btree.NewG(32, lessKV)}
}

func (m *MemStore) Read(key []byte) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.tree.Get(kvItem{key: key})
	if !ok {
		return nil
	}
	return append([]byte(nil), item.value...)
}

func (m *MemStore) Write(key, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tree.ReplaceOrInsert(kvItem{key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
}

func (m *MemStore) Remove(key []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tree.Delete(kvItem{key: key})
}

func (m *MemStore) RemoveRange(min, max []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if min != nil && max != nil && bytes.Compare(min, max) >= 0 {
		return
	}
	var toDelete [][]byte
	m.ascendRangeLocked(min, max, func(k, _ []byte) bool {
		toDelete = append(toDelete, append([]byte(nil), k...))
		return true
	})
	for _, k := range toDelete {
		m.tree.Delete(kvItem{key: k})
	}
}

func (m *MemStore) ascendRangeLocked(min, max []byte, fn func(k, v []byte) bool) {
	iter := func(item kvItem) bool {
		if max != nil && bytes.Compare(item.key, max) >= 0 {
			return false
		}
		return fn(item.key, item.value)
	}
	if min != nil {
		m.tree.AscendGreaterOrEqual(kvItem{key: min}, iter)
	} else {
		m.tree.Ascend(iter)
	}
}

// Scan returns a frozen snapshot iterator over [min, max) in the requested
// order. Snapshotting at creation time (rather than iterating the live tree)
// satisfies the "restartable only at source" / freeze-for-lifetime rule of
// spec §4.1 without requiring a copy-on-write tree.
func (m *MemStore) Scan(min, max []byte, order Order) Iterator {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if min != nil && max != nil && bytes.Compare(min, max) >= 0 {
		return &sliceIterator{}
	}

	var pairs []KVPair
	m.ascendRangeLocked(min, max, func(k, v []byte) bool {
		pairs = append(pairs, KVPair{
			Key:   append([]byte(nil), k...),
			Value: append([]byte(nil), v...),
		})
		return true
	})
	if order == Descending {
		for i, j := 0, len(pairs)-1; i < j; i, j = i+1, j-1 {
			pairs[i], pairs[j] = pairs[j], pairs[i]
		}
	}
	return &sliceIterator{pairs: pairs, idx: -1}
}

// sliceIterator iterates a materialized, immutable slice of pairs.
type sliceIterator struct {
	pairs []KVPair
	idx   int
}

func (it *sliceIterator) Next() bool {
	it.idx++
	return it.idx < len(it.pairs)
}

func (it *sliceIterator) Key() []byte   { return it.pairs[it.idx].Key }
func (it *sliceIterator) Value() []byte { return it.pairs[it.idx].Value }
func (it *sliceIterator) Close()        {}

// Len reports the number of key-value pairs currently stored.
func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tree.Len()
}

// Clone returns an independent deep copy, used by the block executor to
// fork a snapshot of committed state for a new block buffer.
func (m *MemStore) Clone() *MemStore {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := NewMemStore()
	m.tree.Ascend(func(item kvItem) bool {
		out.tree.ReplaceOrInsert(kvItem{
			key:   append([]byte(nil), item.key...),
			value: append([]byte(nil), item.value...),
		})
		return true
	})
	return out
}
