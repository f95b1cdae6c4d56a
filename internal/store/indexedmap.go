package store

// IndexedMap is a Map that keeps a set of secondary indexes in sync with
// every Save/Remove, so a contract or module can look records up by
// something other than their primary key (spec §4.2) — e.g. resolving a
// contract's address from its code hash, or every contract instantiated
// from a given code.
type IndexedMap[K PrimaryKey, T any] struct {
	primary *Map[K, T]
	indexes []Index[K, T]
}

// NewIndexedMap wraps an existing Map with secondary indexes. The Map must
// not be written to directly once wrapped, or the indexes will drift.
func NewIndexedMap[K PrimaryKey, T any](primary *Map[K, T], indexes ...Index[K, T]) *IndexedMap[K, T] {
	return &IndexedMap[K, T]{primary: primary, indexes: indexes}
}

func (im *IndexedMap[K, T]) Load(s Storage, k K) (T, error) { return im.primary.Load(s, k) }
func (im *IndexedMap[K, T]) MayLoad(s Storage, k K) (T, bool, error) {
	return im.primary.MayLoad(s, k)
}
func (im *IndexedMap[K, T]) Has(s Storage, k K) bool { return im.primary.Has(s, k) }

func (im *IndexedMap[K, T]) Save(s Storage, k K, v T) error {
	old, hadOld, err := im.primary.MayLoad(s, k)
	if err != nil {
		return err
	}
	for _, ix := range im.indexes {
		if err := ix.onSave(s, k, v, old, hadOld); err != nil {
			return err
		}
	}
	return im.primary.Save(s, k, v)
}

func (im *IndexedMap[K, T]) Remove(s Storage, k K) error {
	old, hadOld, err := im.primary.MayLoad(s, k)
	if err != nil {
		return err
	}
	if hadOld {
		for _, ix := range im.indexes {
			ix.onRemove(s, k, old)
		}
	}
	im.primary.Remove(s, k)
	return nil
}

func (im *IndexedMap[K, T]) Update(s Storage, k K, fn func(T, bool) (T, error)) error {
	cur, ok, err := im.primary.MayLoad(s, k)
	if err != nil {
		return err
	}
	next, err := fn(cur, ok)
	if err != nil {
		return err
	}
	return im.Save(s, k, next)
}

func (im *IndexedMap[K, T]) Range(s Storage, prefix []byte, order Order) ([]MapEntry[T], error) {
	return im.primary.Range(s, prefix, order)
}
