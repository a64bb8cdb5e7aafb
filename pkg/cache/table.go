// Package cache holds read-mostly, keyed collections with string secondary
// indexes. Writers build a complete snapshot and publish it atomically, so
// readers never block and always see one consistent generation.
package cache

import (
	"cmp"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
)

// ErrIndexNotFound is returned when querying an index that was never declared.
var ErrIndexNotFound = errors.New("index not found")

// IndexFunc extracts the values an item is reachable under. Duplicates are fine.
type IndexFunc[V any] func(V) []string

type snapshot[K cmp.Ordered, V any] struct {
	items map[K]V
	keys  []K
	index map[string]map[string][]K
}

// Table is a keyed collection with fixed indexes.
type Table[K cmp.Ordered, V any] struct {
	key     func(V) K
	indexes map[string]IndexFunc[V]

	wmu  sync.Mutex
	snap atomic.Pointer[snapshot[K, V]]
}

// NewTable creates an empty Table keyed by key. indexes are fixed for the
// table's lifetime.
func NewTable[K cmp.Ordered, V any](key func(V) K, indexes map[string]IndexFunc[V]) *Table[K, V] {
	t := &Table[K, V]{key: key, indexes: make(map[string]IndexFunc[V], len(indexes))}
	for name, fn := range indexes {
		t.indexes[name] = fn
	}
	t.snap.Store(t.build(nil))
	return t
}

func (t *Table[K, V]) build(items map[K]V) *snapshot[K, V] {
	s := &snapshot[K, V]{
		items: items,
		keys:  make([]K, 0, len(items)),
		index: make(map[string]map[string][]K, len(t.indexes)),
	}
	if s.items == nil {
		s.items = make(map[K]V)
	}
	for k := range s.items {
		s.keys = append(s.keys, k)
	}
	slices.Sort(s.keys)

	for name, fn := range t.indexes {
		idx := make(map[string][]K)
		for _, k := range s.keys {
			for _, val := range fn(s.items[k]) {
				if ks := idx[val]; len(ks) == 0 || ks[len(ks)-1] != k {
					idx[val] = append(ks, k)
				}
			}
		}
		s.index[name] = idx
	}
	return s
}

// Replace publishes items as the new content. A later item wins over an
// earlier one with the same key.
func (t *Table[K, V]) Replace(items []V) {
	m := make(map[K]V, len(items))
	for _, it := range items {
		m[t.key(it)] = it
	}

	t.wmu.Lock()
	defer t.wmu.Unlock()
	t.snap.Store(t.build(m))
}

// Get returns the item stored under k.
func (t *Table[K, V]) Get(k K) (V, bool) {
	v, ok := t.snap.Load().items[k]
	return v, ok
}

// Len returns the number of items.
func (t *Table[K, V]) Len() int {
	return len(t.snap.Load().keys)
}

// Values returns every item in ascending key order.
func (t *Table[K, V]) Values() []V {
	return t.Filter(nil)
}

// Filter returns the items accepted by keep, in ascending key order. A nil
// keep accepts everything.
func (t *Table[K, V]) Filter(keep func(V) bool) []V {
	s := t.snap.Load()
	out := make([]V, 0, len(s.keys))
	for _, k := range s.keys {
		if v := s.items[k]; keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Distinct returns the non-empty values of index, sorted.
func (t *Table[K, V]) Distinct(index string) ([]string, error) {
	idx, ok := t.snap.Load().index[index]
	if !ok {
		return nil, ErrIndexNotFound
	}
	out := make([]string, 0, len(idx))
	for v := range idx {
		if v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out, nil
}
