package ttlmap

import (
	"cmp"
	"fmt"
	"iter"

	"github.com/google/btree"
)

const btreeDegree = 32

type slot[K cmp.Ordered, V any] struct {
	key   K
	entry *Entry[V]
}

func lessSlot[K cmp.Ordered, V any](a, b slot[K, V]) bool { return cmp.Less(a.key, b.key) }

// backend is the tagged union over the storage kinds. Exactly one of the
// variant fields is set, selected by kind, and it never changes.
type backend[K cmp.Ordered, V any] struct {
	kind    Kind
	ordered *btree.BTreeG[slot[K, V]]
	hashed  map[K]*Entry[V]
	fast    *fastTable[K, V]
}

func newBackend[K cmp.Ordered, V any](kind Kind, capacity int, hasher Hasher) *backend[K, V] {
	b := &backend[K, V]{kind: kind}
	switch kind {
	case Ordered:
		b.ordered = btree.NewG[slot[K, V]](btreeDegree, lessSlot[K, V])
	case Hash:
		b.hashed = make(map[K]*Entry[V], capacity)
	case FastHash:
		b.fast = newFastTable[K, V](hasher, capacity)
	default:
		panic(badKind(kind))
	}
	return b
}

// fresh returns an empty backend of the same kind and hasher.
func (b *backend[K, V]) fresh() *backend[K, V] {
	var h Hasher
	if b.fast != nil {
		h = b.fast.hash
	}
	return newBackend[K, V](b.kind, 0, h)
}

func (b *backend[K, V]) get(key K) (*Entry[V], bool) {
	switch b.kind {
	case Ordered:
		s, ok := b.ordered.Get(slot[K, V]{key: key})
		return s.entry, ok
	case Hash:
		e, ok := b.hashed[key]
		return e, ok
	case FastHash:
		return b.fast.get(key)
	}
	panic(badKind(b.kind))
}

// insert stores e under key and returns the entry it replaced.
func (b *backend[K, V]) insert(key K, e *Entry[V]) (*Entry[V], bool) {
	switch b.kind {
	case Ordered:
		prev, ok := b.ordered.ReplaceOrInsert(slot[K, V]{key: key, entry: e})
		return prev.entry, ok
	case Hash:
		prev, ok := b.hashed[key]
		b.hashed[key] = e
		return prev, ok
	case FastHash:
		return b.fast.insert(key, e)
	}
	panic(badKind(b.kind))
}

func (b *backend[K, V]) remove(key K) (*Entry[V], bool) {
	switch b.kind {
	case Ordered:
		s, ok := b.ordered.Delete(slot[K, V]{key: key})
		return s.entry, ok
	case Hash:
		e, ok := b.hashed[key]
		if ok {
			delete(b.hashed, key)
		}
		return e, ok
	case FastHash:
		return b.fast.remove(key)
	}
	panic(badKind(b.kind))
}

func (b *backend[K, V]) len() int {
	switch b.kind {
	case Ordered:
		return b.ordered.Len()
	case Hash:
		return len(b.hashed)
	case FastHash:
		return b.fast.len()
	}
	panic(badKind(b.kind))
}

func (b *backend[K, V]) clear() {
	switch b.kind {
	case Ordered:
		b.ordered.Clear(false)
		return
	case Hash:
		clear(b.hashed)
		return
	case FastHash:
		b.fast.clear()
		return
	}
	panic(badKind(b.kind))
}

// all is the native iterator of the active variant. The backend must not
// be structurally modified while it runs.
func (b *backend[K, V]) all() iter.Seq2[K, *Entry[V]] {
	switch b.kind {
	case Ordered:
		return func(yield func(K, *Entry[V]) bool) {
			b.ordered.Ascend(func(s slot[K, V]) bool {
				return yield(s.key, s.entry)
			})
		}
	case Hash:
		return func(yield func(K, *Entry[V]) bool) {
			for k, e := range b.hashed {
				if !yield(k, e) {
					return
				}
			}
		}
	case FastHash:
		return b.fast.all
	}
	panic(badKind(b.kind))
}

// drain removes entries one at a time while yielding them.
func (b *backend[K, V]) drain() iter.Seq2[K, *Entry[V]] {
	switch b.kind {
	case Ordered:
		return func(yield func(K, *Entry[V]) bool) {
			for {
				s, ok := b.ordered.DeleteMin()
				if !ok || !yield(s.key, s.entry) {
					return
				}
			}
		}
	case Hash:
		return func(yield func(K, *Entry[V]) bool) {
			for k, e := range b.hashed {
				delete(b.hashed, k)
				if !yield(k, e) {
					return
				}
			}
		}
	case FastHash:
		return b.fast.drain
	}
	panic(badKind(b.kind))
}

func badKind(k Kind) error {
	return fmt.Errorf("%w: %s", ErrInvalidKind, k)
}
