package ttlmap

import "cmp"

const (
	fastMinBuckets = 8
	// grow once the average chain length exceeds this
	fastMaxLoad = 2
)

type fastSlot[K cmp.Ordered, V any] struct {
	hash  uint64
	key   K
	entry *Entry[V]
}

// fastTable is a separately chained hash table whose bucket index comes
// from a caller supplied Hasher instead of the runtime map hash.
type fastTable[K cmp.Ordered, V any] struct {
	hash    Hasher
	enc     keyEncoder[K]
	buckets [][]fastSlot[K, V]
	n       int
}

func newFastTable[K cmp.Ordered, V any](h Hasher, capacity int) *fastTable[K, V] {
	if h == nil {
		h = XXHash()
	}
	size := fastMinBuckets
	for size*fastMaxLoad < capacity {
		size <<= 1
	}
	return &fastTable[K, V]{
		hash:    h,
		enc:     newKeyEncoder[K](),
		buckets: make([][]fastSlot[K, V], size),
	}
}

func (t *fastTable[K, V]) bucket(h uint64) int {
	return int(h & uint64(len(t.buckets)-1))
}

func (t *fastTable[K, V]) find(key K) (h uint64, bi, si int) {
	h = t.hash(t.enc.bytes(&key))
	bi = t.bucket(h)
	for i, s := range t.buckets[bi] {
		if s.hash == h && s.key == key {
			return h, bi, i
		}
	}
	return h, bi, -1
}

func (t *fastTable[K, V]) get(key K) (*Entry[V], bool) {
	_, bi, si := t.find(key)
	if si < 0 {
		return nil, false
	}
	return t.buckets[bi][si].entry, true
}

func (t *fastTable[K, V]) insert(key K, e *Entry[V]) (*Entry[V], bool) {
	h, bi, si := t.find(key)
	if si >= 0 {
		prev := t.buckets[bi][si].entry
		t.buckets[bi][si].entry = e
		return prev, true
	}
	t.buckets[bi] = append(t.buckets[bi], fastSlot[K, V]{hash: h, key: key, entry: e})
	t.n++
	if t.n > len(t.buckets)*fastMaxLoad {
		t.grow()
	}
	return nil, false
}

func (t *fastTable[K, V]) remove(key K) (*Entry[V], bool) {
	_, bi, si := t.find(key)
	if si < 0 {
		return nil, false
	}
	b := t.buckets[bi]
	e := b[si].entry
	last := len(b) - 1
	b[si] = b[last]
	b[last] = fastSlot[K, V]{}
	t.buckets[bi] = b[:last]
	t.n--
	return e, true
}

func (t *fastTable[K, V]) grow() {
	old := t.buckets
	t.buckets = make([][]fastSlot[K, V], len(old)*2)
	for _, b := range old {
		for _, s := range b {
			i := t.bucket(s.hash)
			t.buckets[i] = append(t.buckets[i], s)
		}
	}
}

func (t *fastTable[K, V]) len() int { return t.n }

func (t *fastTable[K, V]) clear() {
	t.buckets = make([][]fastSlot[K, V], fastMinBuckets)
	t.n = 0
}

func (t *fastTable[K, V]) all(yield func(K, *Entry[V]) bool) {
	for _, b := range t.buckets {
		for _, s := range b {
			if !yield(s.key, s.entry) {
				return
			}
		}
	}
}

func (t *fastTable[K, V]) drain(yield func(K, *Entry[V]) bool) {
	for bi := range t.buckets {
		for len(t.buckets[bi]) > 0 {
			b := t.buckets[bi]
			last := len(b) - 1
			s := b[last]
			b[last] = fastSlot[K, V]{}
			t.buckets[bi] = b[:last]
			t.n--
			if !yield(s.key, s.entry) {
				return
			}
		}
	}
}
