package ttlmap

import (
	"cmp"
	"fmt"
	"iter"
	"sync/atomic"
	"time"

	"github.com/codewandler/ttlmap-go/core/clock"
)

type (
	Option func(*options)

	options struct {
		kind     Kind
		clock    clock.Clock
		hasher   Hasher
		capacity int
	}
)

// WithKind selects the storage backend (default [Hash]).
func WithKind(kind Kind) Option {
	return func(o *options) { o.kind = kind }
}

// WithClock sets the clock used to turn insert TTLs into expiry instants
// (default [clock.System]).
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithHasher sets the hasher of the [FastHash] backend (default [XXHash]).
func WithHasher(h Hasher) Option {
	return func(o *options) { o.hasher = h }
}

// WithCapacity pre-sizes hash based backends.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// Map is an associative container whose entries expire. Expired entries
// stay in storage until removed or swept, but every read path treats them
// as absent.
//
// Map is not safe for concurrent use; see [Synced].
type Map[K cmp.Ordered, V any] struct {
	b     *backend[K, V]
	clock clock.Clock
	// number of active borrowing iterations; atomic so that Synced can
	// run several under its read lock
	borrows atomic.Int32
}

func New[K cmp.Ordered, V any](opts ...Option) (*Map[K, V], error) {
	o := options{kind: Hash}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.kind.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidKind, o.kind)
	}
	if o.hasher != nil && o.kind != FastHash {
		return nil, fmt.Errorf("%w: got %s", ErrHasherUnsupported, o.kind)
	}
	if o.clock == nil {
		o.clock = clock.System()
	}
	if o.capacity < 0 {
		o.capacity = 0
	}
	return &Map[K, V]{
		b:     newBackend[K, V](o.kind, o.capacity, o.hasher),
		clock: o.clock,
	}, nil
}

// MustNew is like New but panics on invalid options.
func MustNew[K cmp.Ordered, V any](opts ...Option) *Map[K, V] {
	m, err := New[K, V](opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Map[K, V]) Kind() Kind         { return m.b.kind }
func (m *Map[K, V]) Clock() clock.Clock { return m.clock }

// Len returns the number of stored entries, expired ones included.
func (m *Map[K, V]) Len() int { return m.b.len() }

// Insert stores value under key, expiring ttl from the map clock's now.
// A ttl <= 0 stores an entry that is already expired.
//
// The previous value is returned whenever key was occupied, even if that
// entry had already expired.
func (m *Map[K, V]) Insert(key K, value V, ttl time.Duration) (prev V, ok bool) {
	return m.InsertAt(key, value, m.clock.Now().Add(ttl))
}

// InsertAt is Insert with an absolute expiry. Use [clock.Never] for values
// that must not expire.
func (m *Map[K, V]) InsertAt(key K, value V, expiresAt clock.Instant) (prev V, ok bool) {
	m.mustNotBorrow()
	e, ok := m.b.insert(key, NewEntry(value, expiresAt))
	if ok {
		prev = e.value
	}
	return prev, ok
}

// Get returns the value for key unless it is absent or expired as of now.
// Expired entries are not removed.
func (m *Map[K, V]) Get(key K, now clock.Instant) (v V, ok bool) {
	e, ok := m.live(key, now)
	if !ok {
		return v, false
	}
	return e.value, true
}

// GetMut is like Get but returns a pointer for in-place updates. The
// pointer is valid until key is removed or overwritten.
func (m *Map[K, V]) GetMut(key K, now clock.Instant) (*V, bool) {
	e, ok := m.live(key, now)
	if !ok {
		return nil, false
	}
	return e.Ref(), true
}

func (m *Map[K, V]) ContainsKey(key K, now clock.Instant) bool {
	_, ok := m.live(key, now)
	return ok
}

// Remove deletes key regardless of its expiry and returns what was stored.
func (m *Map[K, V]) Remove(key K) (v V, ok bool) {
	m.mustNotBorrow()
	e, ok := m.b.remove(key)
	if !ok {
		return v, false
	}
	return e.value, true
}

// Refresh moves the expiry of a live entry to now+ttl. It reports false
// if key is absent or already expired.
func (m *Map[K, V]) Refresh(key K, ttl time.Duration, now clock.Instant) bool {
	e, ok := m.live(key, now)
	if !ok {
		return false
	}
	e.Touch(now.Add(ttl))
	return true
}

// Entry returns the raw entry for key without checking its expiry.
func (m *Map[K, V]) Entry(key K) (*Entry[V], bool) {
	return m.b.get(key)
}

// Entries iterates all raw entries, expired ones included, in backend order.
func (m *Map[K, V]) Entries() iter.Seq2[K, *Entry[V]] {
	return func(yield func(K, *Entry[V]) bool) {
		m.borrow()
		defer m.release()
		m.b.all()(yield)
	}
}

// RemoveExpired physically removes every entry expired as of now and
// returns how many were removed.
func (m *Map[K, V]) RemoveExpired(now clock.Instant) int {
	m.mustNotBorrow()
	var expired []K
	for k, e := range m.b.all() {
		if e.IsExpired(now) {
			expired = append(expired, k)
		}
	}
	for _, k := range expired {
		m.b.remove(k)
	}
	return len(expired)
}

// Clear removes all entries.
func (m *Map[K, V]) Clear() {
	m.mustNotBorrow()
	m.b.clear()
}

func (m *Map[K, V]) live(key K, now clock.Instant) (*Entry[V], bool) {
	e, ok := m.b.get(key)
	if !ok || e.IsExpired(now) {
		return nil, false
	}
	return e, true
}

func (m *Map[K, V]) borrow()  { m.borrows.Add(1) }
func (m *Map[K, V]) release() { m.borrows.Add(-1) }

func (m *Map[K, V]) mustNotBorrow() {
	if m.borrows.Load() > 0 {
		panic(ErrMutationDuringIteration)
	}
}
