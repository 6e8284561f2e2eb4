package ttlmap

import (
	"cmp"
	"iter"

	"github.com/codewandler/ttlmap-go/core/clock"
)

// All iterates the entries live as of now in backend order (ascending keys
// for [Ordered]). now is fixed for the whole pass.
//
// Insert, Remove and the other structural mutations panic with
// [ErrMutationDuringIteration] while the loop runs.
func (m *Map[K, V]) All(now clock.Instant) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		m.borrow()
		defer m.release()
		for k, e := range m.b.all() {
			if e.IsExpired(now) {
				continue
			}
			if !yield(k, e.value) {
				return
			}
		}
	}
}

// AllMut is like All but yields pointers to the stored values.
func (m *Map[K, V]) AllMut(now clock.Instant) iter.Seq2[K, *V] {
	return func(yield func(K, *V) bool) {
		m.borrow()
		defer m.release()
		for k, e := range m.b.all() {
			if e.IsExpired(now) {
				continue
			}
			if !yield(k, e.Ref()) {
				return
			}
		}
	}
}

// Drain takes every entry out of the map. The map is empty once Drain
// returns; the returned sequence yields the entries that were live as of
// now and drops the rest, including whatever is left when the loop stops
// early.
func (m *Map[K, V]) Drain(now clock.Instant) iter.Seq2[K, V] {
	m.mustNotBorrow()
	b := m.b
	m.b = b.fresh()
	return func(yield func(K, V) bool) {
		defer b.clear()
		for k, e := range b.drain() {
			if e.IsExpired(now) {
				continue
			}
			if !yield(k, e.value) {
				return
			}
		}
	}
}

// Iter returns a pull iterator over the entries live as of now. The map is
// borrowed until the iterator is exhausted or stopped; callers that do not
// drain it must call Stop.
func (m *Map[K, V]) Iter(now clock.Instant) *Iter[K, V] {
	m.borrow()
	next, stop := iter.Pull2(m.b.all())
	return &Iter[K, V]{
		next:    next,
		stop:    stop,
		release: m.release,
		now:     now,
	}
}

// Iter is a pull-style iterator created by [Map.Iter]. Once Next reports
// false it keeps doing so.
type Iter[K cmp.Ordered, V any] struct {
	next    func() (K, *Entry[V], bool)
	stop    func()
	release func()
	now     clock.Instant
	done    bool
}

// Next returns the next live entry.
func (it *Iter[K, V]) Next() (key K, value V, ok bool) {
	if it.done {
		return key, value, false
	}
	for {
		k, e, more := it.next()
		if !more {
			it.Stop()
			return key, value, false
		}
		if !e.IsExpired(it.now) {
			return k, e.value, true
		}
	}
}

// Now returns the snapshot instant used for expiry checks.
func (it *Iter[K, V]) Now() clock.Instant { return it.now }

// Stop ends the iteration and releases the map. It is safe to call more
// than once.
func (it *Iter[K, V]) Stop() {
	if it.done {
		return
	}
	it.done = true
	it.stop()
	it.release()
}
