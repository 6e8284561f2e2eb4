package ttlmap

import (
	"cmp"
	"sync"
	"time"

	"github.com/codewandler/ttlmap-go/core/clock"
)

// Synced guards a Map with a read/write lock. Reads take the read lock
// since they never change the map's structure.
type Synced[K cmp.Ordered, V any] struct {
	mu sync.RWMutex
	m  *Map[K, V]
}

func NewSynced[K cmp.Ordered, V any](m *Map[K, V]) *Synced[K, V] {
	return &Synced[K, V]{m: m}
}

func (s *Synced[K, V]) Clock() clock.Clock { return s.m.Clock() }
func (s *Synced[K, V]) Kind() Kind         { return s.m.Kind() }

func (s *Synced[K, V]) Insert(key K, value V, ttl time.Duration) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Insert(key, value, ttl)
}

func (s *Synced[K, V]) InsertAt(key K, value V, expiresAt clock.Instant) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.InsertAt(key, value, expiresAt)
}

func (s *Synced[K, V]) Get(key K, now clock.Instant) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.Get(key, now)
}

// Update applies fn to the value of a live entry under the write lock.
func (s *Synced[K, V]) Update(key K, now clock.Instant, fn func(*V)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m.GetMut(key, now)
	if ok {
		fn(p)
	}
	return ok
}

func (s *Synced[K, V]) ContainsKey(key K, now clock.Instant) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.ContainsKey(key, now)
}

// TTL returns the remaining lifetime of a live entry.
func (s *Synced[K, V]) TTL(key K, now clock.Instant) (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.m.live(key, now)
	if !ok {
		return 0, false
	}
	return e.TTL(now), true
}

func (s *Synced[K, V]) Remove(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Remove(key)
}

func (s *Synced[K, V]) Refresh(key K, ttl time.Duration, now clock.Instant) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Refresh(key, ttl, now)
}

func (s *Synced[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.Len()
}

// Range calls fn for every entry live as of now, in backend order. The
// entries are copied under the read lock and fn runs without it, so fn
// may call back into s.
func (s *Synced[K, V]) Range(now clock.Instant, fn func(K, V) bool) {
	type pair struct {
		k K
		v V
	}
	s.mu.RLock()
	live := make([]pair, 0, s.m.Len())
	for k, v := range s.m.All(now) {
		live = append(live, pair{k, v})
	}
	s.mu.RUnlock()

	for _, p := range live {
		if !fn(p.k, p.v) {
			return
		}
	}
}

// Snapshot copies the entries live as of now.
func (s *Synced[K, V]) Snapshot(now clock.Instant) map[K]V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[K]V)
	for k, v := range s.m.All(now) {
		out[k] = v
	}
	return out
}

func (s *Synced[K, V]) RemoveExpired(now clock.Instant) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.RemoveExpired(now)
}

func (s *Synced[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.Clear()
}
