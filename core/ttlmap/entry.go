package ttlmap

import (
	"time"

	"github.com/codewandler/ttlmap-go/core/clock"
)

// Entry wraps a stored value with the instant it expires at.
//
// Entry is a plain data holder: the value accessors never look at the
// expiry. Filtering expired entries is the job of [Map] and its iterators.
type Entry[V any] struct {
	value     V
	expiresAt clock.Instant
}

func NewEntry[V any](value V, expiresAt clock.Instant) *Entry[V] {
	return &Entry[V]{value: value, expiresAt: expiresAt}
}

// IsExpired reports whether the entry is expired as of now (now >= expiry).
func (e *Entry[V]) IsExpired(now clock.Instant) bool {
	return now >= e.expiresAt
}

func (e *Entry[V]) Value() V { return e.value }

// Ref returns a pointer to the stored value for in-place updates.
func (e *Entry[V]) Ref() *V { return &e.value }

func (e *Entry[V]) ExpiresAt() clock.Instant { return e.expiresAt }

// Touch moves the expiry to expiresAt. It is the only way to change the
// expiry of an existing entry.
func (e *Entry[V]) Touch(expiresAt clock.Instant) {
	e.expiresAt = expiresAt
}

// TTL returns the remaining lifetime as of now, or 0 if the entry is expired.
func (e *Entry[V]) TTL(now clock.Instant) time.Duration {
	if e.IsExpired(now) {
		return 0
	}
	return e.expiresAt.Sub(now)
}
