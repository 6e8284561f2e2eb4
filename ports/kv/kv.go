package kv

import (
	"context"
	"errors"
	"time"

	"github.com/codewandler/ttlmap-go/core/clock"
	"github.com/codewandler/ttlmap-go/internal/codec"
)

var (
	ErrNotFound = errors.New("not found")
)

// Entry is a stored value. ExpiresAt is set by the store on Put and is
// zero for entries that never expire; it is ignored on input.
type Entry struct {
	Data      []byte
	Meta      map[string]any
	ExpiresAt time.Time
}

// Expires reports whether the entry has a TTL.
func (e Entry) Expires() bool { return !e.ExpiresAt.IsZero() }

// TTL returns the lifetime left at now, zero once expired. Entries without
// expiry report false.
func (e Entry) TTL(now time.Time) (time.Duration, bool) {
	if !e.Expires() {
		return 0, false
	}
	return max(e.ExpiresAt.Sub(now), 0), true
}

type PutOptions struct {
	// TTL bounds the lifetime of the entry. Zero or negative means no expiry.
	TTL time.Duration
}

func (o PutOptions) expiresAt(now clock.Instant) clock.Instant {
	if o.TTL <= 0 {
		return clock.Never
	}
	return now.Add(o.TTL)
}

type Store interface {
	Put(ctx context.Context, key string, entry Entry, opts PutOptions) error
	Get(ctx context.Context, key string) (entry Entry, err error)
	Delete(ctx context.Context, key string) error
}

func Put[T any](ctx context.Context, store Store, key string, v T, opts PutOptions) error {
	data, err := codec.JSON.Marshal(v)
	if err != nil {
		return err
	}
	return store.Put(ctx, key, Entry{Data: data}, opts)
}

func Get[T any](ctx context.Context, store Store, key string) (out T, err error) {
	entry, err := store.Get(ctx, key)
	if err != nil {
		return
	}
	err = codec.JSON.Unmarshal(entry.Data, &out)
	return
}
