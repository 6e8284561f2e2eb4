package kv

import (
	"context"
	"time"

	"github.com/codewandler/ttlmap-go/core/clock"
	"github.com/codewandler/ttlmap-go/core/ttlmap"
)

type MemStoreOption func(*memStoreOptions)

type memStoreOptions struct {
	clock clock.Clock
	kind  ttlmap.Kind
}

// WithClock sets the clock used to decide expiry.
func WithClock(c clock.Clock) MemStoreOption {
	return func(o *memStoreOptions) { o.clock = c }
}

// WithKind selects the backing map kind.
func WithKind(k ttlmap.Kind) MemStoreOption {
	return func(o *memStoreOptions) { o.kind = k }
}

// MemStore keeps entries in memory. Expired entries read as ErrNotFound
// and stay allocated until Sweep or an overwrite.
type MemStore struct {
	clock clock.Clock
	data  *ttlmap.Synced[string, Entry]
}

func NewMemStore(opts ...MemStoreOption) *MemStore {
	o := memStoreOptions{clock: clock.System(), kind: ttlmap.Hash}
	for _, opt := range opts {
		opt(&o)
	}
	m := ttlmap.MustNew[string, Entry](ttlmap.WithKind(o.kind), ttlmap.WithClock(o.clock))
	return &MemStore{clock: o.clock, data: ttlmap.NewSynced(m)}
}

func (m *MemStore) Put(_ context.Context, key string, entry Entry, opts PutOptions) error {
	expiresAt := opts.expiresAt(m.clock.Now())
	entry.ExpiresAt = time.Time{}
	if expiresAt != clock.Never {
		entry.ExpiresAt = expiresAt.Time()
	}
	m.data.InsertAt(key, entry, expiresAt)
	return nil
}

func (m *MemStore) Get(_ context.Context, key string) (entry Entry, err error) {
	entry, ok := m.data.Get(key, m.clock.Now())
	if !ok {
		return entry, ErrNotFound
	}
	return entry, nil
}

func (m *MemStore) Delete(_ context.Context, key string) error {
	m.data.Remove(key)
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (m *MemStore) Sweep() int {
	return m.data.RemoveExpired(m.clock.Now())
}

// Len counts stored entries, expired ones included.
func (m *MemStore) Len() int { return m.data.Len() }

var _ Store = (*MemStore)(nil)
