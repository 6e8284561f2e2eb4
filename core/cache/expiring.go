package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/ttlmap-go/core/clock"
	"github.com/codewandler/ttlmap-go/core/sf"
	"github.com/codewandler/ttlmap-go/core/sweep"
	"github.com/codewandler/ttlmap-go/core/ttlmap"
	"github.com/codewandler/ttlmap-go/internal/shard"
)

var (
	ErrClosed    = errors.New("cache is closed")
	ErrNilLoader = errors.New("loader is required")
)

type ExpiringOpts struct {
	// Name labels logs and metrics.
	Name string
	// Kind of the backing ttlmap (default ttlmap.Hash).
	Kind ttlmap.Kind
	// Clock used for expiry decisions (default system clock).
	Clock clock.Clock
	// DefaultTTL applies to puts without WithTTL. Zero means no expiry.
	DefaultTTL time.Duration
	// SweepInterval enables a background sweeper. Zero disables it; expired
	// entries are then only removed by Sweep or by overwriting them.
	SweepInterval time.Duration
	// Shards splits the cache into independently locked maps. Values
	// below 2 use a single map.
	Shards       int
	Log          *slog.Logger
	Metrics      Metrics
	SweepMetrics sweep.Metrics
}

// Expiring is a Cache backed by a ttlmap. Expired entries are invisible to
// Get right away and are reclaimed by the sweeper. It is safe for
// concurrent use.
type Expiring struct {
	name       string
	log        *slog.Logger
	clock      clock.Clock
	defaultTTL time.Duration
	sharder    shard.Sharder
	items      shards
	sweeper    *sweep.Sweeper
	loads      *sf.Singleflight[any]
	metrics    Metrics
	closed     atomic.Bool
}

func NewExpiring(opts ExpiringOpts) (*Expiring, error) {
	name := opts.Name
	if name == "" {
		name = fmt.Sprintf("cache-%s", gonanoid.Must(6))
	}

	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("cache", name))

	clk := opts.Clock
	if clk == nil {
		clk = clock.System()
	}

	kind := opts.Kind
	if kind == 0 {
		kind = ttlmap.Hash
	}

	sharder := shard.Distributed(opts.Shards)
	items := make(shards, sharder.Count())
	for i := range items {
		m, err := ttlmap.New[string, any](ttlmap.WithKind(kind), ttlmap.WithClock(clk))
		if err != nil {
			return nil, fmt.Errorf("create cache %s: %w", name, err)
		}
		items[i] = ttlmap.NewSynced(m)
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = NopMetrics()
	}

	c := &Expiring{
		name:       name,
		log:        log,
		clock:      clk,
		defaultTTL: opts.DefaultTTL,
		sharder:    sharder,
		items:      items,
		loads:      sf.New[any](),
		metrics:    metrics,
	}

	c.sweeper = sweep.New(c.items, sweep.Options{
		Name:     name,
		Interval: opts.SweepInterval,
		Clock:    clk,
		Log:      log,
		Metrics:  opts.SweepMetrics,
	})
	if opts.SweepInterval > 0 {
		if err := c.sweeper.Start(context.Background()); err != nil {
			return nil, err
		}
	}

	log.Debug("cache created",
		slog.String("kind", kind.String()),
		slog.Int("shards", len(items)),
		slog.Duration("default_ttl", opts.DefaultTTL),
	)
	return c, nil
}

func (c *Expiring) Name() string { return c.name }

func (c *Expiring) Get(key string) (any, bool) {
	if c.closed.Load() {
		return nil, false
	}
	v, ok := c.shard(key).Get(key, c.clock.Now())
	if ok {
		c.metrics.Hit(c.name)
	} else {
		c.metrics.Miss(c.name)
	}
	return v, ok
}

func (c *Expiring) Put(key string, val any, opts ...PutOption) {
	if c.closed.Load() {
		return
	}
	o := applyPutOptions(PutOptions{TTL: c.defaultTTL}, opts)
	m := c.shard(key)
	m.InsertAt(key, val, c.expiresAt(o.TTL))
	// Close may have cleared the shards between the check and the insert.
	if c.closed.Load() {
		m.Remove(key)
	}
}

func (c *Expiring) Delete(key string) {
	c.shard(key).Remove(key)
}

// TTL returns the remaining lifetime of key. Entries without expiry report
// a very large duration.
func (c *Expiring) TTL(key string) (time.Duration, bool) {
	return c.shard(key).TTL(key, c.clock.Now())
}

// GetOrLoad returns the cached value for key or calls load on a miss and
// caches its result. Concurrent misses on the same key share one load.
func (c *Expiring) GetOrLoad(ctx context.Context, key string, load Loader, opts ...PutOption) (any, error) {
	if load == nil {
		return nil, ErrNilLoader
	}
	if c.closed.Load() {
		return nil, ErrClosed
	}
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, shared, err := c.loads.Do(key, func() (any, error) {
		timer := c.metrics.LoadDuration(c.name)
		defer timer.ObserveDuration()

		v, err := load(ctx, key)
		c.metrics.LoadCompleted(c.name, err == nil)
		if err != nil {
			return nil, err
		}
		c.Put(key, v, opts...)
		return v, nil
	})
	if err != nil {
		c.log.Warn("load failed", slog.String("key", key), slog.Any("error", err))
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if shared {
		c.log.Debug("load shared", slog.String("key", key))
	}
	return v, nil
}

// Len returns the number of stored entries, including expired ones that
// have not been swept yet.
func (c *Expiring) Len() int { return c.items.Len() }

// Sweep removes expired entries now and returns how many were removed.
func (c *Expiring) Sweep() int { return c.sweeper.Sweep() }

// Close stops the sweeper and drops all entries. Later calls miss and
// puts are ignored.
func (c *Expiring) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.sweeper.Stop()
	for _, m := range c.items {
		m.Clear()
	}
	c.log.Debug("cache closed")
}

func (c *Expiring) expiresAt(ttl time.Duration) clock.Instant {
	if ttl <= 0 {
		return clock.Never
	}
	return c.clock.Now().Add(ttl)
}

func (c *Expiring) shard(key string) *ttlmap.Synced[string, any] {
	return c.items[c.sharder.GetShardForKey(key)]
}

// shards lets one sweeper purge every shard.
type shards []*ttlmap.Synced[string, any]

func (s shards) RemoveExpired(now clock.Instant) int {
	n := 0
	for _, m := range s {
		n += m.RemoveExpired(now)
	}
	return n
}

func (s shards) Len() int {
	n := 0
	for _, m := range s {
		n += m.Len()
	}
	return n
}

var _ LoadingCache = (*Expiring)(nil)
