package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/ttlmap-go/core/clock"
	"github.com/codewandler/ttlmap-go/core/metrics"
	"github.com/codewandler/ttlmap-go/core/ttlmap"
)

type countingMetrics struct {
	hits, misses, loads, failed atomic.Int32
}

func (m *countingMetrics) Hit(string)                        { m.hits.Add(1) }
func (m *countingMetrics) Miss(string)                       { m.misses.Add(1) }
func (m *countingMetrics) LoadDuration(string) metrics.Timer { return metrics.NopTimer() }
func (m *countingMetrics) LoadCompleted(_ string, ok bool) {
	m.loads.Add(1)
	if !ok {
		m.failed.Add(1)
	}
}

func newExpiring(t *testing.T, opts ExpiringOpts) (*Expiring, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(clock.FromTime(time.Unix(1_700_000_000, 0)))
	opts.Clock = clk
	c, err := NewExpiring(opts)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, clk
}

func TestExpiring_Basic(t *testing.T) {
	c, _ := newExpiring(t, ExpiringOpts{Name: "basic"})
	require.Equal(t, "basic", c.Name())

	c.Put("a", 1)
	c.Put("b", 2)

	val, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, val)

	c.Put("a", 3)
	val, _ = c.Get("a")
	require.Equal(t, 3, val)

	c.Delete("a")
	_, ok = c.Get("a")
	require.False(t, ok)

	// deleting a missing key is fine
	c.Delete("nonexistent")
	require.Equal(t, 1, c.Len())
}

func TestExpiring_TTL(t *testing.T) {
	for _, kind := range ttlmap.Kinds {
		t.Run(kind.String(), func(t *testing.T) {
			c, clk := newExpiring(t, ExpiringOpts{Kind: kind})

			c.Put("a", 1, WithTTL(50*time.Millisecond))
			c.Put("b", 2) // no TTL

			val, ok := c.Get("a")
			require.True(t, ok)
			require.Equal(t, 1, val)

			ttl, ok := c.TTL("a")
			require.True(t, ok)
			require.Equal(t, 50*time.Millisecond, ttl)

			clk.Advance(60 * time.Millisecond)

			_, ok = c.Get("a")
			require.False(t, ok, "a expired")
			require.Equal(t, 2, c.Len(), "expired entry is still stored")

			val, ok = c.Get("b")
			require.True(t, ok)
			require.Equal(t, 2, val)

			require.Equal(t, 1, c.Sweep())
			require.Equal(t, 1, c.Len())
		})
	}
}

func TestExpiring_TTLUpdate(t *testing.T) {
	c, clk := newExpiring(t, ExpiringOpts{})

	c.Put("a", 1, WithTTL(50*time.Millisecond))
	clk.Advance(30 * time.Millisecond)

	c.Put("a", 2, WithTTL(100*time.Millisecond))
	clk.Advance(30 * time.Millisecond)

	val, ok := c.Get("a")
	require.True(t, ok, "ttl was refreshed by the second put")
	require.Equal(t, 2, val)
}

func TestExpiring_DefaultTTL(t *testing.T) {
	c, clk := newExpiring(t, ExpiringOpts{DefaultTTL: time.Second})

	c.Put("default", 1)
	c.Put("forever", 2, WithTTL(0))
	clk.Advance(2 * time.Second)

	_, ok := c.Get("default")
	require.False(t, ok)
	_, ok = c.Get("forever")
	require.True(t, ok)
}

func TestExpiring_BackgroundSweep(t *testing.T) {
	c, clk := newExpiring(t, ExpiringOpts{SweepInterval: 5 * time.Millisecond})

	c.Put("a", 1, WithTTL(time.Second))
	c.Put("b", 2)
	clk.Advance(time.Minute)

	require.Eventually(t, func() bool { return c.Len() == 1 }, time.Second, 5*time.Millisecond)
}

func TestExpiring_Metrics(t *testing.T) {
	m := &countingMetrics{}
	c, _ := newExpiring(t, ExpiringOpts{Metrics: m})

	c.Put("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	require.EqualValues(t, 2, m.hits.Load())
	require.EqualValues(t, 1, m.misses.Load())
}

func TestExpiring_GetOrLoad(t *testing.T) {
	t.Run("loads once and caches", func(t *testing.T) {
		m := &countingMetrics{}
		c, clk := newExpiring(t, ExpiringOpts{Metrics: m})

		var calls atomic.Int32
		load := func(ctx context.Context, key string) (any, error) {
			calls.Add(1)
			return "value-of-" + key, nil
		}

		v, err := c.GetOrLoad(t.Context(), "k", load, WithTTL(time.Second))
		require.NoError(t, err)
		require.Equal(t, "value-of-k", v)

		v, err = c.GetOrLoad(t.Context(), "k", load)
		require.NoError(t, err)
		require.Equal(t, "value-of-k", v)
		require.EqualValues(t, 1, calls.Load())

		clk.Advance(2 * time.Second)
		_, err = c.GetOrLoad(t.Context(), "k", load)
		require.NoError(t, err)
		require.EqualValues(t, 2, calls.Load(), "expired entries are reloaded")
		require.EqualValues(t, 2, m.loads.Load())
	})

	t.Run("concurrent misses share one load", func(t *testing.T) {
		c, _ := newExpiring(t, ExpiringOpts{})

		var calls atomic.Int32
		release := make(chan struct{})
		load := func(ctx context.Context, key string) (any, error) {
			calls.Add(1)
			<-release
			return 7, nil
		}

		var wg sync.WaitGroup
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := c.GetOrLoad(t.Context(), "k", load)
				require.NoError(t, err)
				require.Equal(t, 7, v)
			}()
		}
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		require.EqualValues(t, 1, calls.Load())
	})

	t.Run("errors are not cached", func(t *testing.T) {
		m := &countingMetrics{}
		c, _ := newExpiring(t, ExpiringOpts{Metrics: m})
		boom := errors.New("boom")

		_, err := c.GetOrLoad(t.Context(), "k", func(context.Context, string) (any, error) { return nil, boom })
		require.ErrorIs(t, err, boom)
		require.Zero(t, c.Len())
		require.EqualValues(t, 1, m.failed.Load())

		_, err = c.GetOrLoad(t.Context(), "k", nil)
		require.ErrorIs(t, err, ErrNilLoader)
	})
}

func TestExpiring_Close(t *testing.T) {
	c, err := NewExpiring(ExpiringOpts{SweepInterval: time.Millisecond})
	require.NoError(t, err)
	c.Put("a", 1)
	c.Close()
	c.Close()

	_, ok := c.Get("a")
	require.False(t, ok)

	c.Put("b", 2)
	c.Delete("a")
	require.Zero(t, c.Len())

	_, err = c.GetOrLoad(t.Context(), "b", func(context.Context, string) (any, error) { return 1, nil })
	require.ErrorIs(t, err, ErrClosed)
}

func TestExpiring_PutRacingClose(t *testing.T) {
	for range 20 {
		c, err := NewExpiring(ExpiringOpts{Shards: 4})
		require.NoError(t, err)

		var wg sync.WaitGroup
		for w := range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range 200 {
					c.Put(strconv.Itoa(w*1000+i), i)
				}
			}()
		}
		c.Close()
		wg.Wait()

		require.Zero(t, c.Len(), "no entry survives Close")
	}
}

func TestExpiring_InvalidKind(t *testing.T) {
	_, err := NewExpiring(ExpiringOpts{Kind: ttlmap.Kind(99)})
	require.ErrorIs(t, err, ttlmap.ErrInvalidKind)
}

func TestTyped(t *testing.T) {
	c, _ := newExpiring(t, ExpiringOpts{})
	typed := NewTyped[int](c)

	typed.Put("n", 42)
	v, ok := typed.Get("n")
	require.True(t, ok)
	require.Equal(t, 42, v)

	c.Put("s", "not an int")
	_, ok = typed.Get("s")
	require.False(t, ok)

	typed.Delete("n")
	_, ok = typed.Get("n")
	require.False(t, ok)
}

func TestExpiring_Sharded(t *testing.T) {
	c, clk := newExpiring(t, ExpiringOpts{Shards: 4, Kind: ttlmap.Ordered})
	require.Len(t, c.items, 4)

	for i := range 100 {
		c.Put(strconv.Itoa(i), i, WithTTL(time.Duration(i%2+1)*time.Second))
	}
	require.Equal(t, 100, c.Len())

	for i := range 100 {
		v, ok := c.Get(strconv.Itoa(i))
		require.True(t, ok)
		require.Equal(t, i, v)
	}

	clk.Advance(time.Second)
	require.Equal(t, 50, c.Sweep(), "every shard is swept")
	require.Equal(t, 50, c.Len())

	_, ok := c.Get("0")
	require.False(t, ok)
	_, ok = c.Get("1")
	require.True(t, ok)
}
