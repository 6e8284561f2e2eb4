package ttlmap

import (
	"cmp"
	"maps"
	"math"
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/ttlmap-go/core/clock"
)

func newTestMap[K cmp.Ordered, V any](t *testing.T, kind Kind) (*Map[K, V], *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(0)
	m, err := New[K, V](WithKind(kind), WithClock(clk))
	require.NoError(t, err)
	require.Equal(t, kind, m.Kind())
	return m, clk
}

func forEachKind(t *testing.T, fn func(t *testing.T, kind Kind)) {
	for _, kind := range Kinds {
		t.Run(kind.String(), func(t *testing.T) { fn(t, kind) })
	}
}

func TestMap_Scenario(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind Kind) {
		m, _ := newTestMap[string, int](t, kind)

		_, ok := m.Insert("a", 10, 5)
		require.False(t, ok)

		v, ok := m.Get("a", 4)
		require.True(t, ok)
		require.Equal(t, 10, v)

		_, ok = m.Get("a", 5)
		require.False(t, ok)

		v, ok = m.Remove("a")
		require.True(t, ok)
		require.Equal(t, 10, v)

		_, ok = m.Get("a", 5)
		require.False(t, ok)
		require.Zero(t, m.Len())
	})
}

func TestMap_ExpirationMonotonic(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind Kind) {
		m, _ := newTestMap[int, string](t, kind)
		m.InsertAt(1, "x", 50)

		for now := clock.Instant(0); now < 100; now++ {
			_, ok := m.Get(1, now)
			require.Equal(t, now < 50, ok, "now=%d", now)
			require.Equal(t, now < 50, m.ContainsKey(1, now), "now=%d", now)
		}
	})
}

func TestMap_ReadsDoNotRemove(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind Kind) {
		m, _ := newTestMap[string, int](t, kind)
		m.InsertAt("a", 1, 10)
		m.InsertAt("b", 2, 20)

		require.Equal(t, 2, m.Len())
		_, ok := m.Get("a", 15)
		require.False(t, ok)
		require.False(t, m.ContainsKey("a", 15))
		_, ok = m.GetMut("a", 15)
		require.False(t, ok)
		for range m.All(15) {
		}
		require.Equal(t, 2, m.Len())

		e, ok := m.Entry("a")
		require.True(t, ok)
		require.True(t, e.IsExpired(15))
	})
}

func TestMap_InsertReturnsPrevious(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind Kind) {
		m, clk := newTestMap[string, int](t, kind)

		_, ok := m.Insert("k", 1, 10)
		require.False(t, ok, "fresh key")

		prev, ok := m.Insert("k", 2, 10)
		require.True(t, ok)
		require.Equal(t, 1, prev)

		clk.Advance(100)
		_, ok = m.Get("k", clk.Now())
		require.False(t, ok)

		prev, ok = m.Insert("k", 3, 10)
		require.True(t, ok, "expired previous occupant is still returned")
		require.Equal(t, 2, prev)
		require.Equal(t, 1, m.Len())

		v, ok := m.Get("k", clk.Now())
		require.True(t, ok)
		require.Equal(t, 3, v)
	})
}

func TestMap_RemoveIgnoresExpiration(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind Kind) {
		m, _ := newTestMap[string, string](t, kind)
		m.InsertAt("stale", "old", 1)

		v, ok := m.Remove("stale")
		require.True(t, ok)
		require.Equal(t, "old", v)

		_, ok = m.Remove("stale")
		require.False(t, ok)
	})
}

func TestMap_NonPositiveTTL(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind Kind) {
		m, clk := newTestMap[string, int](t, kind)
		clk.Set(100)

		m.Insert("zero", 1, 0)
		m.Insert("neg", 1, -time.Second)
		require.Equal(t, 2, m.Len())
		require.False(t, m.ContainsKey("zero", 100))
		require.False(t, m.ContainsKey("neg", 100))
	})
}

func TestMap_GetMut(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind Kind) {
		m, _ := newTestMap[string, []int](t, kind)
		m.InsertAt("a", []int{1}, 10)

		p, ok := m.GetMut("a", 0)
		require.True(t, ok)
		*p = append(*p, 2)

		v, _ := m.Get("a", 0)
		require.Equal(t, []int{1, 2}, v)
	})
}

func TestMap_Refresh(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind Kind) {
		m, _ := newTestMap[string, int](t, kind)
		m.InsertAt("a", 1, 10)

		require.True(t, m.Refresh("a", 100, 5))
		require.True(t, m.ContainsKey("a", 50))
		require.False(t, m.ContainsKey("a", 105))

		require.False(t, m.Refresh("a", 100, 105), "expired entries are not revived")
		require.False(t, m.Refresh("missing", 100, 0))
	})
}

func TestMap_BackendOrder(t *testing.T) {
	t.Run("ordered", func(t *testing.T) {
		m, _ := newTestMap[int, string](t, Ordered)
		for _, k := range []int{3, 1, 2} {
			m.InsertAt(k, strconv.Itoa(k), clock.Never)
		}

		var keys []int
		for k := range m.All(0) {
			keys = append(keys, k)
		}
		require.Equal(t, []int{1, 2, 3}, keys)
	})

	for _, kind := range []Kind{Hash, FastHash} {
		t.Run(kind.String(), func(t *testing.T) {
			m, _ := newTestMap[int, string](t, kind)
			want := map[int]string{}
			for _, k := range []int{3, 1, 2} {
				m.InsertAt(k, strconv.Itoa(k), clock.Never)
				want[k] = strconv.Itoa(k)
			}
			require.Equal(t, want, maps.Collect(m.All(0)))
		})
	}
}

func TestMap_IterMixedTTL(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind Kind) {
		m, clk := newTestMap[string, int](t, kind)
		m.Insert("short", 1, 10)
		m.Insert("medium", 2, 20)
		m.Insert("long", 3, 100)

		now := clk.Advance(50)
		require.Equal(t, map[string]int{"long": 3}, maps.Collect(m.All(now)))

		it := m.Iter(now)
		k, v, ok := it.Next()
		require.True(t, ok)
		require.Equal(t, "long", k)
		require.Equal(t, 3, v)
		_, _, ok = it.Next()
		require.False(t, ok)
	})
}

func TestMap_IterSnapshot(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind Kind) {
		m, clk := newTestMap[int, int](t, kind)
		for i := range 10 {
			m.Insert(i, i, time.Duration(10+i))
		}

		it := m.Iter(clk.Now())
		require.Equal(t, clock.Instant(0), it.Now())
		var seen []int
		for {
			k, _, ok := it.Next()
			if !ok {
				break
			}
			seen = append(seen, k)
			// time moves on, the pass does not notice
			clk.Advance(5)
		}
		require.Len(t, seen, 10)

		all := slices.Collect(func(yield func(int) bool) {
			for k := range m.All(0) {
				clk.Advance(5)
				if !yield(k) {
					return
				}
			}
		})
		require.Len(t, all, 10)
	})
}

func TestIter_Exhausted(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind Kind) {
		m, _ := newTestMap[string, int](t, kind)
		m.InsertAt("a", 1, clock.Never)

		it := m.Iter(0)
		_, _, ok := it.Next()
		require.True(t, ok)
		for range 3 {
			_, _, ok = it.Next()
			require.False(t, ok)
		}

		// exhaustion releases the map
		m.Insert("b", 2, time.Second)

		it = m.Iter(0)
		it.Stop()
		it.Stop()
		_, _, ok = it.Next()
		require.False(t, ok)
		m.Insert("c", 3, time.Second)
	})
}

func TestMap_AllMut(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind Kind) {
		m, _ := newTestMap[string, int](t, kind)
		m.InsertAt("live", 1, 100)
		m.InsertAt("dead", 1, 10)

		for _, v := range m.AllMut(50) {
			*v *= 10
		}
		v, _ := m.Get("live", 50)
		require.Equal(t, 10, v)
		dead, _ := m.Entry("dead")
		require.Equal(t, 1, dead.Value())
	})
}

func TestMap_Drain(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind Kind) {
		m, _ := newTestMap[int, int](t, kind)
		for i := range 10 {
			m.InsertAt(i, i, clock.Instant(i))
		}

		seq := m.Drain(5)
		require.Zero(t, m.Len(), "drain detaches storage immediately")

		got := maps.Collect(seq)
		require.Equal(t, map[int]int{6: 6, 7: 7, 8: 8, 9: 9}, got)
		require.Empty(t, maps.Collect(seq), "drained storage is gone")

		// the map is usable again and keeps its kind
		m.InsertAt(1, 1, clock.Never)
		require.Equal(t, kind, m.Kind())
		require.Equal(t, 1, m.Len())
	})
}

func TestMap_DrainOrdered(t *testing.T) {
	m, _ := newTestMap[int, int](t, Ordered)
	for _, k := range []int{5, 3, 9, 1} {
		m.InsertAt(k, k, clock.Never)
	}
	var keys []int
	for k := range m.Drain(0) {
		keys = append(keys, k)
		if len(keys) == 2 {
			break
		}
	}
	require.Equal(t, []int{1, 3}, keys)
	require.Zero(t, m.Len())
}

func TestMap_MutationDuringIterationPanics(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind Kind) {
		m, _ := newTestMap[string, int](t, kind)
		m.InsertAt("a", 1, clock.Never)
		m.InsertAt("b", 2, clock.Never)

		require.PanicsWithValue(t, ErrMutationDuringIteration, func() {
			for k := range m.All(0) {
				m.Remove(k)
			}
		})
		require.PanicsWithValue(t, ErrMutationDuringIteration, func() {
			for range m.Entries() {
				m.Insert("c", 3, time.Second)
			}
		})

		it := m.Iter(0)
		require.PanicsWithValue(t, ErrMutationDuringIteration, func() { m.Clear() })
		require.PanicsWithValue(t, ErrMutationDuringIteration, func() { m.RemoveExpired(0) })
		require.PanicsWithValue(t, ErrMutationDuringIteration, func() { m.Drain(0) })
		it.Stop()

		// borrows are released after the panics unwound
		m.Insert("c", 3, time.Second)
		require.Equal(t, 3, m.Len())
	})
}

func TestMap_RemoveExpired(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind Kind) {
		m, _ := newTestMap[int, int](t, kind)
		for i := range 100 {
			m.InsertAt(i, i, clock.Instant(i+1))
		}
		require.Equal(t, 40, m.RemoveExpired(40))
		require.Equal(t, 60, m.Len())
		require.Zero(t, m.RemoveExpired(40))

		for k := range m.Entries() {
			require.GreaterOrEqual(t, k, 40)
		}

		m.Clear()
		require.Zero(t, m.Len())
	})
}

func TestMap_ManyKeys(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind Kind) {
		m, _ := newTestMap[string, int](t, kind)
		const n = 5_000
		for i := range n {
			m.InsertAt("key-"+strconv.Itoa(i), i, clock.Never)
		}
		require.Equal(t, n, m.Len())
		for i := range n {
			v, ok := m.Get("key-"+strconv.Itoa(i), 0)
			require.True(t, ok)
			require.Equal(t, i, v)
		}
		for i := 0; i < n; i += 2 {
			_, ok := m.Remove("key-" + strconv.Itoa(i))
			require.True(t, ok)
		}
		require.Equal(t, n/2, m.Len())
		require.Len(t, maps.Collect(m.All(0)), n/2)
	})
}

func TestMap_FloatKeys(t *testing.T) {
	forEachKind(t, func(t *testing.T, kind Kind) {
		m, _ := newTestMap[float64, string](t, kind)
		m.InsertAt(math.Copysign(0, -1), "zero", clock.Never)

		v, ok := m.Get(0, 0)
		require.True(t, ok)
		require.Equal(t, "zero", v)
	})
}

func TestMap_NaNKeys(t *testing.T) {
	nan := math.NaN()
	for kind, want := range map[Kind]struct {
		len int
		hit bool
	}{
		Ordered:  {len: 1, hit: true},
		Hash:     {len: 2, hit: false},
		FastHash: {len: 2, hit: false},
	} {
		t.Run(kind.String(), func(t *testing.T) {
			m, _ := newTestMap[float64, int](t, kind)
			m.InsertAt(nan, 1, clock.Never)
			m.InsertAt(nan, 2, clock.Never)

			require.Equal(t, want.len, m.Len())
			_, ok := m.Get(nan, 0)
			require.Equal(t, want.hit, ok)
		})
	}
}

func TestNew_Options(t *testing.T) {
	t.Run("default kind", func(t *testing.T) {
		m, err := New[string, int]()
		require.NoError(t, err)
		require.Equal(t, Hash, m.Kind())
		require.NotNil(t, m.Clock())
	})

	t.Run("invalid kind", func(t *testing.T) {
		_, err := New[string, int](WithKind(Kind(42)))
		require.ErrorIs(t, err, ErrInvalidKind)
		require.Panics(t, func() { MustNew[string, int](WithKind(0)) })
	})

	t.Run("hasher needs fasthash", func(t *testing.T) {
		_, err := New[string, int](WithKind(Ordered), WithHasher(XXHash()))
		require.ErrorIs(t, err, ErrHasherUnsupported)
	})

	t.Run("capacity", func(t *testing.T) {
		m, err := New[string, int](WithKind(FastHash), WithCapacity(1000))
		require.NoError(t, err)
		require.Zero(t, m.Len())
	})
}

func TestParseKind(t *testing.T) {
	for _, kind := range Kinds {
		parsed, err := ParseKind(kind.String())
		require.NoError(t, err)
		require.Equal(t, kind, parsed)
	}
	k, err := ParseKind(" BTree ")
	require.NoError(t, err)
	require.Equal(t, Ordered, k)

	_, err = ParseKind("skiplist")
	require.ErrorIs(t, err, ErrInvalidKind)
	require.Equal(t, "kind(9)", Kind(9).String())
}
