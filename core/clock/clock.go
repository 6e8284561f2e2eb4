// Package clock provides the time source used by the expiring map.
//
// Time is an explicit input to every expiration-sensitive read in
// [github.com/codewandler/ttlmap-go/core/ttlmap], so it is modelled as a
// plain unsigned [Instant] rather than a time.Time. Use [System] in
// production and [Manual] in tests.
package clock

import (
	"math"
	"sync"
	"time"
)

// Instant is a point in time, counted in nanoseconds since the Unix epoch.
type Instant uint64

// Never is an instant no clock ever reaches. Entries expiring at Never are
// live forever.
const Never = Instant(math.MaxUint64)

// FromTime converts t to an Instant. Times before the epoch map to 0.
func FromTime(t time.Time) Instant {
	ns := t.UnixNano()
	if ns < 0 {
		return 0
	}
	return Instant(ns)
}

// Time converts i back to a time.Time in the local location.
func (i Instant) Time() time.Time {
	if i > math.MaxInt64 {
		return time.Unix(0, math.MaxInt64)
	}
	return time.Unix(0, int64(i))
}

// Add returns i+d, saturating at 0 and at Never.
func (i Instant) Add(d time.Duration) Instant {
	if d >= 0 {
		if uint64(d) > uint64(Never-i) {
			return Never
		}
		return i + Instant(d)
	}
	neg := uint64(-d)
	if neg > uint64(i) {
		return 0
	}
	return i - Instant(neg)
}

// Sub returns the duration i-j, clamped to the time.Duration range.
func (i Instant) Sub(j Instant) time.Duration {
	if i >= j {
		if diff := uint64(i - j); diff <= math.MaxInt64 {
			return time.Duration(diff)
		}
		return time.Duration(math.MaxInt64)
	}
	if diff := uint64(j - i); diff <= math.MaxInt64 {
		return -time.Duration(diff)
	}
	return time.Duration(math.MinInt64)
}

// Before reports whether i is strictly before j.
func (i Instant) Before(j Instant) bool { return i < j }

func (i Instant) String() string {
	if i == Never {
		return "never"
	}
	return i.Time().UTC().Format(time.RFC3339Nano)
}

// Clock yields the current instant. Implementations must never go backwards.
type Clock interface {
	Now() Instant
}

// Func adapts a plain function to Clock.
type Func func() Instant

func (f Func) Now() Instant { return f() }

type systemClock struct {
	mu   sync.Mutex
	last Instant
}

// System returns a clock backed by time.Now. Readings are clamped so that
// a wall-clock step backwards never moves the returned instant backwards.
func System() Clock { return &systemClock{} }

func (c *systemClock) Now() Instant {
	now := FromTime(time.Now())
	c.mu.Lock()
	defer c.mu.Unlock()
	if now < c.last {
		return c.last
	}
	c.last = now
	return now
}

// Manual is a clock that only moves when told to. It is safe for
// concurrent use.
type Manual struct {
	mu  sync.Mutex
	now Instant
}

// NewManual returns a manual clock positioned at start.
func NewManual(start Instant) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() Instant {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to at. Moving backwards is ignored.
func (m *Manual) Set(at Instant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if at > m.now {
		m.now = at
	}
}

// Advance moves the clock forward by d and returns the new instant.
// Negative durations are ignored.
func (m *Manual) Advance(d time.Duration) Instant {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > 0 {
		m.now = m.now.Add(d)
	}
	return m.now
}

var (
	_ Clock = (*systemClock)(nil)
	_ Clock = (*Manual)(nil)
	_ Clock = Func(nil)
)
