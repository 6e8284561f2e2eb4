// Package metrics holds the instrumentation primitives shared by the
// sweeper and the cache, so that neither depends on a concrete backend.
// See adapters/prometheus for the Prometheus implementation.
package metrics

import "time"

// Timer measures the duration of an operation. Call ObserveDuration when
// the operation completes to record the elapsed time.
type Timer interface {
	// ObserveDuration records the elapsed time since the timer was created.
	ObserveDuration()
}

// Observer receives raw durations, in seconds.
type Observer interface {
	Observe(seconds float64)
}

type observerTimer struct {
	o     Observer
	start time.Time
}

// NewTimer starts a Timer that reports to o.
func NewTimer(o Observer) Timer {
	return &observerTimer{o: o, start: time.Now()}
}

func (t *observerTimer) ObserveDuration() {
	t.o.Observe(time.Since(t.start).Seconds())
}
