package sweep

import "github.com/codewandler/ttlmap-go/core/metrics"

// Metrics records sweeper activity.
type Metrics interface {
	// SweepDuration returns a timer measuring one pass.
	SweepDuration(name string) metrics.Timer
	// SweepCompleted records the outcome of one pass.
	SweepCompleted(name string, purged, remaining int)
}

type nopMetrics struct{}

func (nopMetrics) SweepDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) SweepCompleted(string, int, int)    {}

// NopMetrics returns Metrics that record nothing.
func NopMetrics() Metrics { return nopMetrics{} }
