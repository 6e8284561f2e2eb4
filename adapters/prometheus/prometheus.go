// Package prometheus provides Prometheus implementations of the metrics
// interfaces used by the sweeper and the expiring cache.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/ttlmap-go/core/metrics"
)

func newTimer(h prometheus.Observer) metrics.Timer {
	return metrics.NewTimer(h)
}

// Default histogram buckets for latency metrics (in seconds). Sweeps over
// small maps finish in microseconds, hence the low end.
var defaultBuckets = []float64{
	.00001, .0001, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5,
}

// AllMetrics holds Prometheus implementations for the sweeper and the cache.
type AllMetrics struct {
	Sweep *sweepMetrics
	Cache *cacheMetrics
}

// NewAllMetrics creates and registers every metric of this package.
func NewAllMetrics(reg prometheus.Registerer) *AllMetrics {
	return &AllMetrics{
		Sweep: NewSweepMetrics(reg).(*sweepMetrics),
		Cache: NewCacheMetrics(reg).(*cacheMetrics),
	}
}

func boolToStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
