package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/ttlmap-go/core/metrics"
	"github.com/codewandler/ttlmap-go/core/sweep"
)

// sweepMetrics implements sweep.Metrics using Prometheus.
type sweepMetrics struct {
	duration  *prometheus.HistogramVec
	runs      *prometheus.CounterVec
	purged    *prometheus.CounterVec
	remaining *prometheus.GaugeVec
}

// NewSweepMetrics creates a new Prometheus implementation of sweep.Metrics.
func NewSweepMetrics(reg prometheus.Registerer) sweep.Metrics {
	m := &sweepMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ttlmap_sweep_duration_seconds",
			Help:    "Duration of one sweep pass in seconds",
			Buckets: defaultBuckets,
		}, []string{"sweeper"}),

		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttlmap_sweeps_total",
			Help: "Total number of sweep passes",
		}, []string{"sweeper"}),

		purged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttlmap_sweep_purged_total",
			Help: "Total number of expired entries removed by sweeps",
		}, []string{"sweeper"}),

		remaining: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ttlmap_entries",
			Help: "Entries stored after the last sweep",
		}, []string{"sweeper"}),
	}

	reg.MustRegister(m.duration, m.runs, m.purged, m.remaining)
	return m
}

func (m *sweepMetrics) SweepDuration(name string) metrics.Timer {
	return newTimer(m.duration.WithLabelValues(name))
}

func (m *sweepMetrics) SweepCompleted(name string, purged, remaining int) {
	m.runs.WithLabelValues(name).Inc()
	m.purged.WithLabelValues(name).Add(float64(purged))
	m.remaining.WithLabelValues(name).Set(float64(remaining))
}

var _ sweep.Metrics = (*sweepMetrics)(nil)
