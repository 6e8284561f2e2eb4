package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/ttlmap-go/core/cache"
	"github.com/codewandler/ttlmap-go/core/metrics"
)

// cacheMetrics implements cache.Metrics using Prometheus.
type cacheMetrics struct {
	hits         *prometheus.CounterVec
	misses       *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	loads        *prometheus.CounterVec
}

// NewCacheMetrics creates a new Prometheus implementation of cache.Metrics.
func NewCacheMetrics(reg prometheus.Registerer) cache.Metrics {
	m := &cacheMetrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttlmap_cache_hits_total",
			Help: "Total number of cache hits",
		}, []string{"cache"}),

		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttlmap_cache_misses_total",
			Help: "Total number of cache misses, expired entries included",
		}, []string{"cache"}),

		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ttlmap_cache_load_duration_seconds",
			Help:    "Read-through load latency in seconds",
			Buckets: defaultBuckets,
		}, []string{"cache"}),

		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttlmap_cache_loads_total",
			Help: "Total number of read-through loads",
		}, []string{"cache", "success"}),
	}

	reg.MustRegister(m.hits, m.misses, m.loadDuration, m.loads)
	return m
}

func (m *cacheMetrics) Hit(name string) {
	m.hits.WithLabelValues(name).Inc()
}

func (m *cacheMetrics) Miss(name string) {
	m.misses.WithLabelValues(name).Inc()
}

func (m *cacheMetrics) LoadDuration(name string) metrics.Timer {
	return newTimer(m.loadDuration.WithLabelValues(name))
}

func (m *cacheMetrics) LoadCompleted(name string, success bool) {
	m.loads.WithLabelValues(name, boolToStr(success)).Inc()
}

var _ cache.Metrics = (*cacheMetrics)(nil)
