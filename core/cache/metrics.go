package cache

import "github.com/codewandler/ttlmap-go/core/metrics"

// Metrics records cache activity, labelled by cache name.
type Metrics interface {
	Hit(name string)
	Miss(name string)
	LoadDuration(name string) metrics.Timer
	LoadCompleted(name string, success bool)
}

type nopMetrics struct{}

func (nopMetrics) Hit(string)                        {}
func (nopMetrics) Miss(string)                       {}
func (nopMetrics) LoadDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) LoadCompleted(string, bool)        {}

// NopMetrics returns Metrics that record nothing.
func NopMetrics() Metrics { return nopMetrics{} }
