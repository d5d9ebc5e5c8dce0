// Package metrics provides the Prometheus collectors for provider calls,
// corroborations and the result cache.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every truthlens metric.
const Namespace = "truthlens"

// Provider call outcomes other than an error kind.
const (
	OutcomeOK      = "ok"
	OutcomeEmpty   = "empty"
	OutcomeSkipped = "skipped"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	ProviderRequests *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec
	ProviderResults  *prometheus.CounterVec

	Corroborations      *prometheus.CounterVec
	CorroborateDuration prometheus.Histogram

	CacheLookups *prometheus.CounterVec
}

// New creates and registers the collectors on reg, or on the default
// registerer when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	m := &Metrics{}

	m.ProviderRequests = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Provider search calls by outcome",
		},
		[]string{"provider", "outcome"},
	)
	m.ProviderLatency = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Provider search call latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"provider"},
	)
	m.ProviderResults = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "provider",
			Name:      "candidates_total",
			Help:      "Candidates returned by each provider",
		},
		[]string{"provider"},
	)

	m.Corroborations = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "engine",
			Name:      "corroborations_total",
			Help:      "Completed corroborations by whether any reference was found",
		},
		[]string{"found"},
	)
	m.CorroborateDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "engine",
			Name:      "corroborate_duration_seconds",
			Help:      "End-to-end corroboration latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	m.CacheLookups = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Result cache lookups by result",
		},
		[]string{"result"},
	)

	return m
}

// ObserveProviderCall records one provider call. Skipped calls never ran, so
// they count as requests but add no latency sample.
func (m *Metrics) ObserveProviderCall(provider, outcome string, candidates int, d time.Duration) {
	if m == nil {
		return
	}
	m.ProviderRequests.WithLabelValues(provider, outcome).Inc()
	if outcome != OutcomeSkipped {
		m.ProviderLatency.WithLabelValues(provider).Observe(d.Seconds())
	}
	if candidates > 0 {
		m.ProviderResults.WithLabelValues(provider).Add(float64(candidates))
	}
}

// ObserveCorroboration records a finished corroboration.
func (m *Metrics) ObserveCorroboration(found bool, d time.Duration) {
	if m == nil {
		return
	}
	label := "false"
	if found {
		label = "true"
	}
	m.Corroborations.WithLabelValues(label).Inc()
	m.CorroborateDuration.Observe(d.Seconds())
}

// ObserveCacheLookup records a cache hit, miss or error.
func (m *Metrics) ObserveCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}
