package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())

	m.ObserveProviderCall("newsapi", OutcomeOK, 3, 120*time.Millisecond)
	m.ObserveProviderCall("newsapi", "timeout", 0, 15*time.Second)
	m.ObserveCorroboration(true, time.Second)
	m.ObserveCorroboration(false, time.Second)
	m.ObserveCorroboration(false, time.Second)
	m.ObserveCacheLookup("hit")

	assert.InDelta(t, 1, testutil.ToFloat64(m.ProviderRequests.WithLabelValues("newsapi", OutcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ProviderRequests.WithLabelValues("newsapi", "timeout")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.ProviderResults.WithLabelValues("newsapi")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.Corroborations.WithLabelValues("false")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")), 0)
}

func TestMetrics_SkippedCallsHaveNoLatency(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveProviderCall("guardian", OutcomeSkipped, 0, 0)
	m.ObserveProviderCall("newsapi", OutcomeOK, 2, 300*time.Millisecond)

	assert.InDelta(t, 1, testutil.ToFloat64(m.ProviderRequests.WithLabelValues("guardian", OutcomeSkipped)), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	var samples uint64
	var providers []string
	for _, f := range families {
		if f.GetName() != "truthlens_provider_request_duration_seconds" {
			continue
		}
		for _, metric := range f.GetMetric() {
			samples += metric.GetHistogram().GetSampleCount()
			for _, l := range metric.GetLabel() {
				providers = append(providers, l.GetValue())
			}
		}
	}
	assert.Equal(t, uint64(1), samples)
	assert.Equal(t, []string{"newsapi"}, providers)
}

func TestMetrics_NilIsNoOp(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveProviderCall("x", OutcomeOK, 1, time.Millisecond)
		m.ObserveCorroboration(true, time.Millisecond)
		m.ObserveCacheLookup("miss")
	})
}
