package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"

	"gfdeals/pkg/cache"
	"gfdeals/pkg/monitoring"
)

// Metrics groups the pipeline collectors. A nil *Metrics records nothing.
type Metrics struct {
	Runs            *prometheus.CounterVec
	Candidates      *prometheus.CounterVec
	FetchQueries    *prometheus.CounterVec
	FetchCandidates *prometheus.CounterVec
	CacheEvents     *prometheus.CounterVec
	RunDuration     *prometheus.HistogramVec
	PersistedDeals  *prometheus.GaugeVec
}

// NewMetrics registers the pipeline collectors on mc.
func NewMetrics(mc *monitoring.MetricsCollector) *Metrics {
	return &Metrics{
		Runs:            mc.NewCounter("pipeline_runs_total", "Pipeline runs by outcome", []string{"outcome"}),
		Candidates:      mc.NewCounter("pipeline_candidates_total", "Candidates surviving each pipeline stage", []string{"stage"}),
		FetchQueries:    mc.NewCounter("fetch_queries_total", "Search queries issued per channel", []string{"channel"}),
		FetchCandidates: mc.NewCounter("fetch_candidates_total", "Candidates returned per channel", []string{"channel"}),
		CacheEvents:     mc.NewCounter("fetch_cache_events_total", "Fetch cache lookups by outcome", []string{"channel", "event"}),
		RunDuration:     mc.NewHistogram("pipeline_run_duration_seconds", "Pipeline run duration", []string{"outcome"}, []float64{5, 15, 30, 60, 120, 300, 600, 1200}),
		PersistedDeals:  mc.NewGauge("persisted_deals", "Deals in the store after the last run", nil),
	}
}

func (m *Metrics) run(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(outcome).Inc()
	m.RunDuration.WithLabelValues(outcome).Observe(seconds)
}

func (m *Metrics) stage(stage string, n int) {
	if m == nil {
		return
	}
	m.Candidates.WithLabelValues(stage).Add(float64(n))
}

func (m *Metrics) fetched(channel string, n int) {
	if m == nil {
		return
	}
	m.FetchQueries.WithLabelValues(channel).Inc()
	m.FetchCandidates.WithLabelValues(channel).Add(float64(n))
}

func (m *Metrics) persisted(n int) {
	if m == nil {
		return
	}
	m.PersistedDeals.WithLabelValues().Set(float64(n))
}

// CacheHooks reports fetch cache outcomes for channel.
func (m *Metrics) CacheHooks(channel string) cache.MetricsHooks {
	if m == nil {
		return cache.MetricsHooks{}
	}
	count := func(event string) func(string) {
		return func(string) { m.CacheEvents.WithLabelValues(channel, event).Inc() }
	}
	return cache.MetricsHooks{
		OnHit:   count("hit"),
		OnMiss:  count("miss"),
		OnStale: count("stale"),
	}
}
