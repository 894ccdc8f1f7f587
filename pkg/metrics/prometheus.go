package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics holds all Prometheus metrics for the evolution engine
type PrometheusMetrics struct {
	// Run metrics
	RunsTotal     *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	LineagesTotal prometheus.Counter

	// Generation metrics
	GenerationsTotal *prometheus.CounterVec
	PromotionsTotal  prometheus.Counter
	SkipsTotal       *prometheus.CounterVec
	BestComposite    *prometheus.GaugeVec

	// Capability metrics
	CapabilityRequestsTotal *prometheus.CounterVec
	CapabilityLatency       *prometheus.HistogramVec
	RetriesTotal            *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
}

// NewPrometheusMetrics creates a new Prometheus metrics instance
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		RunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weaver_runs_total",
				Help: "Total number of evolution runs",
			},
			[]string{"status"},
		),

		RunDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "weaver_run_duration_seconds",
				Help:    "Evolution run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		LineagesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "weaver_lineages_total",
				Help: "Total number of finalized lineages",
			},
		),

		GenerationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weaver_generations_total",
				Help: "Total number of scored generations",
			},
			[]string{"origin"},
		),

		PromotionsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "weaver_promotions_total",
				Help: "Total number of offspring promoted to best-in-lineage",
			},
		),

		SkipsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weaver_skips_total",
				Help: "Total number of skipped generations",
			},
			[]string{"reason"},
		),

		BestComposite: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "weaver_best_composite_score",
				Help: "Best composite score per lineage",
			},
			[]string{"lineage_id"},
		),

		CapabilityRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weaver_capability_requests_total",
				Help: "Total number of external capability requests",
			},
			[]string{"capability", "status"},
		),

		CapabilityLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weaver_capability_latency_seconds",
				Help:    "External capability latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"capability"},
		),

		RetriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weaver_retries_total",
				Help: "Total number of capability retries",
			},
			[]string{"capability"},
		),

		CacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "weaver_eval_cache_hits_total",
				Help: "Total number of evaluation cache hits",
			},
		),

		CacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "weaver_eval_cache_misses_total",
				Help: "Total number of evaluation cache misses",
			},
		),
	}
}

// RecordRun records a completed run
func (m *PrometheusMetrics) RecordRun(status string, duration time.Duration) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(duration.Seconds())
}

// RecordLineage records a finalized lineage and its best composite score
func (m *PrometheusMetrics) RecordLineage(lineageID string, bestComposite float64) {
	m.LineagesTotal.Inc()
	m.BestComposite.WithLabelValues(lineageID).Set(bestComposite)
}

// RecordGeneration records a scored generation
func (m *PrometheusMetrics) RecordGeneration(origin string, promoted bool) {
	m.GenerationsTotal.WithLabelValues(origin).Inc()
	if promoted {
		m.PromotionsTotal.Inc()
	}
}

// RecordSkip records a skipped generation
func (m *PrometheusMetrics) RecordSkip(reason string) {
	m.SkipsTotal.WithLabelValues(reason).Inc()
}

// RecordCapabilityRequest records a capability request
func (m *PrometheusMetrics) RecordCapabilityRequest(capability, status string, duration time.Duration) {
	m.CapabilityRequestsTotal.WithLabelValues(capability, status).Inc()
	m.CapabilityLatency.WithLabelValues(capability).Observe(duration.Seconds())
}

// RecordRetry records a capability retry
func (m *PrometheusMetrics) RecordRetry(capability string) {
	m.RetriesTotal.WithLabelValues(capability).Inc()
}

// RecordCacheHit records an evaluation cache hit
func (m *PrometheusMetrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

// RecordCacheMiss records an evaluation cache miss
func (m *PrometheusMetrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}
