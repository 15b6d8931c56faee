package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Analysis run metrics
var (
	// AnalysisRunsTotal tracks analysis runs by outcome (ok, cached, invalid, fetch_error, error)
	AnalysisRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_runs_total",
			Help: "Total analysis runs by status",
		},
		[]string{"status"},
	)

	// AnalysisRunDuration tracks end-to-end run latency in seconds
	AnalysisRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_run_duration_seconds",
			Help:    "Analysis run duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// ItemsScoredTotal tracks scored posts and comments by kind
	ItemsScoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "items_scored_total",
			Help: "Total items scored by kind",
		},
		[]string{"kind"},
	)

	// ItemsDegradedTotal tracks items that fell back to a neutral score
	ItemsDegradedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "items_degraded_total",
			Help: "Total items scored as neutral after an estimator failure",
		},
	)

	// ItemsByLabelTotal tracks the sentiment label distribution
	ItemsByLabelTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "items_by_label_total",
			Help: "Total scored items by sentiment label",
		},
		[]string{"label"},
	)
)

// Collaborator metrics
var (
	// FetchDuration tracks upstream fetch latency by source
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fetch_duration_seconds",
			Help:    "Upstream fetch duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"},
	)

	// ReportCacheTotal tracks cache lookups by result (hit, miss, error)
	ReportCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_cache_total",
			Help: "Report cache lookups by result",
		},
		[]string{"result"},
	)

	// SinkWritesTotal tracks report sink writes by sink and status
	SinkWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sink_writes_total",
			Help: "Report sink writes by sink and status",
		},
		[]string{"sink", "status"},
	)

	// NarrativesTotal tracks generated narratives by source (llm, rule-based, none)
	NarrativesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "narratives_total",
			Help: "Generated narratives by source",
		},
		[]string{"source"},
	)

	// LLMHealthy is 1 while the LLM endpoint passes health checks
	LLMHealthy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "llm_healthy",
			Help: "Whether the LLM endpoint is currently healthy (1) or not (0)",
		},
	)
)
