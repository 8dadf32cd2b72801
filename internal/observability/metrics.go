package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "operation"},
	)
	AIReasoningSalvageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_reasoning_salvage_total",
			Help: "Completions recovered from a reasoning trace when the primary content was empty",
		},
		[]string{"provider"},
	)

	StageItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stage_items_total",
			Help: "Items processed per stage and outcome",
		},
		[]string{"stage", "outcome"},
	)
	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_stage_duration_seconds",
			Help:    "Wall-clock duration of one pipeline stage",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)

	// Match score distribution over non-failed analyses ([0,10]).
	MatchScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_match_score",
			Help:    "Distribution of match scores ([0,10])",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)
)

func InitMetrics() {
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(AIReasoningSalvageTotal)
	prometheus.MustRegister(StageItemsTotal)
	prometheus.MustRegister(StageDuration)
	prometheus.MustRegister(MatchScoreHistogram)
}

// StageItemDone records one finished item for a stage.
func StageItemDone(stage, outcome string) {
	StageItemsTotal.WithLabelValues(stage, outcome).Inc()
}
