// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReplyRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_reply_requests_total",
			Help: "Total number of reply requests by outcome",
		},
		[]string{"source", "outcome"},
	)

	ReplyRequestsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "review_reply_requests_active",
			Help: "Number of reply requests currently in the pipeline",
		},
		[]string{"source"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "review_reply_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
		[]string{"stage"},
	)

	StageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_reply_stage_failures_total",
			Help: "Total number of stage failures by error code",
		},
		[]string{"stage", "error_code"},
	)

	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_completion_duration_seconds",
			Help:    "Duration of completion API calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
		[]string{"provider", "mode", "outcome"},
	)

	CompletionRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_completion_retries_total",
			Help: "Total number of completion call retries",
		},
		[]string{"provider"},
	)

	SentimentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_sentiments_total",
			Help: "Accepted analyses by sentiment",
		},
		[]string{"sentiment"},
	)

	AnalysisRepairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_analysis_repairs_total",
			Help: "Corrections applied to model analyses",
		},
		[]string{"kind"},
	)

	SignOffRepairs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "review_reply_signoff_repairs_total",
			Help: "Drafts whose sign-off had to be appended or normalized",
		},
	)

	AvoidPhraseHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_reply_avoid_phrase_hits_total",
			Help: "Drafts containing a phrase from the avoid list",
		},
		[]string{"phrase"},
	)

	EscalationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_escalations_total",
			Help: "Escalation notifications by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)
)
