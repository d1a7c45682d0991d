// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recommendation outcomes.
const (
	OutcomeSingleSize    = "single_size"
	OutcomeMultipleSizes = "multiple_sizes"
	OutcomeCustomFit     = "custom_fit"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	SizingRecommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sizing_recommendations_total",
			Help: "Size recommendations by media type and outcome",
		},
		[]string{"media_type", "outcome"},
	)

	SizingLengthOutOfRange = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sizing_length_out_of_range_total",
			Help: "Length recommendations that fell back to the nearest band",
		},
		[]string{"media_type"},
	)

	CatalogCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_lookups_total",
			Help: "Size table cache lookups by result",
		},
		[]string{"result"},
	)
)

// Outcome classifies a recommendation by how many sizes matched.
func Outcome(matches int) string {
	switch {
	case matches == 0:
		return OutcomeCustomFit
	case matches > 1:
		return OutcomeMultipleSizes
	default:
		return OutcomeSingleSize
	}
}

// RecordRecommendation counts one recommendation.
func RecordRecommendation(mediaType string, matches int, lengthOutOfRange bool) {
	SizingRecommendations.WithLabelValues(mediaType, Outcome(matches)).Inc()
	if lengthOutOfRange {
		SizingLengthOutOfRange.WithLabelValues(mediaType).Inc()
	}
}
