// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BatchUnitsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batch_units_processed_total",
			Help: "Total number of batch units processed, by unit kind",
		},
		[]string{"unit"},
	)

	BatchUnitsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batch_units_failed_total",
			Help: "Total number of batch units that failed after retries",
		},
		[]string{"unit", "error_code"},
	)

	BatchEntitiesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batch_entities_skipped_total",
			Help: "Entities skipped inside a batch due to per-entity failures",
		},
		[]string{"unit", "error_code"},
	)

	BatchUnitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "batch_unit_duration_seconds",
			Help: "Duration of batch unit processing in seconds",
		},
		[]string{"unit"},
	)

	MatchesComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matches_computed_total",
			Help: "Total number of (user, job) match scores computed, by quality level",
		},
		[]string{"level"},
	)

	ContextsRefreshed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contexts_refreshed_total",
			Help: "Total number of AI context records refreshed, by entity kind",
		},
		[]string{"kind"},
	)

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
)
