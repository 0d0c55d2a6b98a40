// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
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

	PipelineSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_pipeline_steps_total",
			Help: "Pipeline step outcomes by step and status",
		},
		[]string{"step", "status"},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assessment_pipeline_duration_seconds",
			Help:    "End-to-end duration of assessment processing",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"overall_status"},
	)

	AssessmentScores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assessment_scores",
			Help:    "Distribution of computed readiness scores (percent)",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"kind"},
	)
)

// ObserveJob records the outcome of one worker job. An empty errorCode marks success.
func ObserveJob(taskType string, start time.Time, errorCode string) {
	if errorCode != "" {
		WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
		return
	}
	WorkerJobsCompleted.WithLabelValues(taskType).Inc()
	WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
}

// ObserveScores records both readiness scores of a processed assessment.
func ObserveScores(transferability, personal float64) {
	AssessmentScores.WithLabelValues("company_transferability").Observe(transferability)
	AssessmentScores.WithLabelValues("personal_readiness").Observe(personal)
}
