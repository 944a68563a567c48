// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_worker_jobs_completed_total",
			Help: "Total number of jobs completed per loan processing task",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_worker_jobs_failed_total",
			Help: "Total number of jobs failed per loan processing task",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "loan_worker_job_duration_seconds",
			Help: "Duration of job processing in seconds per loan processing task",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "loan_worker_jobs_active",
			Help: "Number of jobs currently in flight per loan processing task",
		},
		[]string{"task_type"},
	)

	DecisionsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_decisions_issued_total",
			Help: "Loan decisions issued by outcome and program",
		},
		[]string{"decision", "program"},
	)
)
