package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsProcessedTotal, jobDurationSeconds, jobsRequeuedTotal) }

var jobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "jobs_processed_total",
		Help: "Total number of enrichment jobs processed, labeled by type and final status.",
	},
	[]string{"type", "status"}, // 'succeeded', 'failed', 'queued' (requeue)
)

var jobsRequeuedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "jobs_requeued_total",
		Help: "Total number of jobs sent back to the queue for another attempt.",
	},
	[]string{"type"},
)

var jobDurationSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "job_duration_seconds",
		Help:    "Wall-clock duration of one job handling pass.",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 1800},
	},
	[]string{"type"},
)

func IncJobProcessed(jobType, status string) {
	jobsProcessedTotal.WithLabelValues(norm(jobType), norm(status)).Inc()
}

func IncJobRequeued(jobType string) {
	jobsRequeuedTotal.WithLabelValues(norm(jobType)).Inc()
}

func ObserveJobDuration(jobType string, seconds float64) {
	jobDurationSeconds.WithLabelValues(norm(jobType)).Observe(seconds)
}
