package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"clankervids/internal/pkg/config"
)

// WorkerMetrics provides Prometheus metrics for the scan worker: the
// standard configuration metrics plus cron job execution tracking.
type WorkerMetrics struct {
	*config.ConfigMetrics

	// CronJobRunsTotal counts cron job runs by status (success/failure).
	CronJobRunsTotal *prometheus.CounterVec

	// CronJobDurationSeconds measures scan job duration.
	CronJobDurationSeconds prometheus.Histogram

	// CronJobVideosAddedTotal counts videos added across all job runs.
	CronJobVideosAddedTotal prometheus.Counter

	// CronJobLastSuccessTimestamp is the Unix time of the last successful run.
	CronJobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates and auto-registers the worker metrics.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of cron job runs by status (success/failure)",
		}, []string{"status"}),

		CronJobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of cron job execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		CronJobVideosAddedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_cron_job_videos_added_total",
			Help: "Total number of videos added across all cron job runs",
		}),

		CronJobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful cron job run",
		}),
	}
}

// RecordJobRun increments the job run counter for "success" or "failure".
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.CronJobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes a job duration in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

// RecordVideosAdded adds to the total of videos ingested by scheduled runs.
func (m *WorkerMetrics) RecordVideosAdded(count int) {
	m.CronJobVideosAddedTotal.Add(float64(count))
}

// RecordLastSuccess records the current time as the last successful run.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
}
