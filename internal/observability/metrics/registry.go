// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Pipeline metrics track the scan-classify-store flow
var (
	// CandidatesSeenTotal counts fetched candidates by source and outcome.
	// Outcomes: accepted, rejected, excluded, duplicate, error
	CandidatesSeenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_candidates_total",
			Help: "Candidates processed during scans, by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	// VideosIngestedTotal counts videos stored, by source and category
	VideosIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_videos_ingested_total",
			Help: "Videos accepted and stored, by source and category",
		},
		[]string{"source", "category"},
	)

	// SourceScanDuration measures the duration of one source scan in seconds
	SourceScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "curator_source_scan_duration_seconds",
			Help:    "Duration of a single source scan in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"source"},
	)

	// SourceScanErrors counts scan failures by source and error type
	SourceScanErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_source_scan_errors_total",
			Help: "Scan failures by source and error type",
		},
		[]string{"source", "error_type"},
	)

	// ThumbnailProbesTotal counts thumbnail probe attempts by result.
	// Results: hit, miss, fallback, error
	ThumbnailProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_thumbnail_probes_total",
			Help: "Thumbnail probe attempts by result",
		},
		[]string{"result"},
	)

	// VideosTotal tracks the current number of active videos per category
	VideosTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "curator_videos_total",
			Help: "Current number of active videos per category",
		},
		[]string{"category"},
	)

	// ScanRunsTotal counts completed scan runs by result (success, partial, failure)
	ScanRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_scan_runs_total",
			Help: "Completed scan runs by result",
		},
		[]string{"result"},
	)
)

// Store metrics
var (
	// DBQueryDuration measures database query duration by operation
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)
