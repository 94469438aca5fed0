package metrics

import (
	"strconv"
	"time"
)

// RecordHTTPRequest records one completed HTTP request.
// The path should be normalized before calling to keep label cardinality bounded.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

// Candidate outcomes reported by the scan pipeline.
const (
	OutcomeAccepted  = "accepted"
	OutcomeRejected  = "rejected"
	OutcomeExcluded  = "excluded"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
)

// RecordCandidate records one processed candidate for a source.
func RecordCandidate(source, outcome string) {
	CandidatesSeenTotal.WithLabelValues(source, outcome).Inc()
}

// RecordVideoIngested records a stored video by source and category.
func RecordVideoIngested(source, category string) {
	VideosIngestedTotal.WithLabelValues(source, category).Inc()
}

// RecordSourceScan records the duration of a completed source scan.
func RecordSourceScan(source string, duration time.Duration) {
	SourceScanDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordSourceScanError records a scan failure.
// errorType should name the failing stage (e.g. "fetch", "store", "config").
func RecordSourceScanError(source, errorType string) {
	SourceScanErrors.WithLabelValues(source, errorType).Inc()
}

// RecordThumbnailProbe records a thumbnail probe result.
// result is one of "hit", "miss", "fallback", "error".
func RecordThumbnailProbe(result string) {
	ThumbnailProbesTotal.WithLabelValues(result).Inc()
}

// RecordScanRun records a completed scan run.
func RecordScanRun(result string) {
	ScanRunsTotal.WithLabelValues(result).Inc()
}

// UpdateVideosTotal updates the active-video gauge for one category.
// This should be refreshed after each scan run.
func UpdateVideosTotal(category string, count int) {
	VideosTotal.WithLabelValues(category).Set(float64(count))
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "list_active", "insert_video").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
