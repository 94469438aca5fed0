// Package notify dispatches scan completion notifications to delivery
// channels. Dispatch is asynchronous; a slow or failing channel never blocks
// or fails the scan that triggered it.
package notify

import (
	"context"
	"time"

	"clankervids/internal/usecase/ingest"
)

// Report is the channel-facing summary of a finished scan.
type Report struct {
	StartedAt  time.Time
	FinishedAt time.Time

	Fetched    int
	Added      int
	Duplicates int
	Errors     int

	// FailedSources lists sources whose listings could not be fetched
	FailedSources []string

	// Stopped is true when the scan ended early on a stop signal
	Stopped bool
}

// Duration returns how long the scan ran.
func (r Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// NewReport condenses a scan report into the notification summary.
func NewReport(scan *ingest.ScanReport) Report {
	r := Report{
		StartedAt:  scan.StartedAt,
		FinishedAt: scan.FinishedAt,
		Stopped:    scan.Stopped,
	}
	for _, src := range scan.Sources {
		r.Fetched += src.Fetched
		r.Added += src.Accepted
		r.Duplicates += src.Duplicates
		r.Errors += src.Errors
		if src.FetchFailed {
			r.FailedSources = append(r.FailedSources, src.Name)
		}
	}
	return r
}

// Channel is a notification delivery channel. Implementations handle their
// own rate limiting and retries and must be safe for concurrent use.
type Channel interface {
	// Name identifies the channel in logs and health checks
	Name() string

	// IsEnabled reports whether the channel is configured to deliver.
	// Disabled channels are skipped during dispatch.
	IsEnabled() bool

	// Send delivers one report. A non-nil error means delivery failed
	// after the channel's own retries.
	Send(ctx context.Context, report Report) error
}
