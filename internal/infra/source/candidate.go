// Package source provides adapters that discover video candidates from
// external platforms. Each adapter normalizes platform payloads into the
// common Candidate shape consumed by the ingest pipeline.
package source

import (
	"context"
	"time"
)

// Candidate is a discovered video before classification and deduplication.
type Candidate struct {
	Title        string
	Description  string
	Creator      string
	VideoURL     string
	ThumbnailURL string

	// ExternalID is the platform video id (YouTube's 11-character id) when
	// one could be derived, empty otherwise.
	ExternalID string

	// OriginURL is the URL of the post or feed entry the candidate came
	// from. It is one of the dedup natural keys and must be stable across
	// fetches.
	OriginURL string

	Duration   float64
	Views      int64
	UploadDate time.Time
}

// Page selects which slice of a source listing to fetch.
type Page struct {
	// Listing is the platform sort order ("top", "hot", "new").
	Listing string

	// Window is the time filter applied to ranked listings ("month", "all").
	// Ignored by sources without ranked listings.
	Window string

	// Limit caps the number of candidates returned.
	Limit int
}

// Source fetches candidate listings from one external platform endpoint.
type Source interface {
	// Name identifies the source in logs, metrics, and scan reports.
	Name() string

	// Fetch returns up to page.Limit candidates. A non-nil error means the
	// listing could not be retrieved at all; partial pages are returned
	// without error.
	Fetch(ctx context.Context, page Page) ([]Candidate, error)
}
