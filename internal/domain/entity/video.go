// Package entity defines the core domain entities and validation logic for the
// application. It contains the fundamental business objects such as Video, along
// with their validation rules and domain-specific errors.
package entity

import (
	"time"
	"unicode/utf8"
)

// Category classifies a video into one of the fixed content buckets.
type Category string

const (
	// CategoryFails holds malfunction, crash, and blooper content.
	CategoryFails Category = "fails"
	// CategoryBattles holds combat and competition content.
	CategoryBattles Category = "battles"
	// CategoryHighlights is the default bucket for everything else.
	CategoryHighlights Category = "highlights"
)

// Valid reports whether the category is one of the known buckets.
func (c Category) Valid() bool {
	switch c {
	case CategoryFails, CategoryBattles, CategoryHighlights:
		return true
	}
	return false
}

// Video status values. The pipeline never deletes rows; retirement is a
// status change only.
const (
	StatusActive   = "active"
	StatusPending  = "pending"
	StatusRejected = "rejected"
)

// Video represents a curated short-form video in the system.
// ID is an opaque identifier generated at acceptance. ExternalID and OriginURL
// are natural keys taken from the feed and are used for duplicate detection
// only, never exposed as primary identity.
type Video struct {
	ID           string
	Title        string
	Description  string
	Creator      string
	Category     Category
	VideoURL     string
	ThumbnailURL string
	ExternalID   string
	OriginURL    string
	Duration     float64

	// Engagement counters. Views is seeded from the feed's score at
	// acceptance; the reaction counters are mutated by the read-side API.
	Views        int64
	Clanks       int64
	EpicBots     int64
	SystemErrors int64

	Status     string
	CreatedAt  time.Time
	UploadDate time.Time
}

// maxTitleLength bounds stored titles, counted in runes so multibyte titles
// get the same budget as ASCII ones. Feeds occasionally carry walls of text.
const maxTitleLength = 200

// Validate checks the invariants required before a video may be persisted.
func (v *Video) Validate() error {
	if v.ID == "" {
		return &ValidationError{Field: "id", Message: "id is required"}
	}
	if v.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if utf8.RuneCountInString(v.Title) > maxTitleLength {
		return &ValidationError{Field: "title", Message: "title too long"}
	}
	if !v.Category.Valid() {
		return &ValidationError{Field: "category", Message: "unknown category: " + string(v.Category)}
	}
	if err := ValidateURL(v.VideoURL); err != nil {
		return err
	}
	switch v.Status {
	case StatusActive, StatusPending, StatusRejected:
	default:
		return &ValidationError{Field: "status", Message: "unknown status: " + v.Status}
	}
	return nil
}
