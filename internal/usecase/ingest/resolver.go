// Package ingest implements the scan pipeline: fetch candidates from
// sources, classify them, drop duplicates, and store what survives.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"clankervids/internal/infra/source"
	"clankervids/internal/repository"
)

// titlePrefixLength is how many leading characters of a title participate in
// the fuzzy re-post check. Long enough to be distinctive, short enough to
// catch re-posts with trailing edits ("... [OC]", emoji, etc.).
const titlePrefixLength = 50

// Resolver decides whether a candidate is already known. Identity checks run
// strongest first: platform id, then exact origin URL, then the fuzzy title
// prefix. The prefix check is global across sources and categories; the same
// clip re-posted to another subreddit is still the same clip.
type Resolver struct {
	repo repository.VideoRepository
}

// NewResolver creates a resolver backed by the given repository.
func NewResolver(repo repository.VideoRepository) *Resolver {
	return &Resolver{repo: repo}
}

// Exists reports whether the candidate matches a stored video.
func (r *Resolver) Exists(ctx context.Context, c source.Candidate) (bool, error) {
	if c.ExternalID != "" {
		found, err := r.repo.ExistsByExternalID(ctx, c.ExternalID)
		if err != nil {
			return false, fmt.Errorf("resolve external id: %w", err)
		}
		if found {
			return true, nil
		}
	}

	if c.OriginURL != "" {
		found, err := r.repo.ExistsByOriginURL(ctx, c.OriginURL)
		if err != nil {
			return false, fmt.Errorf("resolve origin url: %w", err)
		}
		if found {
			return true, nil
		}
	}

	found, err := r.repo.ExistsByTitlePrefix(ctx, TitlePrefix(c.Title))
	if err != nil {
		return false, fmt.Errorf("resolve title prefix: %w", err)
	}
	return found, nil
}

// TitlePrefix normalizes a title into its dedup key: the first 50
// characters, lowercased and trimmed.
func TitlePrefix(title string) string {
	runes := []rune(title)
	if len(runes) > titlePrefixLength {
		runes = runes[:titlePrefixLength]
	}
	return strings.TrimSpace(strings.ToLower(string(runes)))
}
