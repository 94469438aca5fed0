package source

import (
	"context"
	"log/slog"
)

// YouTubeSearchSource discovers candidates by running YouTube searches
// through yt-dlp. Unlike the listing sources it has no natural ordering, so
// Page.Listing and Page.Window are ignored.
type YouTubeSearchSource struct {
	name    string
	queries []string
	client  *YtDlpClient
}

// NewYouTubeSearchSource creates a source running the given search queries.
func NewYouTubeSearchSource(name string, queries []string, client *YtDlpClient) *YouTubeSearchSource {
	return &YouTubeSearchSource{name: name, queries: queries, client: client}
}

// Name implements Source.
func (s *YouTubeSearchSource) Name() string { return s.name }

// Fetch runs every query and looks up metadata for each hit. A failing
// lookup drops that one candidate; a failing search drops that one query.
// Only a source with zero queries errors.
func (s *YouTubeSearchSource) Fetch(ctx context.Context, page Page) ([]Candidate, error) {
	perQuery := page.Limit
	if len(s.queries) > 1 {
		perQuery = page.Limit / len(s.queries)
		if perQuery < 1 {
			perQuery = 1
		}
	}

	var candidates []Candidate
	for _, query := range s.queries {
		if err := ctx.Err(); err != nil {
			return candidates, err
		}

		urls, err := s.client.Search(ctx, query, perQuery)
		if err != nil {
			slog.Warn("youtube search failed",
				slog.String("source", s.name),
				slog.String("query", query),
				slog.Any("error", err))
			continue
		}

		for _, url := range urls {
			meta, err := s.client.Lookup(ctx, url)
			if err != nil {
				slog.Warn("youtube lookup failed",
					slog.String("source", s.name),
					slog.String("url", url),
					slog.Any("error", err))
				continue
			}
			candidates = append(candidates, meta.Candidate())
		}
	}
	return candidates, nil
}
