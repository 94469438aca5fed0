package source

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"clankervids/internal/resilience/circuitbreaker"
	"clankervids/internal/resilience/retry"
)

// YouTubeRSSSource fetches candidates from a YouTube channel's RSS feed.
// Channel feeds carry the latest 15 uploads, which is enough for sources
// scanned several times a day.
type YouTubeRSSSource struct {
	name     string
	feedURL  string
	client   *http.Client
	breaker  *circuitbreaker.CircuitBreaker
	retryCfg retry.Config
}

// NewYouTubeRSSSource creates a source for one channel feed URL
// (https://www.youtube.com/feeds/videos.xml?channel_id=...).
func NewYouTubeRSSSource(name, feedURL string, client *http.Client) *YouTubeRSSSource {
	return &YouTubeRSSSource{
		name:     name,
		feedURL:  feedURL,
		client:   client,
		breaker:  circuitbreaker.New(circuitbreaker.ListingConfig("youtube-rss-" + name)),
		retryCfg: retry.FeedFetchConfig(),
	}
}

// Name implements Source.
func (s *YouTubeRSSSource) Name() string { return s.name }

// Fetch retrieves and parses the channel feed. Page.Listing and Page.Window
// are ignored; RSS feeds have a single fixed ordering.
func (s *YouTubeRSSSource) Fetch(ctx context.Context, page Page) ([]Candidate, error) {
	var feed *gofeed.Feed

	retryErr := retry.WithBackoff(ctx, s.retryCfg, func() error {
		cbResult, err := s.breaker.Execute(func() (interface{}, error) {
			return s.doFetch(ctx)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("youtube rss circuit breaker open, request rejected",
					slog.String("source", s.name),
					slog.String("state", s.breaker.State().String()))
			}
			return err
		}
		feed = cbResult.(*gofeed.Feed)
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	limit := page.Limit
	if limit <= 0 || limit > len(feed.Items) {
		limit = len(feed.Items)
	}

	candidates := make([]Candidate, 0, limit)
	for _, item := range feed.Items[:limit] {
		id := ExtractYouTubeID(item.Link)
		if id == "" {
			continue
		}

		c := Candidate{
			Title:       item.Title,
			Description: item.Description,
			Creator:     "@" + feed.Title,
			VideoURL:    WatchURL(id),
			ExternalID:  id,
			OriginURL:   item.Link,
		}
		if item.PublishedParsed != nil {
			c.UploadDate = *item.PublishedParsed
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// doFetch performs the actual feed fetch without retry or circuit breaker.
func (s *YouTubeRSSSource) doFetch(ctx context.Context) (*gofeed.Feed, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = curatorUserAgent
	fp.Client = s.client
	return fp.ParseURLWithContext(s.feedURL, ctx)
}
