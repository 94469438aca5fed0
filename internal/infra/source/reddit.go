package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"clankervids/internal/resilience/circuitbreaker"
	"clankervids/internal/resilience/retry"
)

const redditBaseURL = "https://www.reddit.com"

// curatorUserAgent identifies the curator to the platforms it scrapes.
// Reddit in particular throttles unidentified clients hard.
const curatorUserAgent = "clankervids-curator/1.0"

// RedditSource fetches candidates from one subreddit via Reddit's public
// JSON listing API.
type RedditSource struct {
	name      string
	subreddit string
	client    *http.Client
	limiter   *rate.Limiter
	breaker   *circuitbreaker.CircuitBreaker
	retryCfg  retry.Config
	baseURL   string
}

// NewRedditSource creates a source for one subreddit. The limiter is shared
// across sources so the whole scan stays under Reddit's anonymous rate
// limit.
func NewRedditSource(name, subreddit string, client *http.Client, limiter *rate.Limiter) *RedditSource {
	return &RedditSource{
		name:      name,
		subreddit: subreddit,
		client:    client,
		limiter:   limiter,
		breaker:   circuitbreaker.New(circuitbreaker.ListingConfig("reddit-" + subreddit)),
		retryCfg:  retry.FeedFetchConfig(),
		baseURL:   redditBaseURL,
	}
}

// Name implements Source.
func (s *RedditSource) Name() string { return s.name }

// Fetch retrieves one listing page and maps its posts to candidates.
// Posts that carry no playable video are dropped silently.
func (s *RedditSource) Fetch(ctx context.Context, page Page) ([]Candidate, error) {
	url := fmt.Sprintf("%s/r/%s/%s.json?limit=%d&raw_json=1",
		s.baseURL, s.subreddit, page.Listing, page.Limit)
	if page.Window != "" {
		url += "&t=" + page.Window
	}

	var listing *redditListing
	retryErr := retry.WithBackoff(ctx, s.retryCfg, func() error {
		cbResult, err := s.breaker.Execute(func() (interface{}, error) {
			return s.doFetch(ctx, url)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("reddit circuit breaker open, request rejected",
					slog.String("subreddit", s.subreddit),
					slog.String("state", s.breaker.State().String()))
			}
			return err
		}
		listing = cbResult.(*redditListing)
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	candidates := make([]Candidate, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if c, ok := s.toCandidate(child.Data); ok {
			candidates = append(candidates, c)
		}
	}
	return candidates, nil
}

// doFetch performs the actual listing fetch without retry or circuit breaker.
func (s *RedditSource) doFetch(ctx context.Context, url string) (*redditListing, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", curatorUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: url}
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return &listing, nil
}

// toCandidate maps a Reddit post to a candidate. It returns false when the
// post has no usable video: stickied mod posts, text posts, image posts.
func (s *RedditSource) toCandidate(post redditPost) (Candidate, bool) {
	if post.Stickied || post.Title == "" {
		return Candidate{}, false
	}

	c := Candidate{
		Title:       post.Title,
		Description: fmt.Sprintf("From r/%s • %s upvotes", post.Subreddit, formatCount(post.Score)),
		Creator:     "@" + post.Author,
		OriginURL:   s.baseURL + post.Permalink,
		Views:       int64(post.Score),
		Duration:    30.0,
		UploadDate:  time.Unix(int64(post.CreatedUTC), 0).UTC(),
	}

	switch {
	case ExtractYouTubeID(post.URL) != "":
		id := ExtractYouTubeID(post.URL)
		c.ExternalID = id
		c.VideoURL = WatchURL(id)
		// Thumbnail is resolved later by the prober

	case strings.Contains(post.URL, "v.redd.it"):
		c.VideoURL = post.URL
		c.ThumbnailURL = post.previewImage()
		if c.ThumbnailURL == "" {
			c.ThumbnailURL = post.Thumbnail
		}

	case post.IsVideo:
		c.VideoURL = post.Media.RedditVideo.FallbackURL
		if c.VideoURL == "" {
			c.VideoURL = post.URL
		}
		c.ThumbnailURL = post.Thumbnail

	default:
		return Candidate{}, false
	}

	if d := post.Media.RedditVideo.Duration; d > 0 {
		c.Duration = d
	}

	if !strings.HasPrefix(c.ThumbnailURL, "http") {
		c.ThumbnailURL = ""
	}
	// Preview URLs come back entity-escaped even with raw_json=1
	c.ThumbnailURL = html.UnescapeString(c.ThumbnailURL)
	c.VideoURL = html.UnescapeString(c.VideoURL)

	return c, true
}

// formatCount renders 12345 as "12,345" to match the description style shown
// in the feed.
func formatCount(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// Reddit JSON API response types

type redditListing struct {
	Data struct {
		Children []redditChild `json:"children"`
		After    string        `json:"after"`
	} `json:"data"`
}

type redditChild struct {
	Kind string     `json:"kind"`
	Data redditPost `json:"data"`
}

type redditPost struct {
	ID         string  `json:"id"`
	Subreddit  string  `json:"subreddit"`
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	URL        string  `json:"url"`
	Permalink  string  `json:"permalink"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
	Stickied   bool    `json:"stickied"`
	IsVideo    bool    `json:"is_video"`
	Thumbnail  string  `json:"thumbnail"`
	Media      struct {
		RedditVideo struct {
			FallbackURL string  `json:"fallback_url"`
			Duration    float64 `json:"duration"`
		} `json:"reddit_video"`
	} `json:"media"`
	Preview struct {
		Images []struct {
			Source struct {
				URL string `json:"url"`
			} `json:"source"`
		} `json:"images"`
	} `json:"preview"`
}

func (p redditPost) previewImage() string {
	if len(p.Preview.Images) == 0 {
		return ""
	}
	return p.Preview.Images[0].Source.URL
}
