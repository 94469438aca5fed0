package source

import (
	"context"
	"fmt"
	"net/http"

	"clankervids/internal/observability/metrics"
	"clankervids/internal/resilience/circuitbreaker"
)

// thumbnailVariants in preference order. maxresdefault is 1280px but only
// exists for some videos; YouTube serves a 1097-byte placeholder (not a 404)
// for missing variants, hence the size check below.
var thumbnailVariants = []string{"maxresdefault", "sddefault", "hqdefault"}

// minThumbnailBytes separates real thumbnails from YouTube's grey
// placeholder image.
const minThumbnailBytes = 5000

// ThumbnailProber finds the best available thumbnail for a YouTube video by
// probing variant URLs with HEAD requests.
type ThumbnailProber struct {
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
	base    string
}

// NewThumbnailProber creates a prober using the given HTTP client.
func NewThumbnailProber(client *http.Client) *ThumbnailProber {
	return &ThumbnailProber{
		client:  client,
		breaker: circuitbreaker.New(circuitbreaker.ProbeConfig("thumbnail-probe")),
		base:    "https://i.ytimg.com/vi",
	}
}

// Best returns the highest-resolution thumbnail URL that actually exists for
// the video. It never returns an error: when every probe fails it falls back
// to hqdefault, which YouTube serves for all videos.
func (p *ThumbnailProber) Best(ctx context.Context, videoID string) string {
	for _, variant := range thumbnailVariants {
		url := p.thumbnailURL(videoID, variant)

		ok, err := p.probe(ctx, url)
		if err != nil {
			metrics.RecordThumbnailProbe("error")
			continue
		}
		if ok {
			metrics.RecordThumbnailProbe("hit")
			return url
		}
		metrics.RecordThumbnailProbe("miss")
	}

	metrics.RecordThumbnailProbe("fallback")
	return p.thumbnailURL(videoID, "hqdefault")
}

// probe reports whether the URL serves a real image. A 200 with a body
// larger than the placeholder counts as real.
func (p *ThumbnailProber) probe(ctx context.Context, url string) (bool, error) {
	result, err := p.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return false, err
		}
		resp, err := p.client.Do(req)
		if err != nil {
			return false, err
		}
		defer func() { _ = resp.Body.Close() }()

		return resp.StatusCode == http.StatusOK &&
			resp.ContentLength > minThumbnailBytes, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (p *ThumbnailProber) thumbnailURL(videoID, variant string) string {
	return fmt.Sprintf("%s/%s/%s.jpg", p.base, videoID, variant)
}
