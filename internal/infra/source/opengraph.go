package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"clankervids/internal/resilience/retry"
)

// OpenGraphResolver fills in missing candidate metadata by scraping
// OpenGraph tags from the video's page. It is the fallback for direct-hosted
// media where neither the listing nor yt-dlp provides a thumbnail.
type OpenGraphResolver struct {
	client   *http.Client
	retryCfg retry.Config
}

// NewOpenGraphResolver creates a resolver using the given HTTP client.
func NewOpenGraphResolver(client *http.Client) *OpenGraphResolver {
	return &OpenGraphResolver{
		client:   client,
		retryCfg: retry.MetadataResolveConfig(),
	}
}

// PageMeta holds the OpenGraph properties the curator cares about.
type PageMeta struct {
	Title string
	Image string
}

// Resolve fetches pageURL and extracts its og:title and og:image tags.
// Missing tags leave the corresponding field empty without error.
func (r *OpenGraphResolver) Resolve(ctx context.Context, pageURL string) (*PageMeta, error) {
	var meta *PageMeta

	retryErr := retry.WithBackoff(ctx, r.retryCfg, func() error {
		m, err := r.doResolve(ctx, pageURL)
		if err != nil {
			return err
		}
		meta = m
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}
	return meta, nil
}

func (r *OpenGraphResolver) doResolve(ctx context.Context, pageURL string) (*PageMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", curatorUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: pageURL}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	meta := &PageMeta{}
	doc.Find("meta[property]").Each(func(_ int, sel *goquery.Selection) {
		prop, _ := sel.Attr("property")
		content, _ := sel.Attr("content")
		switch strings.ToLower(prop) {
		case "og:title":
			if meta.Title == "" {
				meta.Title = content
			}
		case "og:image":
			if meta.Image == "" {
				meta.Image = content
			}
		}
	})
	return meta, nil
}
