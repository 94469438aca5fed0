package ingest

import (
	"context"
	"fmt"

	"clankervids/internal/domain/entity"
	"clankervids/internal/infra/source"
)

// MetadataLookup fetches metadata for a single video URL.
type MetadataLookup interface {
	Lookup(ctx context.Context, url string) (*source.VideoMetadata, error)
}

// PageResolver extracts OpenGraph metadata from an arbitrary web page.
type PageResolver interface {
	Resolve(ctx context.Context, pageURL string) (*source.PageMeta, error)
}

// FallbackLookup resolves a URL through the primary lookup and falls back to
// OpenGraph scraping when the primary cannot handle it. Covers direct-hosted
// clips on pages yt-dlp has no extractor for.
type FallbackLookup struct {
	Primary MetadataLookup
	Pages   PageResolver
}

// Lookup implements MetadataLookup.
func (f FallbackLookup) Lookup(ctx context.Context, url string) (*source.VideoMetadata, error) {
	meta, err := f.Primary.Lookup(ctx, url)
	if err == nil {
		return meta, nil
	}
	if f.Pages == nil {
		return nil, err
	}

	page, pageErr := f.Pages.Resolve(ctx, url)
	if pageErr != nil || page.Title == "" {
		// The primary error names the URL and is the more useful one
		return nil, err
	}
	return &source.VideoMetadata{
		ID:         source.ExtractYouTubeID(url),
		Title:      page.Title,
		Thumbnail:  page.Image,
		WebpageURL: url,
	}, nil
}

// AddByURL ingests one video directly from its URL, outside any scan. It is
// the manual curation path: metadata is looked up, the candidate goes
// through the same classification and dedup as scanned content, and the
// result is stored. Returns the stored video, or an error naming why the
// candidate did not qualify.
func (s *Service) AddByURL(ctx context.Context, lookup MetadataLookup, url string) (*entity.Video, error) {
	meta, err := lookup.Lookup(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", url, err)
	}

	c := meta.Candidate()

	decision := s.classifier.Classify(c.Title, c.Description, false)
	if !decision.Accepted {
		return nil, fmt.Errorf("%w: %q is not robot content (%s)",
			entity.ErrInvalidInput, c.Title, decision.Reason)
	}

	exists, err := s.resolver.Exists(ctx, c)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %q", entity.ErrDuplicate, c.Title)
	}

	if c.ExternalID != "" && s.thumbs != nil {
		c.ThumbnailURL = s.thumbs.Best(ctx, c.ExternalID)
	}

	video := s.buildVideo(c, decision.Category)
	if err := video.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}
