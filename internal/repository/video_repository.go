package repository

import (
	"context"

	"clankervids/internal/domain/entity"
)

// CategoryCount pairs a category with its active video count.
type CategoryCount struct {
	Category entity.Category
	Count    int64
}

// Reaction names accepted by IncrementReaction.
const (
	ReactionClank = "clank"
	ReactionEpic  = "epic"
	ReactionFail  = "fail"
)

// VideoRepository is the persistence port for curated videos.
type VideoRepository interface {
	// Create inserts a new video. The store enforces uniqueness of the
	// natural keys (external_id, origin_url); a conflict on either returns
	// entity.ErrDuplicate so retried scans stay idempotent.
	Create(ctx context.Context, video *entity.Video) error

	// ExistsByExternalID reports whether a video with the given feed-native
	// id has ever been accepted.
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)

	// ExistsByOriginURL reports whether the canonical origin URL is known.
	ExistsByOriginURL(ctx context.Context, url string) (bool, error)

	// ExistsByOriginURLBatch checks many origin URLs in one round trip.
	ExistsByOriginURLBatch(ctx context.Context, urls []string) (map[string]bool, error)

	// ExistsByTitlePrefix reports whether any stored title shares the given
	// lower-cased, trimmed prefix. Used as the fuzzy re-post check.
	ExistsByTitlePrefix(ctx context.Context, prefix string) (bool, error)

	Get(ctx context.Context, id string) (*entity.Video, error)

	// ListActive returns active videos, optionally filtered by category
	// (empty category means all), ordered by creation time descending.
	ListActive(ctx context.Context, category entity.Category, limit int) ([]*entity.Video, error)

	// ListYouTube returns active videos that carry a YouTube external id,
	// for thumbnail backfill.
	ListYouTube(ctx context.Context) ([]*entity.Video, error)

	// IncrementReaction bumps one reaction counter. reaction is one of the
	// Reaction* constants.
	IncrementReaction(ctx context.Context, id string, reaction string) error

	// UpdateThumbnail replaces the stored thumbnail URL.
	UpdateThumbnail(ctx context.Context, id string, thumbnailURL string) error

	// CountByCategory returns active video counts grouped by category.
	CountByCategory(ctx context.Context) ([]CategoryCount, error)
}
