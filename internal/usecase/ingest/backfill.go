package ingest

import (
	"context"
	"log/slog"
)

// BackfillThumbnails re-probes the thumbnail of every stored YouTube video
// and upgrades those still pointing at a lower-resolution variant. Returns
// how many rows were updated. Intended for occasional manual runs after
// thumbnail logic changes.
func (s *Service) BackfillThumbnails(ctx context.Context) (int, error) {
	if s.thumbs == nil {
		return 0, nil
	}

	videos, err := s.repo.ListYouTube(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, v := range videos {
		if err := ctx.Err(); err != nil {
			return updated, err
		}

		best := s.thumbs.Best(ctx, v.ExternalID)
		if best == v.ThumbnailURL {
			continue
		}

		if err := s.repo.UpdateThumbnail(ctx, v.ID, best); err != nil {
			slog.Warn("thumbnail update failed",
				slog.String("id", v.ID),
				slog.Any("error", err))
			continue
		}
		updated++
	}

	slog.Info("thumbnail backfill complete",
		slog.Int("checked", len(videos)),
		slog.Int("updated", updated))

	return updated, nil
}
