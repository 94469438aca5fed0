// Package postgres provides the PostgreSQL implementation of the repository
// interfaces.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"clankervids/internal/domain/entity"
	"clankervids/internal/observability/metrics"
	"clankervids/internal/repository"
)

// uniqueViolation is the PostgreSQL error code for unique constraint conflicts.
const uniqueViolation = "23505"

// Natural key constraint names from the migration. A conflict on one of these
// means "already exists"; a conflict elsewhere is a real error.
var naturalKeyConstraints = map[string]bool{
	"uq_videos_external_id": true,
	"uq_videos_origin_url":  true,
	"videos_pkey":           true,
}

// VideoRepo implements repository.VideoRepository using PostgreSQL.
type VideoRepo struct {
	db *sql.DB
}

// NewVideoRepo creates a new PostgreSQL-backed video repository.
func NewVideoRepo(db *sql.DB) repository.VideoRepository {
	return &VideoRepo{db: db}
}

// observe reports one query's duration. Used as `defer observe(op, time.Now())`.
func observe(operation string, start time.Time) {
	metrics.RecordDBQuery(operation, time.Since(start))
}

const videoColumns = `id, title, description, creator, category, video_url, thumbnail_url,
       external_id, origin_url, duration, views, clanks, epic_bots, system_errors,
       status, created_at, upload_date`

func scanVideo(row interface{ Scan(...any) error }) (*entity.Video, error) {
	var v entity.Video
	err := row.Scan(&v.ID, &v.Title, &v.Description, &v.Creator, &v.Category,
		&v.VideoURL, &v.ThumbnailURL, &v.ExternalID, &v.OriginURL, &v.Duration,
		&v.Views, &v.Clanks, &v.EpicBots, &v.SystemErrors,
		&v.Status, &v.CreatedAt, &v.UploadDate)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a video. Conflicts on the natural-key constraints are
// reported as entity.ErrDuplicate so the caller can count them as normal
// duplicate rejections instead of failures.
func (repo *VideoRepo) Create(ctx context.Context, video *entity.Video) error {
	defer observe("create", time.Now())
	const query = `
INSERT INTO videos (` + videoColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := repo.db.ExecContext(ctx, query,
		video.ID, video.Title, video.Description, video.Creator, video.Category,
		video.VideoURL, video.ThumbnailURL, video.ExternalID, video.OriginURL,
		video.Duration, video.Views, video.Clanks, video.EpicBots, video.SystemErrors,
		video.Status, video.CreatedAt, video.UploadDate,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if naturalKeyConstraints[pgErr.ConstraintName] {
				return entity.ErrDuplicate
			}
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *VideoRepo) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	defer observe("exists_external_id", time.Now())
	const query = `SELECT EXISTS (SELECT 1 FROM videos WHERE external_id = $1 AND external_id <> '')`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, externalID).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByExternalID: %w", err)
	}
	return exists, nil
}

func (repo *VideoRepo) ExistsByOriginURL(ctx context.Context, url string) (bool, error) {
	defer observe("exists_origin_url", time.Now())
	const query = `SELECT EXISTS (SELECT 1 FROM videos WHERE origin_url = $1)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, url).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByOriginURL: %w", err)
	}
	return exists, nil
}

// ExistsByOriginURLBatch checks many URLs in one round trip to avoid N+1
// queries when pre-filtering a fetched page.
func (repo *VideoRepo) ExistsByOriginURLBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	defer observe("exists_origin_url_batch", time.Now())
	if len(urls) == 0 {
		return make(map[string]bool), nil
	}

	const query = `SELECT origin_url FROM videos WHERE origin_url = ANY($1)`
	rows, err := repo.db.QueryContext(ctx, query, pq.Array(urls))
	if err != nil {
		return nil, fmt.Errorf("ExistsByOriginURLBatch: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]bool)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("ExistsByOriginURLBatch: Scan: %w", err)
		}
		result[url] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExistsByOriginURLBatch: rows.Err: %w", err)
	}
	return result, nil
}

func (repo *VideoRepo) ExistsByTitlePrefix(ctx context.Context, prefix string) (bool, error) {
	defer observe("exists_title_prefix", time.Now())
	const query = `SELECT EXISTS (SELECT 1 FROM videos WHERE lower(substr(title, 1, 50)) = $1)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, prefix).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByTitlePrefix: %w", err)
	}
	return exists, nil
}

func (repo *VideoRepo) Get(ctx context.Context, id string) (*entity.Video, error) {
	defer observe("get", time.Now())
	const query = `
SELECT ` + videoColumns + `
FROM videos
WHERE id = $1
LIMIT 1`
	video, err := scanVideo(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return video, nil
}

func (repo *VideoRepo) ListActive(ctx context.Context, category entity.Category, limit int) ([]*entity.Video, error) {
	defer observe("list_active", time.Now())
	query := `
SELECT ` + videoColumns + `
FROM videos
WHERE status = 'active'`
	args := []any{}
	if category != "" {
		query += ` AND category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListActive: %w", err)
	}
	defer func() { _ = rows.Close() }()

	videos := make([]*entity.Video, 0, 100)
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("ListActive: Scan: %w", err)
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

// ListYouTube returns active videos carrying a YouTube external id (11
// characters, the platform's fixed id length), for thumbnail backfill.
func (repo *VideoRepo) ListYouTube(ctx context.Context) ([]*entity.Video, error) {
	defer observe("list_youtube", time.Now())
	const query = `
SELECT ` + videoColumns + `
FROM videos
WHERE status = 'active' AND length(external_id) = 11
ORDER BY created_at DESC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListYouTube: %w", err)
	}
	defer func() { _ = rows.Close() }()

	videos := make([]*entity.Video, 0, 100)
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("ListYouTube: Scan: %w", err)
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

// reactionColumns maps reaction names to their counter columns. Column names
// are fixed here, never taken from input.
var reactionColumns = map[string]string{
	repository.ReactionClank: "clanks",
	repository.ReactionEpic:  "epic_bots",
	repository.ReactionFail:  "system_errors",
}

func (repo *VideoRepo) IncrementReaction(ctx context.Context, id string, reaction string) error {
	defer observe("increment_reaction", time.Now())
	column, ok := reactionColumns[reaction]
	if !ok {
		return fmt.Errorf("IncrementReaction: %w: unknown reaction %q", entity.ErrInvalidInput, reaction)
	}

	query := fmt.Sprintf(`UPDATE videos SET %s = %s + 1 WHERE id = $1`, column, column)
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("IncrementReaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (repo *VideoRepo) UpdateThumbnail(ctx context.Context, id string, thumbnailURL string) error {
	defer observe("update_thumbnail", time.Now())
	const query = `UPDATE videos SET thumbnail_url = $1 WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, thumbnailURL, id)
	if err != nil {
		return fmt.Errorf("UpdateThumbnail: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (repo *VideoRepo) CountByCategory(ctx context.Context) ([]repository.CategoryCount, error) {
	defer observe("count_by_category", time.Now())
	const query = `
SELECT category, COUNT(*)
FROM videos
WHERE status = 'active'
GROUP BY category
ORDER BY category`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("CountByCategory: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make([]repository.CategoryCount, 0, 3)
	for rows.Next() {
		var c repository.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("CountByCategory: Scan: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
