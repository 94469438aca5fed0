package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgconn"

	"clankervids/internal/domain/entity"
	pg "clankervids/internal/infra/adapter/persistence/postgres"
	"clankervids/internal/repository"
)

/* ─────────────────────────── helpers ─────────────────────────── */

func videoRow(v *entity.Video) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "description", "creator", "category", "video_url",
		"thumbnail_url", "external_id", "origin_url", "duration", "views",
		"clanks", "epic_bots", "system_errors", "status", "created_at", "upload_date",
	}).AddRow(
		v.ID, v.Title, v.Description, v.Creator, v.Category, v.VideoURL,
		v.ThumbnailURL, v.ExternalID, v.OriginURL, v.Duration, v.Views,
		v.Clanks, v.EpicBots, v.SystemErrors, v.Status, v.CreatedAt, v.UploadDate,
	)
}

func sampleVideo(now time.Time) *entity.Video {
	return &entity.Video{
		ID: "vid-1", Title: "Atlas does parkour", Description: "From r/robotics",
		Creator: "@bot", Category: entity.CategoryHighlights,
		VideoURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		ThumbnailURL: "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
		ExternalID:   "dQw4w9WgXcQ", OriginURL: "https://example.com/post/1",
		Duration: 30, Views: 120, Status: entity.StatusActive,
		CreatedAt: now, UploadDate: now,
	}
}

/* ─────────────────────────── Get ─────────────────────────── */

func TestVideoRepo_Get(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	want := sampleVideo(now)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id")).
		WithArgs("vid-1").
		WillReturnRows(videoRow(want))

	repo := pg.NewVideoRepo(db)
	got, err := repo.Get(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestVideoRepo_Get_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := pg.NewVideoRepo(db)
	got, err := repo.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if got != nil {
		t.Fatalf("Get = %+v, want nil for missing row", got)
	}
}

/* ─────────────────────────── Create ─────────────────────────── */

func TestVideoRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	v := sampleVideo(now)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO videos")).
		WithArgs(v.ID, v.Title, v.Description, v.Creator, v.Category,
			v.VideoURL, v.ThumbnailURL, v.ExternalID, v.OriginURL,
			v.Duration, v.Views, v.Clanks, v.EpicBots, v.SystemErrors,
			v.Status, v.CreatedAt, v.UploadDate).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := pg.NewVideoRepo(db)
	if err := repo.Create(context.Background(), v); err != nil {
		t.Fatalf("Create err=%v", err)
	}
}

func TestVideoRepo_Create_NaturalKeyConflictIsDuplicate(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_videos_external_id"}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO videos")).
		WillReturnError(pgErr)

	repo := pg.NewVideoRepo(db)
	err := repo.Create(context.Background(), sampleVideo(time.Now()))
	if !errors.Is(err, entity.ErrDuplicate) {
		t.Fatalf("Create err=%v, want ErrDuplicate", err)
	}
}

func TestVideoRepo_Create_OtherConstraintIsError(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "some_other_constraint"}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO videos")).
		WillReturnError(pgErr)

	repo := pg.NewVideoRepo(db)
	err := repo.Create(context.Background(), sampleVideo(time.Now()))
	if err == nil || errors.Is(err, entity.ErrDuplicate) {
		t.Fatalf("Create err=%v, want non-duplicate error", err)
	}
}

/* ─────────────────────────── Exists checks ─────────────────────────── */

func TestVideoRepo_ExistsByExternalID(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("dQw4w9WgXcQ").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := pg.NewVideoRepo(db)
	exists, err := repo.ExistsByExternalID(context.Background(), "dQw4w9WgXcQ")
	if err != nil || !exists {
		t.Fatalf("ExistsByExternalID = %v, err=%v", exists, err)
	}
}

func TestVideoRepo_ExistsByTitlePrefix(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("lower(substr(title, 1, 50))")).
		WithArgs("atlas does parkour").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	repo := pg.NewVideoRepo(db)
	exists, err := repo.ExistsByTitlePrefix(context.Background(), "atlas does parkour")
	if err != nil || exists {
		t.Fatalf("ExistsByTitlePrefix = %v, err=%v", exists, err)
	}
}

func TestVideoRepo_ExistsByOriginURLBatch_Empty(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	repo := pg.NewVideoRepo(db)
	got, err := repo.ExistsByOriginURLBatch(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("ExistsByOriginURLBatch(nil) = %v, err=%v", got, err)
	}
}

func TestVideoRepo_ExistsByOriginURLBatch(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT origin_url FROM videos")).
		WillReturnRows(sqlmock.NewRows([]string{"origin_url"}).
			AddRow("https://example.com/a"))

	repo := pg.NewVideoRepo(db)
	got, err := repo.ExistsByOriginURLBatch(context.Background(),
		[]string{"https://example.com/a", "https://example.com/b"})
	if err != nil {
		t.Fatalf("ExistsByOriginURLBatch err=%v", err)
	}
	if !got["https://example.com/a"] || got["https://example.com/b"] {
		t.Fatalf("ExistsByOriginURLBatch = %v", got)
	}
}

/* ─────────────────────────── Counters ─────────────────────────── */

func TestVideoRepo_IncrementReaction(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE videos SET clanks = clanks + 1")).
		WithArgs("vid-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := pg.NewVideoRepo(db)
	if err := repo.IncrementReaction(context.Background(), "vid-1", repository.ReactionClank); err != nil {
		t.Fatalf("IncrementReaction err=%v", err)
	}
}

func TestVideoRepo_IncrementReaction_UnknownReaction(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	repo := pg.NewVideoRepo(db)
	err := repo.IncrementReaction(context.Background(), "vid-1", "upvote")
	if !errors.Is(err, entity.ErrInvalidInput) {
		t.Fatalf("IncrementReaction err=%v, want ErrInvalidInput", err)
	}
}

func TestVideoRepo_CountByCategory(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY category")).
		WillReturnRows(sqlmock.NewRows([]string{"category", "count"}).
			AddRow("battles", 3).
			AddRow("fails", 12))

	repo := pg.NewVideoRepo(db)
	got, err := repo.CountByCategory(context.Background())
	if err != nil {
		t.Fatalf("CountByCategory err=%v", err)
	}
	want := []repository.CategoryCount{
		{Category: entity.CategoryBattles, Count: 3},
		{Category: entity.CategoryFails, Count: 12},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
