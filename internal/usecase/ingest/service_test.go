package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"clankervids/internal/classify"
	"clankervids/internal/domain/entity"
	"clankervids/internal/infra/source"
	"clankervids/internal/observability/metrics"
)

func testService(repo *memRepo, thumbs ThumbnailFinder) *Service {
	return NewService(repo, classify.New(classify.DefaultKeywords()), thumbs, Options{
		ScanLimit:    30,
		SourceDelay:  0,
		FetchTimeout: time.Second,
	})
}

func atlasCandidate() source.Candidate {
	return source.Candidate{
		Title:       "Atlas robot attempts parkour and crashes spectacularly hard",
		Description: "From r/robotics • 4,521 upvotes",
		Creator:     "@botfan",
		VideoURL:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		ExternalID:  "dQw4w9WgXcQ",
		OriginURL:   "https://www.reddit.com/r/robotics/comments/abc1/atlas/",
		Views:       4521,
	}
}

func TestRunScan_StoresAcceptedCandidate(t *testing.T) {
	repo := newMemRepo()
	thumbs := &stubThumbs{}
	svc := testService(repo, thumbs)

	src := &stubSource{name: "r/robotics", candidates: []source.Candidate{atlasCandidate()}}
	report, err := svc.RunScan(context.Background(), []ScanSource{{Source: src, Trusted: true}})
	if err != nil {
		t.Fatalf("RunScan err=%v", err)
	}

	if report.Added() != 1 {
		t.Fatalf("Added = %d, want 1", report.Added())
	}
	videos, _ := repo.ListActive(context.Background(), "", 0)
	if len(videos) != 1 {
		t.Fatalf("stored %d videos, want 1", len(videos))
	}

	v := videos[0]
	if v.Category != entity.CategoryFails {
		t.Errorf("Category = %q, want fails for a crash title", v.Category)
	}
	if v.Status != entity.StatusActive {
		t.Errorf("Status = %q", v.Status)
	}
	if v.ID == "" {
		t.Error("ID not assigned")
	}
	if v.ThumbnailURL != "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg" {
		t.Errorf("ThumbnailURL = %q, want probed thumbnail", v.ThumbnailURL)
	}
	if v.Duration != 30.0 {
		t.Errorf("Duration = %v, want 30s default", v.Duration)
	}

	// The per-category gauge is refreshed from the store after each run
	gauge := testutil.ToFloat64(metrics.VideosTotal.WithLabelValues(string(entity.CategoryFails)))
	if gauge != 1 {
		t.Errorf("videos gauge for fails = %v, want 1", gauge)
	}
}

func TestRunScan_MultibyteTitleAccepted(t *testing.T) {
	repo := newMemRepo()
	svc := testService(repo, nil)

	// 150 runes but 450 bytes; the title limit counts runes
	c := atlasCandidate()
	c.Title = "ロボット" + strings.Repeat("あ", 146)

	src := &stubSource{name: "r/robotics", candidates: []source.Candidate{c}}
	report, err := svc.RunScan(context.Background(), []ScanSource{{Source: src, Trusted: true}})
	if err != nil {
		t.Fatalf("RunScan err=%v", err)
	}
	if report.Added() != 1 {
		t.Fatalf("Added = %d, want 1 (Errors=%d)", report.Added(), report.Sources[0].Errors)
	}

	videos, _ := repo.ListActive(context.Background(), "", 0)
	if got := utf8.RuneCountInString(videos[0].Title); got != 150 {
		t.Errorf("stored title runes = %d, want 150", got)
	}
}

func TestRunScan_OverlongTitleTruncatedNotRejected(t *testing.T) {
	repo := newMemRepo()
	svc := testService(repo, nil)

	c := atlasCandidate()
	c.Title = "Giant robot battle " + strings.Repeat("x", 300)

	src := &stubSource{name: "r/robotics", candidates: []source.Candidate{c}}
	report, err := svc.RunScan(context.Background(), []ScanSource{{Source: src, Trusted: true}})
	if err != nil {
		t.Fatalf("RunScan err=%v", err)
	}
	if report.Added() != 1 {
		t.Fatalf("Added = %d, want 1 (Errors=%d)", report.Added(), report.Sources[0].Errors)
	}

	videos, _ := repo.ListActive(context.Background(), "", 0)
	if got := utf8.RuneCountInString(videos[0].Title); got != 200 {
		t.Errorf("stored title runes = %d, want 200", got)
	}
}

func TestRunScan_SecondRunAddsNothing(t *testing.T) {
	repo := newMemRepo()
	svc := testService(repo, nil)
	sources := func() []ScanSource {
		src := &stubSource{name: "r/robotics", candidates: []source.Candidate{atlasCandidate()}}
		return []ScanSource{{Source: src, Trusted: true}}
	}

	first, _ := svc.RunScan(context.Background(), sources())
	if first.Added() != 1 {
		t.Fatalf("first run Added = %d, want 1", first.Added())
	}

	second, _ := svc.RunScan(context.Background(), sources())
	if second.Added() != 0 {
		t.Errorf("second run Added = %d, want 0", second.Added())
	}
	if second.Sources[0].Duplicates != 1 {
		t.Errorf("second run Duplicates = %d, want 1", second.Sources[0].Duplicates)
	}
}

func TestRunScan_BatchOriginCheckFiltersKnownURLs(t *testing.T) {
	repo := newMemRepo()
	svc := testService(repo, nil)

	seed := atlasCandidate()
	src1 := &stubSource{name: "r/robotics", candidates: []source.Candidate{seed}}
	_, _ = svc.RunScan(context.Background(), []ScanSource{{Source: src1, Trusted: true}})

	fresh := source.Candidate{
		Title:     "Warehouse robot drops entire pallet in fail compilation",
		VideoURL:  "https://v.redd.it/fresh123",
		OriginURL: "https://www.reddit.com/r/robotics/comments/new1/pallet/",
	}
	src2 := &stubSource{name: "r/robotics", candidates: []source.Candidate{seed, fresh}}
	repo.batchCalls = 0

	report, err := svc.RunScan(context.Background(), []ScanSource{{Source: src2, Trusted: true}})
	if err != nil {
		t.Fatalf("RunScan err=%v", err)
	}

	if repo.batchCalls == 0 {
		t.Error("batch origin check never ran")
	}
	if report.Sources[0].Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1 (known URL pre-filtered)", report.Sources[0].Duplicates)
	}
	if report.Added() != 1 {
		t.Errorf("Added = %d, want 1", report.Added())
	}
}

func TestRunScan_TitlePrefixCatchesRepost(t *testing.T) {
	repo := newMemRepo()
	svc := testService(repo, nil)

	original := atlasCandidate()
	repost := atlasCandidate()
	repost.ExternalID = ""
	repost.VideoURL = "https://v.redd.it/xyz987"
	repost.OriginURL = "https://www.reddit.com/r/videos/comments/zzz9/atlas/"
	repost.Title = original.Title + " [OC]"

	src := &stubSource{name: "mixed", candidates: []source.Candidate{original, repost}}
	report, _ := svc.RunScan(context.Background(), []ScanSource{{Source: src, Trusted: true}})

	if report.Added() != 1 {
		t.Errorf("Added = %d, want 1 (repost deduped by title prefix)", report.Added())
	}
	if report.Sources[0].Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", report.Sources[0].Duplicates)
	}
}

func TestRunScan_TrustedSourceSkipsRelevanceCheck(t *testing.T) {
	repo := newMemRepo()
	svc := testService(repo, nil)

	c := source.Candidate{
		Title:     "Tuesday livestream highlights",
		Creator:   "@fan",
		VideoURL:  "https://v.redd.it/live123",
		OriginURL: "https://www.reddit.com/r/shittyrobots/comments/l1/live/",
	}
	trusted := &stubSource{name: "r/shittyrobots", candidates: []source.Candidate{c}}
	report, _ := svc.RunScan(context.Background(), []ScanSource{{Source: trusted, Trusted: true}})
	if report.Added() != 1 {
		t.Errorf("trusted Added = %d, want 1", report.Added())
	}

	// The same title from an untrusted source is rejected
	repo2 := newMemRepo()
	svc2 := testService(repo2, nil)
	untrusted := &stubSource{name: "r/videos", candidates: []source.Candidate{c}}
	report2, _ := svc2.RunScan(context.Background(), []ScanSource{{Source: untrusted, Trusted: false}})
	if report2.Added() != 0 {
		t.Errorf("untrusted Added = %d, want 0", report2.Added())
	}
	if report2.Sources[0].Rejected != 1 {
		t.Errorf("Rejected = %d, want 1", report2.Sources[0].Rejected)
	}
}

func TestRunScan_ExcludeOverridesTrust(t *testing.T) {
	repo := newMemRepo()
	svc := testService(repo, nil)

	c := source.Candidate{
		Title:     "Kitten vs roomba vacuum cleaner",
		VideoURL:  "https://v.redd.it/cat1",
		OriginURL: "https://www.reddit.com/r/shittyrobots/comments/c1/kitten/",
	}
	src := &stubSource{name: "r/shittyrobots", candidates: []source.Candidate{c}}
	report, _ := svc.RunScan(context.Background(), []ScanSource{{Source: src, Trusted: true}})

	if report.Added() != 0 {
		t.Errorf("Added = %d, want 0 for excluded topic", report.Added())
	}
	if report.Sources[0].Excluded != 1 {
		t.Errorf("Excluded = %d, want 1", report.Sources[0].Excluded)
	}
}

func TestRunScan_SourceFailureDoesNotAbortRun(t *testing.T) {
	repo := newMemRepo()
	svc := testService(repo, nil)

	broken := &stubSource{name: "r/broken", err: errFetchBoom}
	working := &stubSource{name: "r/robotics", candidates: []source.Candidate{atlasCandidate()}}

	report, err := svc.RunScan(context.Background(), []ScanSource{
		{Source: broken, Trusted: true},
		{Source: working, Trusted: true},
	})
	if err != nil {
		t.Fatalf("RunScan err=%v", err)
	}

	if len(report.Sources) != 2 {
		t.Fatalf("Sources = %d, want 2", len(report.Sources))
	}
	if !report.Sources[0].FetchFailed {
		t.Error("broken source not marked FetchFailed")
	}
	if report.Added() != 1 {
		t.Errorf("Added = %d, want 1 from the working source", report.Added())
	}
}

func TestRunScan_StopSignalSkipsRemainingSources(t *testing.T) {
	repo := newMemRepo()
	svc := testService(repo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &stubSource{name: "r/robotics", candidates: []source.Candidate{atlasCandidate()}}
	report, err := svc.RunScan(ctx, []ScanSource{{Source: src, Trusted: true}})
	if err != nil {
		t.Fatalf("RunScan err=%v", err)
	}
	if !report.Stopped {
		t.Error("report.Stopped = false, want true")
	}
	if len(report.Sources) != 0 {
		t.Errorf("Sources = %d, want 0 after immediate stop", len(report.Sources))
	}
}

func TestRunScan_ListingPasses(t *testing.T) {
	repo := newMemRepo()
	svc := testService(repo, nil)

	src := &stubSource{name: "r/robotics"}
	_, _ = svc.RunScan(context.Background(), []ScanSource{{Source: src, Trusted: true}})

	if len(src.pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(src.pages))
	}
	top, hot := src.pages[0], src.pages[1]
	if top.Listing != "top" || top.Window != "month" || top.Limit != 30 {
		t.Errorf("first pass = %+v", top)
	}
	if hot.Listing != "hot" || hot.Window != "all" || hot.Limit != 15 {
		t.Errorf("second pass = %+v", hot)
	}
}

func TestRunScan_PerSourcePageSize(t *testing.T) {
	repo := newMemRepo()
	svc := testService(repo, nil)

	src := &stubSource{name: "r/drones"}
	_, _ = svc.RunScan(context.Background(), []ScanSource{{Source: src, Trusted: true, PageSize: 10}})

	if len(src.pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(src.pages))
	}
	if src.pages[0].Limit != 10 || src.pages[1].Limit != 5 {
		t.Errorf("limits = %d, %d, want 10, 5", src.pages[0].Limit, src.pages[1].Limit)
	}
}

func TestAddByURL(t *testing.T) {
	repo := newMemRepo()
	svc := testService(repo, &stubThumbs{})

	lookup := &stubLookup{meta: &source.VideoMetadata{
		ID:         "dQw4w9WgXcQ",
		Title:      "Robot arm juggles chainsaws",
		Uploader:   "BotChannel",
		ViewCount:  99000,
		Duration:   45,
		WebpageURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		UploadDate: "20260815",
	}}

	v, err := svc.AddByURL(context.Background(), lookup, "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("AddByURL err=%v", err)
	}
	if v.Category != entity.CategoryHighlights {
		t.Errorf("Category = %q", v.Category)
	}
	if v.Views != 99000 {
		t.Errorf("Views = %d", v.Views)
	}
	if got := v.UploadDate.Format("2006-01-02"); got != "2026-08-15" {
		t.Errorf("UploadDate = %s", got)
	}

	// Adding again is a duplicate
	if _, err := svc.AddByURL(context.Background(), lookup, "https://youtu.be/dQw4w9WgXcQ"); err == nil {
		t.Error("second AddByURL err=nil, want duplicate error")
	}
}

func TestAddByURL_RejectsOffTopic(t *testing.T) {
	repo := newMemRepo()
	svc := testService(repo, nil)

	lookup := &stubLookup{meta: &source.VideoMetadata{
		ID:         "offtopic123",
		Title:      "My trip to the Atlas mountains",
		Uploader:   "Traveler",
		WebpageURL: "https://www.youtube.com/watch?v=offtopic123",
	}}

	if _, err := svc.AddByURL(context.Background(), lookup, "https://youtu.be/offtopic123"); err == nil {
		t.Error("AddByURL err=nil, want rejection for off-topic video")
	}
}

func TestFallbackLookup_ScrapesPageWhenPrimaryFails(t *testing.T) {
	lookup := FallbackLookup{
		Primary: &stubLookup{err: errFetchBoom},
		Pages: &stubPages{meta: &source.PageMeta{
			Title: "Robot dog herds sheep",
			Image: "https://cdn.example.com/thumb.jpg",
		}},
	}

	meta, err := lookup.Lookup(context.Background(), "https://clips.example.com/robot-dog")
	if err != nil {
		t.Fatalf("Lookup err=%v", err)
	}
	if meta.Title != "Robot dog herds sheep" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Thumbnail != "https://cdn.example.com/thumb.jpg" {
		t.Errorf("Thumbnail = %q", meta.Thumbnail)
	}
	if meta.WebpageURL != "https://clips.example.com/robot-dog" {
		t.Errorf("WebpageURL = %q", meta.WebpageURL)
	}
}

func TestFallbackLookup_KeepsPrimaryError(t *testing.T) {
	lookup := FallbackLookup{
		Primary: &stubLookup{err: errFetchBoom},
		Pages:   &stubPages{err: errors.New("page unreachable")},
	}

	if _, err := lookup.Lookup(context.Background(), "https://clips.example.com/x"); !errors.Is(err, errFetchBoom) {
		t.Errorf("err = %v, want the primary lookup's error", err)
	}

	// A page with no og:title is no better than a failed primary
	lookup.Pages = &stubPages{meta: &source.PageMeta{}}
	if _, err := lookup.Lookup(context.Background(), "https://clips.example.com/x"); !errors.Is(err, errFetchBoom) {
		t.Errorf("err = %v, want the primary lookup's error", err)
	}
}

func TestAddByURL_OpenGraphFallback(t *testing.T) {
	repo := newMemRepo()
	svc := testService(repo, nil)

	lookup := FallbackLookup{
		Primary: &stubLookup{err: errFetchBoom},
		Pages: &stubPages{meta: &source.PageMeta{
			Title: "Robot dog herds sheep",
			Image: "https://cdn.example.com/thumb.jpg",
		}},
	}

	v, err := svc.AddByURL(context.Background(), lookup, "https://clips.example.com/robot-dog")
	if err != nil {
		t.Fatalf("AddByURL err=%v", err)
	}
	if v.Title != "Robot dog herds sheep" {
		t.Errorf("Title = %q", v.Title)
	}
	if v.ThumbnailURL != "https://cdn.example.com/thumb.jpg" {
		t.Errorf("ThumbnailURL = %q", v.ThumbnailURL)
	}
}

func TestBackfillThumbnails(t *testing.T) {
	repo := newMemRepo()
	thumbs := &stubThumbs{}
	svc := testService(repo, thumbs)

	// Stored with the low-res fallback
	stale := atlasCandidate()
	src := &stubSource{name: "r/robotics", candidates: []source.Candidate{stale}}
	svcNoThumbs := testService(repo, nil)
	_, _ = svcNoThumbs.RunScan(context.Background(), []ScanSource{{Source: src, Trusted: true}})

	updated, err := svc.BackfillThumbnails(context.Background())
	if err != nil {
		t.Fatalf("BackfillThumbnails err=%v", err)
	}
	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}

	videos, _ := repo.ListYouTube(context.Background())
	if videos[0].ThumbnailURL != "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg" {
		t.Errorf("ThumbnailURL = %q", videos[0].ThumbnailURL)
	}
}

func TestTitlePrefix(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"short", "Atlas Falls", "atlas falls"},
		{"trims", "  Atlas Falls  ", "atlas falls"},
		{"truncates at 50", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaTAIL", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitlePrefix(tt.title); got != tt.want {
				t.Errorf("TitlePrefix(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}
