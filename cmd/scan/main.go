// Package main provides the curator CLI.
//
// Usage:
//
//	clanker-scan scan              run a full scan over all configured sources
//	clanker-scan add <url>         classify and store one video by URL
//	clanker-scan stats             print active video counts per category
//	clanker-scan thumbs            re-probe and upgrade stored YouTube thumbnails
package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/time/rate"

	"clankervids/internal/classify"
	"clankervids/internal/config"
	"clankervids/internal/infra/adapter/persistence/postgres"
	"clankervids/internal/infra/db"
	"clankervids/internal/infra/source"
	"clankervids/internal/observability/logging"
	"clankervids/internal/repository"
	"clankervids/internal/usecase/ingest"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	logger := logging.NewTextLogger()
	slog.SetDefault(logger)

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	database := db.Open()
	defer func() { _ = database.Close() }()
	if err := db.MigrateUp(database); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to migrate database: %v\n", err)
		os.Exit(1)
	}
	repo := postgres.NewVideoRepo(database)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "scan":
		err = runScan(ctx, logger, repo, cfg)
	case "add":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Error: add requires a video URL")
			os.Exit(1)
		}
		err = runAdd(ctx, repo, cfg, os.Args[2])
	case "stats":
		err = runStats(ctx, repo)
	case "thumbs":
		err = runThumbs(ctx, repo, cfg)
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: clanker-scan <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  scan          scan all configured sources")
	fmt.Fprintln(os.Stderr, "  add <url>     classify and store one video by URL")
	fmt.Fprintln(os.Stderr, "  stats         print active video counts per category")
	fmt.Fprintln(os.Stderr, "  thumbs        re-probe stored YouTube thumbnails")
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		},
	}
}

func newService(repo repository.VideoRepository, cfg *config.Config, client *http.Client) *ingest.Service {
	opts := ingest.DefaultOptions()
	if cfg.ScanLimit > 0 {
		opts.ScanLimit = cfg.ScanLimit
	}
	if cfg.SourceDelay > 0 {
		opts.SourceDelay = cfg.SourceDelay.Std()
	}
	return ingest.NewService(repo, classify.New(cfg.Keywords), source.NewThumbnailProber(client), opts)
}

func runScan(ctx context.Context, logger *slog.Logger, repo repository.VideoRepository, cfg *config.Config) error {
	client := newHTTPClient()
	svc := newService(repo, cfg, client)

	redditLimiter := rate.NewLimiter(rate.Every(time.Second), 1)
	ytdlp := source.NewYtDlpClient()

	var sources []ingest.ScanSource
	for _, sc := range cfg.Sources {
		var src source.Source
		switch sc.Kind {
		case config.KindReddit:
			src = source.NewRedditSource(sc.Name, sc.Subreddit, client, redditLimiter)
		case config.KindYouTubeRSS:
			src = source.NewYouTubeRSSSource(sc.Name, sc.FeedURL, client)
		case config.KindYouTubeSearch:
			src = source.NewYouTubeSearchSource(sc.Name, sc.Queries, ytdlp)
		default:
			logger.Warn("skipping source with unknown kind", slog.String("kind", sc.Kind))
			continue
		}
		sources = append(sources, ingest.ScanSource{Source: src, Trusted: sc.Trusted, PageSize: sc.PageSize})
	}

	report, err := svc.RunScan(ctx, sources)
	if err != nil {
		return err
	}

	fmt.Printf("Scan finished in %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Second))
	fmt.Printf("  fetched:    %d\n", report.Fetched())
	fmt.Printf("  added:      %d\n", report.Added())
	for _, s := range report.Sources {
		marker := ""
		if s.FetchFailed {
			marker = "  (unreachable)"
		}
		fmt.Printf("  %-28s fetched=%-4d added=%-3d dup=%-3d rejected=%-3d%s\n",
			s.Name, s.Fetched, s.Accepted, s.Duplicates, s.Rejected+s.Excluded, marker)
	}
	if report.Stopped {
		fmt.Println("Run was stopped before finishing.")
	}
	return nil
}

func runAdd(ctx context.Context, repo repository.VideoRepository, cfg *config.Config, url string) error {
	client := newHTTPClient()
	svc := newService(repo, cfg, client)

	lookup := ingest.FallbackLookup{
		Primary: source.NewYtDlpClient(),
		Pages:   source.NewOpenGraphResolver(client),
	}
	video, err := svc.AddByURL(ctx, lookup, url)
	if err != nil {
		return err
	}
	fmt.Printf("Added %q as %s (%s)\n", video.Title, video.Category, video.ID)
	return nil
}

func runStats(ctx context.Context, repo repository.VideoRepository) error {
	counts, err := repo.CountByCategory(ctx)
	if err != nil {
		return err
	}

	var total int64
	for _, c := range counts {
		fmt.Printf("  %-12s %d\n", c.Category, c.Count)
		total += c.Count
	}
	fmt.Printf("  %-12s %d\n", "total", total)
	return nil
}

func runThumbs(ctx context.Context, repo repository.VideoRepository, cfg *config.Config) error {
	client := newHTTPClient()
	svc := newService(repo, cfg, client)

	updated, err := svc.BackfillThumbnails(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Upgraded %d thumbnails\n", updated)
	return nil
}
