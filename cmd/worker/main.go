package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"clankervids/internal/classify"
	"clankervids/internal/config"
	"clankervids/internal/infra/adapter/persistence/postgres"
	"clankervids/internal/infra/db"
	"clankervids/internal/infra/notifier"
	"clankervids/internal/infra/source"
	workerPkg "clankervids/internal/infra/worker"
	"clankervids/internal/observability/logging"
	"clankervids/internal/observability/tracing"
	"clankervids/internal/usecase/ingest"
	"clankervids/internal/usecase/notify"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	shutdownTracing, err := tracing.Setup(context.Background())
	if err != nil {
		logger.Error("failed to set up tracing", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("tracing shutdown failed", slog.Any("error", err))
		}
	}()

	curatorCfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Error("failed to load curator config", slog.Any("error", err))
		os.Exit(1)
	}

	workerMetrics := workerPkg.NewWorkerMetrics()
	workerCfg, _ := workerPkg.LoadConfigFromEnv(logger, workerMetrics)

	client := createHTTPClient()
	scanService := setupScanService(database, curatorCfg, client)
	sources := buildSources(logger, curatorCfg, client)

	notifyService := notify.NewService(buildChannels(logger))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	healthServer := workerPkg.NewHealthServer(healthAddr(workerCfg.HealthPort), logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	startMetricsServer(ctx, logger)

	runCronWorker(ctx, logger, scanService, sources, notifyService, workerCfg, workerMetrics, healthServer)

	// Flush in-flight notifications before exit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := notifyService.Shutdown(shutdownCtx); err != nil {
		logger.Error("notification shutdown failed", slog.Any("error", err))
	}
	logger.Info("worker stopped")
}

// initDatabase opens the connection and waits until the schema is in place.
// The API service owns migrations; the worker only probes for them.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	waitForMigrations(logger, database)
	return database
}

func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM videos LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// setupScanService wires the ingestion pipeline against Postgres.
func setupScanService(database *sql.DB, cfg *config.Config, client *http.Client) *ingest.Service {
	repo := postgres.NewVideoRepo(database)
	classifier := classify.New(cfg.Keywords)
	prober := source.NewThumbnailProber(client)

	opts := ingest.DefaultOptions()
	if cfg.ScanLimit > 0 {
		opts.ScanLimit = cfg.ScanLimit
	}
	if cfg.SourceDelay > 0 {
		opts.SourceDelay = cfg.SourceDelay.Std()
	}

	return ingest.NewService(repo, classifier, prober, opts)
}

// buildSources constructs one adapter per configured source. All Reddit
// sources share a limiter so the whole scan stays within the anonymous API
// budget.
func buildSources(logger *slog.Logger, cfg *config.Config, client *http.Client) []ingest.ScanSource {
	redditLimiter := rate.NewLimiter(rate.Every(time.Second), 1)
	ytdlp := source.NewYtDlpClient()

	sources := make([]ingest.ScanSource, 0, len(cfg.Sources))
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
			logger.Warn("skipping source with unknown kind",
				slog.String("name", sc.Name),
				slog.String("kind", sc.Kind))
			continue
		}
		sources = append(sources, ingest.ScanSource{Source: src, Trusted: sc.Trusted, PageSize: sc.PageSize})
	}
	return sources
}

// buildChannels assembles notification channels from the environment. With
// nothing configured the no-op channel keeps dispatch wiring uniform.
func buildChannels(logger *slog.Logger) []notify.Channel {
	var channels []notify.Channel

	discordCfg := loadDiscordConfig(logger)
	if discordCfg.Enabled {
		channels = append(channels, notifier.NewDiscordChannel(discordCfg))
		logger.Info("Discord notifications enabled")
	}

	if len(channels) == 0 {
		channels = append(channels, notifier.NewNoOpChannel())
		logger.Info("no notification channels configured")
	}
	return channels
}

// loadDiscordConfig loads and validates the Discord webhook settings.
//
// Environment variables:
//   - DISCORD_ENABLED: "true" to enable
//   - DISCORD_WEBHOOK_URL: webhook URL (https, discord.com, /api/webhooks/ path)
func loadDiscordConfig(logger *slog.Logger) notifier.DiscordConfig {
	enabled := os.Getenv("DISCORD_ENABLED") == "true"
	webhookURL := os.Getenv("DISCORD_WEBHOOK_URL")

	if !enabled {
		return notifier.DiscordConfig{Enabled: false}
	}

	if webhookURL == "" {
		logger.Warn("Discord webhook URL is empty, disabling notifications")
		return notifier.DiscordConfig{Enabled: false}
	}

	u, err := url.Parse(webhookURL)
	if err != nil {
		logger.Warn("Invalid Discord webhook URL format, disabling notifications", slog.Any("error", err))
		return notifier.DiscordConfig{Enabled: false}
	}
	if u.Scheme != "https" {
		logger.Warn("Discord webhook URL must use HTTPS, disabling notifications")
		return notifier.DiscordConfig{Enabled: false}
	}
	if u.Host != "discord.com" {
		logger.Warn("Invalid Discord webhook host, disabling notifications", slog.String("host", u.Host))
		return notifier.DiscordConfig{Enabled: false}
	}
	if !strings.HasPrefix(u.Path, "/api/webhooks/") {
		logger.Warn("Invalid Discord webhook path, disabling notifications", slog.String("path", u.Path))
		return notifier.DiscordConfig{Enabled: false}
	}

	return notifier.DiscordConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    30 * time.Second,
	}
}

func healthAddr(port int) string {
	return fmt.Sprintf(":%d", port)
}

// runCronWorker schedules scan runs and blocks until the context is
// cancelled.
func runCronWorker(
	ctx context.Context,
	logger *slog.Logger,
	svc *ingest.Service,
	sources []ingest.ScanSource,
	notifyService *notify.Service,
	cfg *workerPkg.WorkerConfig,
	metrics *workerPkg.WorkerMetrics,
	healthServer *workerPkg.HealthServer,
) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runScanJob(ctx, logger, svc, sources, notifyService, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Int("sources", len(sources)))

	<-ctx.Done()
	logger.Info("shutdown signal received")
	healthServer.SetReady(false)

	// Let a running job finish before exiting
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(cfg.ScanTimeout):
		logger.Warn("running job did not finish before shutdown deadline")
	}
}

// runScanJob executes one scheduled scan with a bounded context and reports
// the outcome through metrics and notification channels.
func runScanJob(
	ctx context.Context,
	logger *slog.Logger,
	svc *ingest.Service,
	sources []ingest.ScanSource,
	notifyService *notify.Service,
	cfg *workerPkg.WorkerConfig,
	metrics *workerPkg.WorkerMetrics,
) {
	jobCtx, cancel := context.WithTimeout(ctx, cfg.ScanTimeout)
	defer cancel()

	logger.Info("scan job starting", slog.Duration("timeout", cfg.ScanTimeout))
	start := time.Now()

	report, err := svc.RunScan(jobCtx, sources)
	duration := time.Since(start)
	metrics.RecordJobDuration(duration.Seconds())

	if err != nil {
		metrics.RecordJobRun("failure")
		logger.Error("scan job failed",
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return
	}

	metrics.RecordJobRun("success")
	metrics.RecordVideosAdded(report.Added())
	metrics.RecordLastSuccess()

	logger.Info("scan job finished",
		slog.Duration("duration", duration),
		slog.Int("fetched", report.Fetched()),
		slog.Int("added", report.Added()),
		slog.Bool("stopped", report.Stopped))

	notifyService.Dispatch(notify.NewReport(report))
}
