package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"clankervids/internal/config"
	hhttp "clankervids/internal/handler/http"
	"clankervids/internal/handler/http/requestid"
	hvideo "clankervids/internal/handler/http/video"
	"clankervids/internal/infra/adapter/persistence/postgres"
	"clankervids/internal/infra/db"
	"clankervids/internal/observability/logging"
	"clankervids/internal/observability/tracing"
	"clankervids/internal/usecase/rank"
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

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

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

	handler := setupServer(logger, database, cfg)
	runServer(logger, handler)
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// setupServer wires routes and the middleware chain.
func setupServer(logger *slog.Logger, database *sql.DB, cfg *config.Config) http.Handler {
	repo := postgres.NewVideoRepo(database)
	ranker := rank.New(cfg.Weights)

	mux := http.NewServeMux()
	hvideo.Register(mux, repo, ranker, logger)

	mux.Handle("/health", &hhttp.HealthHandler{DB: database, Version: getVersion()})
	mux.Handle("/healthz", &hhttp.HealthHandler{DB: database, Version: getVersion()})
	mux.Handle("/ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("/live", &hhttp.LiveHandler{})
	mux.Handle("/metrics", promhttp.Handler())

	// Order: request ID → tracing → recovery → logging → body limit → metrics
	return hhttp.Chain(mux,
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		hhttp.LimitRequestBody(1<<20),
		hhttp.Metrics,
	)
}

// runServer starts the HTTP server and blocks until SIGINT/SIGTERM, then
// shuts down gracefully.
func runServer(logger *slog.Logger, handler http.Handler) {
	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", getVersion()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
