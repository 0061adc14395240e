// Command analytics starts the standalone query-analytics service.
//
// It consumes word-engine query events from Kafka, aggregates them in memory
// (queries per kind, latency percentiles, cache hit rate, failure and
// no-match rates, top queries), optionally snapshots the totals to
// PostgreSQL, and exposes them at GET /api/v1/analytics.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/analytics/snapshot"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/resilience"
)

const schemaTimeout = 10 * time.Second

// main consumes query events, aggregates them, and serves the totals until
// SIGINT/SIGTERM.
func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	aggregator := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents, analytics.HandleEvent(aggregator))
	defer consumer.Close()
	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("query event consumer error", "error", err)
		}
	}()
	slog.Info("query event consumer started", "topic", cfg.Kafka.Topics.QueryEvents)

	checker := health.NewChecker()
	checker.Register("kafka", health.Required(func(ctx context.Context) error {
		return kafka.Ping(ctx, cfg.Kafka.Brokers)
	}))

	var history analytics.SnapshotLister
	if cfg.Analytics.SnapshotEnabled {
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store := snapshot.NewStore(db)
		if err := resilience.WithTimeout(ctx, schemaTimeout, "snapshot schema", store.EnsureSchema); err != nil {
			slog.Error("failed to create snapshot schema", "error", err)
			os.Exit(1)
		}
		logPreviousSnapshot(ctx, store)
		saved := store.StartPeriodicSave(ctx, aggregator, cfg.Analytics.SnapshotInterval)
		defer func() { <-saved }()
		checker.Register("postgres", health.Optional(db.Ping))
		history = store
	}

	analyticsHandler := analytics.NewHandler(aggregator, history)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", analyticsHandler.Stats)
	mux.HandleFunc("GET /api/v1/analytics/history", analyticsHandler.History)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	chain := middleware.Chain(mux, middleware.RequestID, middleware.Metrics(m))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-shutdownDone

	slog.Info("analytics service stopped")
}

// logPreviousSnapshot reports the totals persisted by the last run.
func logPreviousSnapshot(ctx context.Context, store *snapshot.Store) {
	prev, err := store.Latest(ctx)
	if err != nil {
		slog.Warn("failed to load previous snapshot", "error", err)
		return
	}
	if prev == nil {
		return
	}
	slog.Info("previous analytics snapshot",
		"captured_at", prev.CapturedAt,
		"total_queries", prev.Stats.TotalQueries,
	)
}
