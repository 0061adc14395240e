// Command wordengine serves the word-puzzle engine over HTTP.
//
// It loads the word list named by dictionary.path once at start-up, builds
// the signature and length indexes, and answers anagram, fill-in-the-blank,
// Caesar, phrase-anagram and cipher queries under /api/v1. Redis caching,
// Kafka event publishing and PostgreSQL analytics snapshots are optional.
//
// Usage:
//
//	go run ./cmd/wordengine [-config configs/development.yaml]
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
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/indexer/loader"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/matcher"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/query/cache"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/query/executor"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/internal/query/handler"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/ratelimit"
	pkgredis "github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/resilience"
)

const schemaTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting word engine", "port", cfg.Server.Port, "dictionary", cfg.Dictionary.Path)

	loaded, err := loader.Load(cfg.Dictionary.Path, loader.Options{MinLength: cfg.Dictionary.MinWordLength})
	if err != nil {
		slog.Error("failed to load dictionary", "error", err)
		os.Exit(1)
	}
	engine, err := matcher.NewFromWords(loaded.Words)
	if err != nil {
		slog.Error("failed to build index", "error", err)
		os.Exit(1)
	}
	stats := engine.Index().Stats()
	slog.Info("dictionary indexed",
		"words", stats.Words,
		"signatures", stats.Signatures,
		"lengths", stats.Lengths,
		"skipped", loaded.Skipped,
	)

	m := metrics.New(prometheus.DefaultRegisterer)
	m.DictionaryWords.Set(float64(stats.Words))
	m.DictionarySignatures.Set(float64(stats.Signatures))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	checker := health.NewChecker()
	checker.Register("dictionary", func(ctx context.Context) health.ComponentHealth {
		if n := engine.Index().Dictionary.Len(); n > 0 {
			return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d words indexed", n)}
		}
		return health.ComponentHealth{Status: health.StatusDown, Message: "dictionary is empty"}
	})

	var queryCache *cache.QueryCache
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, query caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, m)
			checker.Register("redis", health.Optional(redisClient.Ping))
			slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	aggregator := analytics.NewAggregator()
	var history analytics.SnapshotLister
	var tracker handler.Tracker
	if cfg.Analytics.Enabled {
		var publisher analytics.Publisher
		if cfg.Kafka.Enabled {
			producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents)
			defer producer.Close()
			publisher = producer
			checker.Register("kafka", health.Optional(func(ctx context.Context) error {
				return kafka.Ping(ctx, cfg.Kafka.Brokers)
			}))
			slog.Info("query events publishing enabled", "topic", cfg.Kafka.Topics.QueryEvents)
		}
		collector := analytics.NewCollector(publisher, aggregator, cfg.Analytics.BufferSize, m)
		// The collector outlives the signal context so events from requests
		// still draining during shutdown are flushed by Close.
		collector.Start(context.Background())
		defer collector.Close()
		tracker = collector

		if cfg.Analytics.SnapshotEnabled {
			db, err := postgres.New(ctx, cfg.Postgres)
			if err != nil {
				slog.Warn("postgres unavailable, analytics snapshots disabled", "error", err)
			} else {
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
		}
	}

	exec := executor.New(engine, cfg.Engine)
	h := handler.New(engine, exec, queryCache, tracker, m, cfg.Engine)
	analyticsH := analytics.NewHandler(aggregator, history)

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /api/v1/analytics/history", analyticsH.History)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	mws := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.CORS(middleware.NewCORSConfig(cfg.Server.CORSOrigins)),
		middleware.Metrics(m),
	}
	if cfg.Server.RateLimit > 0 {
		limiter := ratelimit.New(cfg.Server.RateLimit, time.Minute)
		limiter.StartCleanup(ctx, 5*time.Minute)
		mws = append(mws, middleware.RateLimit(limiter))
	}
	mws = append(mws, middleware.Timeout(cfg.Server.WriteTimeout))
	chain := middleware.Chain(mux, mws...)

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

	slog.Info("word engine listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-shutdownDone

	slog.Info("word engine stopped")
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
