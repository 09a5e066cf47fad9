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

	"github.com/ravindradesineni/Movie-recommendation/internal/analytics"
	"github.com/ravindradesineni/Movie-recommendation/internal/analytics/aggregator"
	"github.com/ravindradesineni/Movie-recommendation/internal/api"
	"github.com/ravindradesineni/Movie-recommendation/internal/bootstrap"
	"github.com/ravindradesineni/Movie-recommendation/internal/recommender/cache"
	"github.com/ravindradesineni/Movie-recommendation/pkg/config"
	"github.com/ravindradesineni/Movie-recommendation/pkg/health"
	"github.com/ravindradesineni/Movie-recommendation/pkg/kafka"
	"github.com/ravindradesineni/Movie-recommendation/pkg/logger"
	"github.com/ravindradesineni/Movie-recommendation/pkg/metrics"
	"github.com/ravindradesineni/Movie-recommendation/pkg/middleware"
	"github.com/ravindradesineni/Movie-recommendation/pkg/postgres"
	pkgredis "github.com/ravindradesineni/Movie-recommendation/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup("recommender", cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting recommender service", "port", cfg.Server.Port, "data_source", cfg.Data.Source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		metrics.Serve(ctx, metrics.NewServer(cfg.Metrics.Port, metrics.Handler()))
	}

	var db *postgres.Client
	if cfg.Data.Source == "postgres" {
		db, err = postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	src, err := bootstrap.Source(cfg, db)
	if err != nil {
		slog.Error("failed to open data source", "error", err)
		os.Exit(1)
	}
	catalog, _, err := bootstrap.LoadCatalog(ctx, cfg, src, m)
	if err != nil {
		slog.Error("failed to build catalog", "error", err)
		os.Exit(1)
	}

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, recommendation caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, catalog.Fingerprint(), m)
			slog.Info("recommendation cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	agg := analytics.NewAggregator()
	var tracker analytics.Tracker = agg
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents)
		defer producer.Close()
		collector := analytics.NewCollector(producer, cfg.Analytics.BufferSize)
		collector.Start(ctx)
		defer collector.Close()
		tracker = collector

		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents, analytics.HandleEvent(agg))
		agg.Consume(consumer)
		go func() {
			if err := agg.Start(ctx); err != nil {
				slog.Error("analytics aggregator error", "error", err)
			}
		}()
		slog.Info("query analytics via kafka", "topic", cfg.Kafka.Topics.QueryEvents)
	}
	analyticsHandler := analytics.NewHandler(agg)
	if db != nil && cfg.Analytics.SnapshotInterval > 0 {
		store := aggregator.NewStore(db, catalog.Fingerprint())
		if err := store.EnsureSchema(ctx); err != nil {
			slog.Warn("analytics snapshots disabled", "error", err)
		} else {
			store.StartPeriodicSave(ctx, agg, cfg.Analytics.SnapshotInterval)
			analyticsHandler.WithHistory(store)
		}
	}

	checker := health.NewChecker()
	checker.Register("catalog", func(ctx context.Context) health.ComponentHealth {
		if n := len(catalog.Titles()); n > 0 {
			return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d titles", n)}
		}
		return health.ComponentHealth{Status: health.StatusDegraded, Message: "catalog is empty"}
	})
	if redisClient != nil {
		checker.Register("redis", health.Ping(redisClient.Ping, health.StatusDegraded))
	}
	if db != nil {
		checker.Register("postgres", health.Ping(db.Ping, health.StatusDegraded))
	}

	h := api.New(catalog, queryCache, tracker, m, cfg.Recommender.DefaultTopN, cfg.Recommender.MaxTopN)

	mux := http.NewServeMux()
	h.Register(mux)
	analyticsHandler.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if cfg.Server.RateLimit > 0 {
		limiter := middleware.NewLimiter(cfg.Server.RateLimit, time.Minute)
		go limiter.Sweep(ctx)
		chain = middleware.RateLimit(limiter)(chain)
	}
	chain = middleware.Metrics(m)(chain)
	if len(cfg.Server.CORSOrigins) > 0 {
		chain = middleware.CORS(cfg.Server.CORSOrigins)(chain)
	}
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("recommender service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("recommender service stopped")
}
