// Command analytics runs the query analytics aggregator on its own.
//
// It consumes recommendation query events from Kafka, aggregates them in
// memory (query mix by kind and outcome, latency percentiles, cache hit
// rate, most requested titles and users) and serves GET /api/v1/analytics.
// With -snapshots it also persists periodic snapshots to PostgreSQL.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml] [-snapshots]
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

	"github.com/ravindradesineni/Movie-recommendation/internal/analytics"
	"github.com/ravindradesineni/Movie-recommendation/internal/analytics/aggregator"
	"github.com/ravindradesineni/Movie-recommendation/pkg/config"
	"github.com/ravindradesineni/Movie-recommendation/pkg/health"
	"github.com/ravindradesineni/Movie-recommendation/pkg/kafka"
	"github.com/ravindradesineni/Movie-recommendation/pkg/logger"
	"github.com/ravindradesineni/Movie-recommendation/pkg/middleware"
	"github.com/ravindradesineni/Movie-recommendation/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	snapshots := flag.Bool("snapshots", false, "persist periodic snapshots to PostgreSQL")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup("analytics", cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", cfg.Server.Port, "topic", cfg.Kafka.Topics.QueryEvents)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agg := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents, analytics.HandleEvent(agg))
	agg.Consume(consumer)
	go func() {
		if err := agg.Start(ctx); err != nil {
			slog.Error("aggregator error", "error", err)
		}
	}()

	checker := health.NewChecker()
	checker.Register("kafka", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusUp, Message: "consumer active"}
	})

	analyticsHandler := analytics.NewHandler(agg)
	if *snapshots {
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		// the standalone service sees events from every catalog
		store := aggregator.NewStore(db, "all")
		if err := store.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare snapshot table", "error", err)
			os.Exit(1)
		}
		store.StartPeriodicSave(ctx, agg, cfg.Analytics.SnapshotInterval)
		analyticsHandler.WithHistory(store)
		checker.Register("postgres", health.Ping(db.Ping, health.StatusDegraded))
	}

	mux := http.NewServeMux()
	analyticsHandler.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
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

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("analytics service stopped")
}
