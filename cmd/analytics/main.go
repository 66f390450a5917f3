// Command analytics runs the standalone analytics aggregator.
//
// It consumes recommend, search and resolve events from Kafka, keeps
// rolling statistics (fuzzy-resolution rate, not-found titles, latency
// percentiles, top titles), snapshots them to PostgreSQL and serves them
// at GET /api/v1/analytics.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/analytics/store"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", cfg.Analytics.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aggregator := analytics.NewAggregator()
	checker := health.NewChecker("recommend-analytics")

	var (
		snapshots *store.Store
		saved     <-chan struct{}
	)
	db, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, snapshots disabled", "error", err)
	} else {
		defer db.Close()
		snapshots = store.New(db)
		if err := snapshots.EnsureSchema(ctx); err != nil {
			slog.Error("analytics schema setup failed", "error", err)
			os.Exit(1)
		}
		latest, err := snapshots.LatestSnapshot(ctx)
		if err != nil {
			slog.Warn("could not restore analytics snapshot", "error", err)
		} else if latest != nil {
			aggregator.Restore(*latest)
			slog.Info("analytics restored from snapshot", "total_requests", latest.TotalRequests)
		}
		saved = snapshots.StartPeriodicSave(ctx, aggregator, cfg.Analytics.SnapshotInterval)
		checker.Register("postgres", health.FromError(false, db.Ping))
	}

	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, analytics.HandleEvent(aggregator))
	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		if err := consumer.Start(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
	}()
	slog.Info("analytics consumer started", "topic", cfg.Kafka.Topics.AnalyticsEvents, "group", cfg.Kafka.ConsumerGroup)

	checker.Register("kafka", health.FromError(true, func(ctx context.Context) error {
		return kafka.Ping(ctx, cfg.Kafka.Brokers)
	}))

	var history analytics.SnapshotLister
	if snapshots != nil {
		history = snapshots
	}
	mux := http.NewServeMux()
	analytics.NewHandler(aggregator, history).Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Analytics.Port),
		Handler:      middleware.Chain(mux, middleware.RequestID, middleware.AccessLog),
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
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	<-consumed
	if saved != nil {
		<-saved
	}
	slog.Info("analytics service stopped")
}
