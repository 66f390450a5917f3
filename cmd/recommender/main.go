// Command recommender serves movie recommendations, title search and fuzzy
// title resolution over HTTP, and optionally over the internal RPC layer.
//
// Usage:
//
//	go run ./cmd/recommender [-config configs/development.yaml]
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
	"time"

	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/recommender"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/recommender/cache"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/recommender/handler"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/grpc"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/ratelimit"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/tracing"
)

const (
	serviceName = "movie-recommender"
	version     = "1.0.0"
)

// trackers fans an event out to several sinks.
type trackers []recommender.Tracker

func (t trackers) Track(event interface{}) {
	for _, tr := range t {
		tr.Track(event)
	}
}

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting recommendation service",
		"port", cfg.Server.Port,
		"vectors", cfg.Catalog.VectorPath,
		"metadata", cfg.Catalog.MetadataPath,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	store := catalog.NewStore(cfg.Catalog.VectorPath, cfg.Catalog.MetadataPath)
	opts := []recommender.Option{
		recommender.WithMetrics(m),
		recommender.WithTracer(tracing.New(cfg.Tracing.Enabled, cfg.Tracing.SampleRate)),
	}

	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, response caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			breaker := resilience.NewCircuitBreaker("redis-cache", resilience.CircuitBreakerConfig{
				OnStateChange: func(name string, state int) {
					m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
				},
			})
			opts = append(opts, recommender.WithCache(cache.NewRedisBackend(redisClient), cache.Options{
				TTL:     cfg.Redis.CacheTTL,
				Breaker: breaker,
				Metrics: m,
			}))
			slog.Info("response cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	aggregator := analytics.NewAggregator()
	sinks := trackers{aggregator}
	if cfg.Analytics.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		defer producer.Close()
		collector := analytics.NewCollector(producer, analytics.CollectorConfig{
			BufferSize:    cfg.Analytics.BufferSize,
			BatchSize:     cfg.Analytics.BatchSize,
			FlushInterval: cfg.Analytics.FlushInterval,
		}, m)
		collector.Start(ctx)
		defer collector.Close()
		sinks = append(sinks, collector)
		slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.AnalyticsEvents)
	}
	opts = append(opts, recommender.WithTracker(sinks))

	svc := recommender.NewService(store, cfg.Recommend, cfg.Search, opts...)
	if cfg.Catalog.Eager {
		if err := svc.Warm(ctx); err != nil {
			slog.Error("catalog load failed", "error", err)
			os.Exit(1)
		}
	}

	checker := health.NewChecker(serviceName)
	checker.Register("catalog", func(ctx context.Context) health.ComponentHealth {
		if svc.Ready() {
			return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("loaded in %s", store.LoadDuration())}
		}
		if cfg.Catalog.Eager {
			return health.ComponentHealth{Status: health.StatusDown, Message: "catalog not loaded"}
		}
		return health.ComponentHealth{Status: health.StatusDegraded, Message: "catalog loads on first request"}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		return health.FromError(false, redisClient.Ping)(ctx)
	})
	if cfg.Analytics.Enabled {
		checker.Register("kafka", health.FromError(false, func(ctx context.Context) error {
			return kafka.Ping(ctx, cfg.Kafka.Brokers)
		}))
	}

	h := handler.New(svc, serviceName, version)
	mux := http.NewServeMux()
	h.Register(mux)
	analytics.NewHandler(aggregator, nil).Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	mws := []func(http.Handler) http.Handler{
		cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders:   []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		middleware.RequestID,
		middleware.AccessLog,
		middleware.Metrics(m),
	}
	if rl := cfg.Server.RateLimit; rl.Enabled {
		mws = append(mws, middleware.RateLimit(ratelimit.New(ctx, rl.RequestsPerWindow, rl.Window)))
		slog.Info("rate limiting enabled", "requests", rl.RequestsPerWindow, "window", rl.Window)
	}
	mws = append(mws, middleware.Timeout(cfg.Server.WriteTimeout))
	chain := middleware.Chain(mux, mws...)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout + time.Second,
	}

	var rpcServer *grpc.Server
	if cfg.RPC.Enabled {
		rpcServer = grpc.NewServer(cfg.Recommend.RequestTimeout)
		handler.RegisterRPC(rpcServer, svc)
		go func() {
			if err := rpcServer.ListenAndServe(fmt.Sprintf(":%d", cfg.RPC.Port)); err != nil {
				slog.Error("rpc server error", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if rpcServer != nil {
			rpcServer.Stop()
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("recommendation service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("recommendation service stopped")
}
