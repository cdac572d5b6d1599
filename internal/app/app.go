package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/solavalia/reviews-service/internal/cache"
	"github.com/solavalia/reviews-service/internal/config"
	"github.com/solavalia/reviews-service/internal/event"
	handler "github.com/solavalia/reviews-service/internal/handler/http"
	"github.com/solavalia/reviews-service/internal/repository/postgres"
	"github.com/solavalia/reviews-service/internal/service"
	"github.com/solavalia/reviews-service/pkg/database"
	"github.com/solavalia/reviews-service/pkg/health"
	"github.com/solavalia/reviews-service/pkg/kafka"
	"github.com/solavalia/reviews-service/pkg/middleware"
	"github.com/solavalia/reviews-service/pkg/tracing"
)

// App wires the service's dependencies and owns their lifecycle.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *kafka.Producer
	server         *http.Server
	tracerShutdown func(context.Context) error
}

// New builds the application: connects to PostgreSQL and Redis, runs
// migrations, creates the Kafka producer and assembles the HTTP server.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	tracerShutdown, err := tracing.Init(ctx, cfg.TracerConfig())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)

	pool, err := database.NewPostgresPool(ctx, cfg.PostgresDatabaseConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := database.RunMigrations(ctx, pool, postgres.Migrations, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisDatabaseConfig())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	producer := kafka.NewProducer(kafka.DefaultProducerConfig(cfg.Kafka.Brokers), logger)

	prometheus.MustRegister(database.NewPoolStatsCollector(pool, cfg.ServiceName))

	summaryCache := cache.NewSummaryCache(redisClient, cfg.Redis.CacheTTL)
	events := event.NewProducer(producer)

	reviewRepo := postgres.NewReviewRepository(pool)
	providerRepo := postgres.NewProviderRepository(pool)

	reviewService := service.NewReviewService(reviewRepo, providerRepo, events, summaryCache, cfg.Review, logger)
	ratingService := service.NewRatingService(reviewRepo, providerRepo, summaryCache, logger)

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", producer.Ping)

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.Environment = cfg.Environment

	router := handler.NewRouter(handler.RouterConfig{
		ReviewHandler: handler.NewReviewHandler(reviewService, logger),
		RatingHandler: handler.NewRatingHandler(ratingService, logger),
		Health:        healthHandler,
		Logger:        logger,
		ServiceName:   cfg.ServiceName,
		CORS:          corsConfig,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		producer:       producer,
		server:         server,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		return a.Shutdown()
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

// Shutdown stops the HTTP server gracefully and closes all connections.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error

	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}

	// Flush spans after the HTTP drain so in-flight request spans are kept.
	if err := a.tracerShutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
	}

	if err := a.producer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
	}

	if err := a.redis.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close redis client: %w", err))
	}

	a.pool.Close()

	a.logger.Info("shutdown complete")

	return errors.Join(errs...)
}
