package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ckcelina/my-wishlist-sub005/internal/auth"
	"github.com/ckcelina/my-wishlist-sub005/internal/config"
	"github.com/ckcelina/my-wishlist-sub005/internal/event"
	"github.com/ckcelina/my-wishlist-sub005/internal/extractor"
	handler "github.com/ckcelina/my-wishlist-sub005/internal/handler/http"
	"github.com/ckcelina/my-wishlist-sub005/internal/notifier"
	"github.com/ckcelina/my-wishlist-sub005/internal/repository/postgres"
	redisrepo "github.com/ckcelina/my-wishlist-sub005/internal/repository/redis"
	"github.com/ckcelina/my-wishlist-sub005/internal/service"
	"github.com/ckcelina/my-wishlist-sub005/migrations"
	"github.com/ckcelina/my-wishlist-sub005/pkg/database"
	"github.com/ckcelina/my-wishlist-sub005/pkg/health"
	"github.com/ckcelina/my-wishlist-sub005/pkg/httpclient"
	pkgkafka "github.com/ckcelina/my-wishlist-sub005/pkg/kafka"
	"github.com/ckcelina/my-wishlist-sub005/pkg/middleware"
	"github.com/ckcelina/my-wishlist-sub005/pkg/tracing"
)

// App wires together all dependencies and runs the wishlist service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "wishlist",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRatio,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Initialize Redis. The guest view cache is optional: when Redis is
	// unreachable the service starts without it and serves views from
	// PostgreSQL directly.
	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Warn("redis unavailable, guest view caching disabled",
			slog.String("addr", cfg.RedisAddr()),
			slog.String("error", err.Error()),
		)
		rdb = nil
	} else {
		logger.Info("connected to Redis", slog.String("addr", cfg.RedisAddr()))
	}

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Repositories.
	itemRepo := postgres.NewItemRepository(pool)
	historyRepo := postgres.NewPriceHistoryRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)
	storeRepo := postgres.NewStoreRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	sharedRepo := postgres.NewSharedWishlistRepository(pool)
	reservationRepo := postgres.NewReservationRepository(pool)

	var viewCache service.ViewCache
	if rdb != nil {
		viewCache = redisrepo.NewShareCache(rdb, time.Duration(cfg.ShareCacheTTLSeconds)*time.Second)
	}

	// Event producer and notification dispatch.
	eventProducer := event.NewProducer(producer, logger)
	alertNotifier := notifier.NewKafkaNotifier(producer, logger)

	// HTTP client with circuit breaker for the price extraction service.
	baseClient := httpclient.New(httpclient.Config{
		Timeout:         time.Duration(cfg.ExtractTimeoutSeconds) * time.Second,
		MaxRetries:      2,
		RetryWaitMin:    500 * time.Millisecond,
		RetryWaitMax:    5 * time.Second,
		MaxConnsPerHost: 100,
	})
	cbClient := httpclient.NewCircuitBreakerClient(baseClient, httpclient.CircuitBreakerConfig{
		Name:         "price-extractor",
		MaxRequests:  3,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.6,
		MinRequests:  5,
	}, logger)
	priceExtractor := extractor.NewHTTPExtractor(cbClient, cfg.ExtractorURL, logger)

	// Services.
	alertService := service.NewAlertService(settingsRepo, itemRepo, alertNotifier, logger)
	trackerService := service.NewTrackerService(
		itemRepo,
		historyRepo,
		priceExtractor,
		eventProducer,
		alertService,
		logger,
		cfg.RefreshConcurrency,
		time.Duration(cfg.ExtractTimeoutSeconds)*time.Second,
	)
	availabilityService := service.NewAvailabilityService(storeRepo, locationRepo, logger)
	sharingService := service.NewSharingService(sharedRepo, reservationRepo, itemRepo, eventProducer, viewCache, logger)

	// Token validator bridging to the shared-secret verifier.
	verifier := auth.NewVerifier(cfg.JWTSecret)
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := verifier.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
		}, nil
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})
	if rdb != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	// HTTP router.
	router := handler.NewRouter(
		trackerService,
		alertService,
		availabilityService,
		sharingService,
		handler.RouterConfig{
			HealthHandler:  healthHandler,
			TokenValidator: tokenValidator,
			AllowedOrigins: cfg.CORSAllowedOrigins,
		},
		logger,
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		rdb:            rdb,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components: drain HTTP first, then flush
// spans, then close the broker and stores.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
