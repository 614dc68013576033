package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habit-garden/internal/clock"
	"habit-garden/internal/config"
	"habit-garden/internal/domain/repository"
	"habit-garden/internal/domain/service"
	"habit-garden/internal/domain/streak"
	cronpkg "habit-garden/internal/infrastructure/cron"
	infradb "habit-garden/internal/infrastructure/db"
	"habit-garden/internal/infrastructure/genai"
	"habit-garden/internal/infrastructure/kafka"
	"habit-garden/internal/infrastructure/memory"
	"habit-garden/internal/infrastructure/postgres"
	redisinfra "habit-garden/internal/infrastructure/redis"
	"habit-garden/internal/logger"
	"habit-garden/internal/metrics"
	"habit-garden/internal/readmodel"
	servicepkg "habit-garden/internal/service"
	grpctransport "habit-garden/internal/transport/grpc"
	"habit-garden/internal/transport/http/handler"
	"habit-garden/internal/transport/http/middleware"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// rateLimitSweep is how often idle rate limiter entries are dropped
const rateLimitSweep = 5 * time.Minute

// App represents the application
type App struct {
	config      *config.Config
	logger      *zap.Logger
	httpServer  *http.Server
	grpcServer  *grpctransport.Server
	nudgeCheck  *cronpkg.NudgeChecker
	limiter     *middleware.RateLimiter
	store       *readmodel.Store
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	redisNotify *redisinfra.Notifier
	producer    *kafka.Producer
}

// New creates a new application
func New() (*App, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	log = log.With(
		zap.String("service", cfg.Service.Name),
		zap.String("env", cfg.Service.Environment),
	)
	log.Info("config_loaded", zap.String("version", cfg.Service.Version))

	app := &App{
		config: cfg,
		logger: log,
		store:  readmodel.New(),
	}
	if err := app.init(context.Background()); err != nil {
		app.close()
		return nil, err
	}
	return app, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.config

	clk, err := clock.NewSystem(cfg.Clock.Timezone)
	if err != nil {
		return fmt.Errorf("failed to create clock: %w", err)
	}
	policy, err := streak.ParsePolicy(cfg.Streak.UncheckPolicy)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Storage
	var (
		habitRepo    repository.HabitRepository
		activityRepo repository.ActivityRepository
		userRepo     repository.UserRepository
	)
	if cfg.Database.Host != "" {
		a.dbPool, err = infradb.NewPostgresPool(ctx, &cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		a.logger.Info("postgres_connected", zap.String("host", cfg.Database.Host))

		if cfg.Database.Migrate {
			if _, err := infradb.Migrate(ctx, a.dbPool, a.logger); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
		}

		habitRepo = postgres.NewHabitRepository(a.dbPool)
		activityRepo = postgres.NewActivityRepository(a.dbPool)
		userRepo = postgres.NewUserRepository(a.dbPool)
	} else {
		a.logger.Warn("storage_in_memory", zap.String("reason", "database.host is empty"))
		habitRepo = memory.NewHabitRepository()
		activityRepo = memory.NewActivityRepository()
		userRepo = memory.NewUserRepository()
	}

	// Change propagation
	var notifier service.Notifier = memory.NewNotifier()
	if cfg.Redis.Enabled {
		a.redisClient, err = redisinfra.NewClient(ctx, &cfg.Redis, a.logger)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redisNotify = redisinfra.NewNotifier(a.redisClient, a.logger)
		notifier = a.redisNotify
	}

	var publisher service.EventPublisher
	if cfg.Kafka.Enabled {
		a.producer = kafka.NewProducer(&cfg.Kafka, a.logger)
		publisher = a.producer
		a.logger.Info("kafka_producer_ready", zap.String("topic", cfg.Kafka.Topic))
	}

	var generator service.Generator
	if cfg.GenAI.Enabled {
		g, err := genai.NewGenerator(ctx, cfg.GenAI, a.logger)
		if err != nil {
			return fmt.Errorf("failed to create generator: %w", err)
		}
		generator = g
	}

	// Services
	habitService := servicepkg.NewHabitService(habitRepo, a.store, notifier, publisher, clk, streak.New(policy), a.logger, m)
	activityService := servicepkg.NewActivityService(activityRepo, clk, a.logger, m)
	friendService := servicepkg.NewFriendService(userRepo, clk, a.logger)
	motivationService := servicepkg.NewMotivationService(habitRepo, userRepo, generator, clk, a.logger, m)
	a.logger.Info("services_initialized", zap.String("uncheck_policy", string(policy)))

	if cfg.Scheduler.Enabled {
		a.nudgeCheck = cronpkg.NewNudgeChecker(habitService, cfg.Scheduler.CheckInterval, a.logger)
	} else {
		a.logger.Info("nudge_checker_disabled")
	}

	// HTTP
	a.limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitPerMinute)
	routerCfg := handler.RouterConfig{
		JWTSecret:      []byte(cfg.JWT.Secret),
		JWTIssuer:      cfg.JWT.Issuer,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Gatherer:       registry,
		Swagger:        cfg.HTTP.SwaggerEnabled,
	}
	if cfg.Metrics.Enabled {
		routerCfg.MetricsPath = cfg.Metrics.Path
	}
	router := handler.NewRouter(
		handler.NewHabitHandler(habitService, motivationService, notifier, a.logger),
		handler.NewActivityHandler(activityService, a.logger),
		handler.NewFriendHandler(friendService, habitService, motivationService, a.logger),
		a.limiter,
		m,
		a.logger,
		routerCfg,
	)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	a.grpcServer = grpctransport.NewServer(cfg.GRPC.Port, a.logger)
	return nil
}

// Run starts the application and blocks until SIGINT or SIGTERM
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// Other instances write through redis too; keep the read model in step
	if a.redisNotify != nil {
		changes, err := a.redisNotify.SubscribeAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to follow habit changes: %w", err)
		}
		go a.store.Follow(ctx, changes)
	}

	go a.limiter.Cleanup(ctx, rateLimitSweep)

	if a.nudgeCheck != nil {
		if err := a.nudgeCheck.Start(); err != nil {
			return fmt.Errorf("failed to start nudge checker: %w", err)
		}
	}

	go func() {
		if err := a.grpcServer.Start(); err != nil {
			a.logger.Error("grpc_server_error", zap.Error(err))
			quit <- syscall.SIGTERM
		}
	}()

	go func() {
		a.logger.Info("http_server_listening", zap.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http_server_error", zap.Error(err))
			quit <- syscall.SIGTERM
		}
	}()

	// Wait for interrupt signal
	sig := <-quit
	a.logger.Info("shutting_down", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.config.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http_shutdown_failed", zap.Error(err))
	}
	a.grpcServer.Stop()

	if a.nudgeCheck != nil {
		a.nudgeCheck.Stop()
	}

	cancel()
	a.close()

	a.logger.Info("shutdown_complete")
	_ = a.logger.Sync()
	return nil
}

// close releases external connections
func (a *App) close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka_close_failed", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis_close_failed", zap.Error(err))
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
	}
}
