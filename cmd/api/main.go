package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/queuely/queue-service/internal/api/http"
	"github.com/queuely/queue-service/internal/api/http/handlers"
	"github.com/queuely/queue-service/internal/auth"
	"github.com/queuely/queue-service/internal/cache"
	"github.com/queuely/queue-service/internal/config"
	"github.com/queuely/queue-service/internal/events"
	"github.com/queuely/queue-service/internal/notify"
	"github.com/queuely/queue-service/internal/observability"
	"github.com/queuely/queue-service/internal/persistence"
	"github.com/queuely/queue-service/internal/queuestate"
	"github.com/queuely/queue-service/internal/repository"
	"github.com/queuely/queue-service/internal/service"
	"github.com/queuely/queue-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	queueRepo := repository.NewQueueRepository(pool)

	var publisher notify.Publisher
	var pushes *worker.PushWorker
	if pn := notify.NewPubNubPublisher(cfg.Notification); pn != nil {
		pushes = worker.NewPushWorker(pn, logger, cfg.Notification.PushWorkers, cfg.Notification.PushBuffer, 5*time.Second)
		pushes.Start()
		publisher = pushes
	} else {
		logger.Info("pubnub keys not set, push notifications disabled")
	}
	notificationService := service.NewNotificationService(dispatcher, publisher, logger)
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: userRepo})
	queueService := service.NewQueueService(service.QueueDependencies{
		QueueRepo:   queueRepo,
		Manager:     queuestate.NewManager(),
		SearchCache: cache.NewSearchCache(redis.Client, cfg.Queue.SearchCacheTTL()),
		Metrics:     metrics,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	searchLimiter := cache.NewRateLimiter(redis.Client, "search", cfg.Queue.SearchRateLimitPerMinute, time.Minute)

	go worker.NewGaugeRefresher(queueRepo, metrics, logger, 30*time.Second).Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareOptions{
		Timeout:          cfg.App.RequestTimeout(),
		CORSAllowOrigins: cfg.App.CORSAllowOrigins,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Queues:         handlers.NewQueuesHandler(queueService),
		AuthMiddleware: authMiddleware,
		SearchLimiter:  searchLimiter,
		Metrics:        metrics,
		Logger:         logger,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	if pushes != nil {
		drainCtx, drainCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer drainCancel()
		if err := pushes.Stop(drainCtx); err != nil {
			logger.Warn("pending pushes dropped", zap.Error(err))
		}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
