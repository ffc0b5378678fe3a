package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/tasknest/backend/api/handler"
	"github.com/tasknest/backend/internal/config"
	"github.com/tasknest/backend/internal/infrastructure/cleanup"
	"github.com/tasknest/backend/internal/infrastructure/monitor"
	"github.com/tasknest/backend/internal/infrastructure/objectstore"
	pgInfra "github.com/tasknest/backend/internal/infrastructure/postgres"
	redisInfra "github.com/tasknest/backend/internal/infrastructure/redis"
	"github.com/tasknest/backend/internal/middleware"
	"github.com/tasknest/backend/internal/router"
	"github.com/tasknest/backend/internal/services"
	"github.com/tasknest/backend/internal/services/lifecycle"
	"github.com/tasknest/backend/internal/upload"
	"github.com/tasknest/backend/pkg/httpcontext"
	"github.com/tasknest/backend/pkg/logger"
	"github.com/tasknest/backend/repository/postgres"
	redisRepo "github.com/tasknest/backend/repository/redis"
	todoUC "github.com/tasknest/backend/usecase/todo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	journal, err := cleanup.Open(cfg.Cleanup.Path, "deletions")
	if err != nil {
		zapLogger.Fatal("failed to open cleanup journal", zap.Error(err))
	}
	manager.Register("cleanup_journal", func(ctx context.Context) error {
		return journal.Close()
	})

	store, err := objectstore.New(appCtx, cfg.Storage, journal, zapLogger)
	if err != nil {
		zapLogger.Fatal("object store connection failed", zap.Error(err))
	}

	sweeper := services.NewCleanupSweeper(journal, store, zapLogger, services.SweeperConfig{
		Interval:   cfg.Cleanup.SweepInterval,
		BatchSize:  cfg.Cleanup.BatchSize,
		MaxRetries: cfg.Cleanup.MaxRetry,
	})
	sweeper.Start()
	manager.Register("cleanup_sweeper", func(ctx context.Context) error {
		sweeper.Stop(ctx)
		return nil
	})

	mon := monitor.New(pool, redisClient, store, journal, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	todoRepo := postgres.NewTodoRepository(pool)
	listCache := redisRepo.NewTodoCache(redisClient, cfg.Redis.ListTTL, zapLogger)
	validator := upload.NewValidator(upload.Limits{
		MaxImageBytes: cfg.Upload.MaxImageBytes,
		MaxPDFBytes:   cfg.Upload.MaxPDFBytes,
	})

	todoUseCase := todoUC.New(todoRepo, store, validator, listCache, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Todo:   apiHandler.NewTodoHandler(todoUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	cors := middleware.CORS(cfg.CORS.AllowedOrigins, zapLogger)
	r := router.New(handlers, cors)

	server := &fasthttp.Server{
		Handler:            r.Handler,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxRequestBodySize: cfg.HTTP.MaxBodySize,
		Name:               cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
