package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/focushub/backend/api/handler"
	"github.com/focushub/backend/internal/config"
	"github.com/focushub/backend/internal/events"
	"github.com/focushub/backend/internal/infrastructure/buffer"
	"github.com/focushub/backend/internal/infrastructure/gemini"
	"github.com/focushub/backend/internal/infrastructure/monitor"
	pgInfra "github.com/focushub/backend/internal/infrastructure/postgres"
	redisInfra "github.com/focushub/backend/internal/infrastructure/redis"
	"github.com/focushub/backend/internal/middleware"
	"github.com/focushub/backend/internal/router"
	"github.com/focushub/backend/internal/scheduler"
	"github.com/focushub/backend/internal/services"
	"github.com/focushub/backend/internal/services/lifecycle"
	"github.com/focushub/backend/pkg/httpcontext"
	"github.com/focushub/backend/pkg/logger"
	"github.com/focushub/backend/repository/postgres"
	redisRepo "github.com/focushub/backend/repository/redis"
	authUC "github.com/focushub/backend/usecase/auth"
	commitmentUC "github.com/focushub/backend/usecase/commitment"
	rolloverUC "github.com/focushub/backend/usecase/rollover"
	statsUC "github.com/focushub/backend/usecase/stats"
	suggestUC "github.com/focushub/backend/usecase/suggest"
	taskUC "github.com/focushub/backend/usecase/task"
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

	if cfg.Migrations.Enabled {
		if err := pgInfra.RunMigrations(cfg.Database.URL, cfg.Migrations.Path, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
	}

	pool, err := pgInfra.NewPool(appCtx, cfg)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(appCtx, cfg)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "buffer")
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(pool, redisClient, bufferStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	statsRepo := postgres.NewStatsRepository(pool)
	commitmentRepo := postgres.NewCommitmentRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)
	dayLockRepo := redisRepo.NewDayLockRepository(redisClient, time.Minute)

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		taskRepo,
		statsRepo,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  cfg.Buffer.BatchSize,
			MaxRetries: cfg.Buffer.MaxRetry,
		},
	)
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})

	bufferBridge := services.NewBufferBridge(bufferProcessor)

	bus := events.NewBus(zapLogger)
	manager.Register("event_bus", func(ctx context.Context) error {
		bus.Close()
		return nil
	})

	reminderScheduler := scheduler.New(
		scheduler.NewLogNotifier(zapLogger),
		zapLogger,
		scheduler.Config{
			StartLead:       cfg.Reminders.StartLead,
			DeadlineLead:    cfg.Reminders.DeadlineLead,
			WorkNagInterval: cfg.Reminders.WorkNagInterval,
		},
	)
	reminderScheduler.Start(bus.Subscribe())
	manager.Register("reminder_scheduler", func(ctx context.Context) error {
		reminderScheduler.Stop()
		return nil
	})

	geminiClient := gemini.NewClient(gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
		Timeout: cfg.Gemini.Timeout,
	}, zapLogger)

	authUseCase := authUC.New(userRepo, sessionRepo, statsRepo, commitmentRepo, cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	taskUseCase := taskUC.New(taskRepo, bufferBridge, bus, zapLogger)
	statsUseCase := statsUC.New(statsRepo, bufferBridge, zapLogger)
	commitmentManager := commitmentUC.New(commitmentRepo, statsRepo, zapLogger)
	rolloverEngine := rolloverUC.New(taskRepo, statsRepo, commitmentRepo, dayLockRepo, zapLogger)
	suggestUseCase := suggestUC.New(geminiClient, taskUseCase, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:       apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.JWT.SessionTTL),
		Task:       apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Stats:      apiHandler.NewStatsHandler(statsUseCase, ctxAdapter, zapLogger),
		Commitment: apiHandler.NewCommitmentHandler(commitmentManager, ctxAdapter, zapLogger),
		Checkin:    apiHandler.NewCheckinHandler(rolloverEngine, ctxAdapter, zapLogger),
		Suggest:    apiHandler.NewSuggestHandler(suggestUseCase, ctxAdapter, zapLogger),
		Health:     apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
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
