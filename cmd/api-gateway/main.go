package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-hod-api/internal/handler"
	"github.com/noah-isme/sma-hod-api/internal/models"
	"github.com/noah-isme/sma-hod-api/internal/repository"
	"github.com/noah-isme/sma-hod-api/internal/service"
	"github.com/noah-isme/sma-hod-api/pkg/cache"
	"github.com/noah-isme/sma-hod-api/pkg/config"
	"github.com/noah-isme/sma-hod-api/pkg/database"
	"github.com/noah-isme/sma-hod-api/pkg/jobs"
	"github.com/noah-isme/sma-hod-api/pkg/logger"
	"github.com/noah-isme/sma-hod-api/pkg/notify"
	"github.com/noah-isme/sma-hod-api/pkg/schoolapi"
)

// @title SMA HOD API
// @version 1.0.0
// @description Head-of-department dashboard backend
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	client := schoolapi.New(cfg.SchoolAPI)
	checks := map[string]handler.ReadinessCheck{}

	var redisClient redis.Cmdable
	if cfg.Cache.Enabled {
		rc, err := cache.NewRedis(ctx, cfg.Redis, 5*time.Second)
		if err != nil {
			logr.Warn("redis unavailable, last-known-good cache limited to memory", zap.Error(err))
		} else {
			defer rc.Close() //nolint:errcheck
			redisClient = rc
			checks["redis"] = func(ctx context.Context) error { return rc.Ping(ctx).Err() }
		}
	}
	cacheSvc := service.NewCacheService(service.CacheServiceParams{
		Repo:       repository.NewCacheRepository(redisClient),
		Metrics:    metrics,
		DefaultTTL: cfg.Cache.TTL,
		Logger:     logr,
		Enabled:    redisClient != nil,
	})

	loader, db, err := departmentLoader(ctx, cfg, client, logr)
	if err != nil {
		logr.Fatal("department source unavailable", zap.Error(err))
	}
	if db != nil {
		defer db.Close() //nolint:errcheck
		checks["postgres"] = func(ctx context.Context) error { return db.PingContext(ctx) }
	}
	if client.Configured() {
		checks["school_api"] = func(context.Context) error { return nil }
	}

	dispatch := service.NewDispatchService(service.DispatchServiceParams{
		Messages:    messageDeliverer(cfg, client, logr),
		Resources:   resourceForwarder(client),
		EnqueueWait: cfg.Dispatch.EnqueueWait,
		Metrics:     metrics,
		Logger:      logr,
	})
	queue := jobs.NewQueue("dispatch", dispatch.Handle, jobs.QueueConfig{
		Workers:    cfg.Dispatch.Workers,
		BufferSize: cfg.Dispatch.BufferSize,
		MaxRetries: cfg.Dispatch.MaxRetries,
		RetryDelay: cfg.Dispatch.RetryDelay,
		JobTimeout: cfg.SchoolAPI.Timeout,
		OnOutcome:  dispatch.OnOutcome,
		Logger:     logr,
	})
	dispatch.Bind(queue)
	queue.Start(ctx)

	var sink service.ResourceRequestSink
	if client.Configured() {
		sink = dispatch
	}

	departmentSource := service.NewFallbackSource[models.DepartmentSnapshot](service.FallbackSourceParams{
		Name: "department", Cache: cacheSvc, CacheTTL: cfg.Cache.TTL, Metrics: metrics, Logger: logr,
	})
	sessions := service.NewSessionRegistry(service.SessionRegistryParams{
		IdleTTL:       cfg.Sessions.IdleTTL,
		SweepInterval: cfg.Sessions.SweepInterval,
		MaxSessions:   cfg.Sessions.MaxSessions,
		Metrics:       metrics,
		Logger:        logr,
		Factory: func(ownerID, code string) *service.DepartmentStore {
			return service.NewDepartmentStore(service.DepartmentStoreParams{
				DepartmentCode: code,
				OwnerID:        ownerID,
				Loader:         loader,
				Messenger:      dispatch,
				ResourceSink:   sink,
				Stepper:        service.NewRandomBadgeStepper(cfg.HOD.StepSeed),
				Source:         departmentSource,
				Metrics:        metrics,
				Logger:         logr,
				Config: service.DepartmentStoreConfig{
					TickInterval:   cfg.HOD.TickInterval,
					RefreshTimeout: cfg.SchoolAPI.Timeout,
				},
			})
		},
	})
	go sessions.Run(ctx)

	var financeFetcher service.FinanceFetcher
	var userFetcher service.UserFetcher
	if client.Configured() {
		financeFetcher = client
		userFetcher = client
	}
	finance := service.NewFinanceService(financeFetcher, service.NewFallbackSource[models.FinancialOverview](service.FallbackSourceParams{
		Name: "finance", Cache: cacheSvc, CacheTTL: cfg.Cache.TTL, Metrics: metrics, Logger: logr,
	}), logr)
	users := service.NewUserDirectoryService(userFetcher, service.NewFallbackSource[models.UserPage](service.FallbackSourceParams{
		Name: "users", Cache: cacheSvc, CacheTTL: cfg.Cache.TTL, Metrics: metrics, Logger: logr,
	}), logr)

	router := newRouter(routerDeps{
		cfg:      cfg,
		logger:   logr,
		metrics:  metrics,
		verifier: service.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer),
		hod:      handler.NewHODHandler(sessions, service.NewReportService(), cfg.HOD.DepartmentCode),
		finance:  handler.NewFinanceHandler(finance),
		users:    handler.NewUserHandler(users),
		health:   handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("department_source", cfg.HOD.Source))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("http shutdown", zap.Error(err))
	}
	sessions.Close()
	queue.Stop()
}

func departmentLoader(ctx context.Context, cfg *config.Config, client *schoolapi.Client, logr *zap.Logger) (service.DepartmentLoader, *sqlx.DB, error) {
	switch cfg.HOD.Source {
	case config.DepartmentSourceAPI:
		if !client.Configured() {
			return nil, nil, errors.New("HOD_DEPARTMENT_SOURCE=api requires SCHOOL_API_BASE_URL")
		}
		return client, nil, nil
	case config.DepartmentSourcePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewDepartmentRepository(db), db, nil
	case config.DepartmentSourceNone, "":
		logr.Info("no department source configured, serving seed data")
		return nil, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown HOD_DEPARTMENT_SOURCE %q", cfg.HOD.Source)
	}
}

func messageDeliverer(cfg *config.Config, client *schoolapi.Client, logr *zap.Logger) service.MessageDeliverer {
	switch cfg.Messaging.Channel {
	case config.MessagingChannelSendGrid:
		if cfg.Messaging.SendGridAPIKey != "" {
			return notify.NewSendGridMessenger(notify.SendGridConfig{
				APIKey:    cfg.Messaging.SendGridAPIKey,
				FromName:  cfg.Messaging.FromName,
				FromEmail: cfg.Messaging.FromEmail,
				Logger:    logr,
			})
		}
		logr.Warn("SENDGRID_API_KEY missing, teacher messages will only be logged")
	case config.MessagingChannelAPI:
		if client.Configured() {
			return client
		}
		logr.Warn("school api not configured, teacher messages will only be logged")
	}
	return notify.NewLogMessenger(logr)
}

func resourceForwarder(client *schoolapi.Client) service.ResourceForwarder {
	if !client.Configured() {
		return nil
	}
	return client
}
