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
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/reading-reports-api/api/swagger"
	"github.com/noah-isme/reading-reports-api/internal/repository"
	"github.com/noah-isme/reading-reports-api/internal/service"
	"github.com/noah-isme/reading-reports-api/pkg/cache"
	"github.com/noah-isme/reading-reports-api/pkg/config"
	"github.com/noah-isme/reading-reports-api/pkg/database"
	"github.com/noah-isme/reading-reports-api/pkg/logger"
	"github.com/noah-isme/reading-reports-api/pkg/reportfile"
	"github.com/noah-isme/reading-reports-api/pkg/storage"
)

// @title Reading Reports API
// @version 1.0.0
// @description Combines reading platform exports and serves the summary dashboard
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

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

	svc, err := newApp(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to initialise services", zap.Error(err))
	}
	defer svc.close()

	svc.jobs.Start(ctx)
	defer svc.jobs.Stop()

	if cfg.Scheduler.Enabled {
		if err := svc.scheduler.Start(); err != nil {
			logr.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer svc.scheduler.Stop()
	}

	go svc.files.RunCleanup(ctx, cfg.Reports.CleanupInterval)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, svc, logr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "reports_dir", svc.storage.Dir())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

type app struct {
	storage   *storage.LocalStorage
	metrics   *service.MetricsService
	auth      *service.AuthService
	settings  *service.SettingsService
	accounts  *service.AccountService
	summaries *service.SummaryService
	files     *service.FileService
	dashboard *service.DashboardService
	jobs      *service.JobService
	scheduler *service.SchedulerService

	db    *sqlx.DB
	redis *redis.Client
}

func newApp(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*app, error) {
	locator := reportfile.NewLocator(cfg.Reports.Dir, cfg.Reports.FallbackDirs, logr)
	store, err := storage.NewLocalStorage(locator.PrimaryRoot())
	if err != nil {
		return nil, fmt.Errorf("reports directory: %w", err)
	}

	a := &app{storage: store, metrics: service.NewMetricsService()}
	validate := validator.New()

	a.files = service.NewFileService(store, storage.NewSignedURLSigner(cfg.Reports.SigningSecret, cfg.Reports.DownloadURLTTL),
		service.FileServiceConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Reports.ResultTTL}, logr)
	if cfg.Reports.CleanOnStart {
		if _, err := a.files.CleanAll(); err != nil {
			logr.Warn("reports directory clean failed", zap.Error(err))
		}
	}

	var cacheRepo service.CacheRepository
	if cfg.Dashboard.CacheEnabled {
		a.redis, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("dashboard cache disabled, redis unavailable", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(a.redis, repository.DefaultCachePrefix, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, a.metrics, cfg.Dashboard.CacheTTL, logr, cacheRepo != nil)

	jobParams := service.JobServiceParams{
		Runs:    repository.NewMemoryRunRepository(repository.DefaultMemoryRuns),
		Cache:   cacheSvc,
		Metrics: a.metrics,
		Logger:  logr,
	}
	if cfg.History.Enabled {
		a.db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("run history database: %w", err)
		}
		runRepo := repository.NewRunRepository(a.db)
		if err := runRepo.EnsureSchema(ctx); err != nil {
			a.close()
			return nil, fmt.Errorf("run history schema: %w", err)
		}
		jobParams.Runs = runRepo
	}

	a.auth = service.NewAuthService(validate, logr, service.AuthConfig{
		Username:          cfg.Admin.Username,
		PasswordHash:      cfg.Admin.PasswordHash,
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
	})
	a.settings = service.NewSettingsService(repository.NewSettingsRepository(cfg.Reports.SettingsFile), validate, logr)
	accountRepo := repository.NewAccountRepository(cfg.Reports.AccountsFile)
	a.accounts = service.NewAccountService(accountRepo, validate, logr)
	a.summaries = service.NewSummaryService(locator, logr)
	combiner := service.NewCombineService(locator, store, a.metrics, logr)

	a.dashboard = service.NewDashboardService(service.DashboardServiceParams{
		Summaries: a.summaries,
		Locator:   locator,
		Period:    a.settings,
		Files:     a.files,
		Cache:     cacheSvc,
		Logger:    logr,
		Config:    service.DashboardServiceConfig{Institution: cfg.Institution, CacheTTL: cfg.Dashboard.CacheTTL},
	})

	jobParams.Scraper = service.NewCommandScraper(cfg.Scraper.Command, cfg.Scraper.Timeout, store.Dir(), accountRepo.Path(), logr)
	jobParams.Combiner = combiner
	jobParams.Settings = a.settings
	a.jobs = service.NewJobService(jobParams)
	a.scheduler = service.NewSchedulerService(a.jobs, cfg.Scheduler.Spec, logr)

	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
