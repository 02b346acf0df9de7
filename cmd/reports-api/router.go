package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/reading-reports-api/internal/handler"
	"github.com/noah-isme/reading-reports-api/internal/middleware"
	"github.com/noah-isme/reading-reports-api/pkg/config"
	"github.com/noah-isme/reading-reports-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/reading-reports-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/reading-reports-api/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, a *app, logr *zap.Logger) *gin.Engine {
	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(a.metrics, prefix+"/metrics", prefix+"/health"))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(a.metrics)
	authHandler := handler.NewAuthHandler(a.auth)
	dashboardHandler := handler.NewDashboardHandler(a.dashboard, a.summaries)
	reportHandler := handler.NewReportHandler(a.files, a.jobs, logr)
	jobHandler := handler.NewJobHandler(a.jobs, logr)
	settingsHandler := handler.NewSettingsHandler(a.settings)
	accountHandler := handler.NewAccountHandler(a.accounts, logr)
	operator := middleware.JWT(a.auth)

	api := r.Group(prefix)
	api.GET("/health", metricsHandler.Health)
	api.GET("/metrics", metricsHandler.Prometheus)
	api.GET("/metrics/summary", metricsHandler.Snapshot)
	if cfg.Env != config.EnvProduction {
		api.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api.POST("/auth/login", authHandler.Login)

	dashboard := api.Group("/dashboard")
	dashboard.GET("/overview", dashboardHandler.Overview)
	dashboard.GET("/school", dashboardHandler.School)
	dashboard.GET("/classrooms", dashboardHandler.Classrooms)
	dashboard.GET("/comparison", dashboardHandler.Comparison)
	dashboard.GET("/skills", dashboardHandler.Skills)
	dashboard.GET("/top-readers", dashboardHandler.TopReaders)
	dashboard.GET("/level-up", dashboardHandler.LevelUp)
	dashboard.GET("/activity/:type", dashboardHandler.Activity)
	dashboard.GET("/export/pdf", dashboardHandler.ExportPDF)
	dashboard.GET("/export/csv", dashboardHandler.ExportCSV)

	reports := api.Group("/reports")
	reports.GET("", reportHandler.List)
	reports.GET("/latest", reportHandler.Latest)
	reports.GET("/zip", reportHandler.Zip)
	reports.GET("/download/:token", reportHandler.Download)
	reports.POST("/:filename/link", reportHandler.Link)
	reports.POST("/combine", operator, reportHandler.Combine)

	jobs := api.Group("/jobs")
	jobs.POST("/scrape", operator, jobHandler.Scrape)
	jobs.GET("/status", jobHandler.Status)
	jobs.GET("/runs", jobHandler.Runs)

	api.GET("/settings", settingsHandler.Get)
	api.PUT("/settings", operator, settingsHandler.Update)

	users := api.Group("/users", operator)
	users.GET("", accountHandler.List)
	users.PUT("", accountHandler.Replace)
	users.POST("/upload", accountHandler.Upload)

	return r
}
