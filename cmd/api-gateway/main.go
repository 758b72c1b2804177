package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/student-records-api/api/swagger"
	"github.com/noah-isme/student-records-api/internal/handler"
	"github.com/noah-isme/student-records-api/internal/middleware"
	"github.com/noah-isme/student-records-api/internal/repository"
	"github.com/noah-isme/student-records-api/internal/service"
	"github.com/noah-isme/student-records-api/pkg/cache"
	"github.com/noah-isme/student-records-api/pkg/config"
	"github.com/noah-isme/student-records-api/pkg/database"
	"github.com/noah-isme/student-records-api/pkg/jobs"
	"github.com/noah-isme/student-records-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/student-records-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/student-records-api/pkg/middleware/requestid"
)

// @title Student Records API
// @version 1.0.0
// @description Academic records service: students, modules, results, CGPA reconciliation and dashboard rollups
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	studentRepo := repository.NewStudentRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	resultRepo := repository.NewResultRepository(db)
	cgpaRepo := repository.NewCgpaRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)
	reconcileSvc := service.NewReconcileService(resultRepo, studentRepo, cgpaRepo, activityRepo, cacheRepo, logr)
	studentSvc := service.NewStudentService(studentRepo, resultRepo, cgpaRepo, alertRepo, activityRepo, validate, logr)
	moduleSvc := service.NewModuleService(moduleRepo, activityRepo, validate, logr)
	resultSvc := service.NewResultService(resultRepo, studentRepo, moduleRepo, reconcileSvc, activityRepo, validate, logr)
	alertSvc := service.NewAlertService(alertRepo, studentRepo, validate, logr)
	exportSvc := service.NewExportService(studentSvc, studentSvc, studentSvc, activityRepo, logr)
	dashboardSvc := service.NewDashboardService(dashboardRepo, activityRepo, cacheSvc, logr, service.DashboardServiceConfig{
		CacheTTL:    cfg.Dashboard.CacheTTL,
		AtRiskLimit: cfg.Dashboard.AtRiskLimit,
	})
	bulkSvc := service.NewBulkRecomputeService(dashboardRepo, reconcileSvc, metricsSvc, activityRepo, jobs.QueueConfig{
		Workers:    cfg.Recompute.Workers,
		MaxRetries: cfg.Recompute.MaxRetries,
		RetryDelay: cfg.Recompute.RetryDelay,
		Logger:     logr,
	}, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bulkSvc.Start(ctx)
	defer bulkSvc.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix + "/v1")
	handler.RegisterRoutes(api, handler.Handlers{
		Students:       handler.NewStudentHandler(studentSvc, resultSvc, reconcileSvc, exportSvc),
		Modules:        handler.NewModuleHandler(moduleSvc),
		Results:        handler.NewResultHandler(resultSvc),
		Dashboard:      handler.NewDashboardHandler(dashboardSvc, bulkSvc),
		Alerts:         handler.NewAlertHandler(alertSvc),
		Metrics:        metricsHandler,
		ExportsEnabled: cfg.Exports.Enabled,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
