package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/mhs-edu/scheduler-api/internal/handler"
	"github.com/mhs-edu/scheduler-api/internal/repository"
	"github.com/mhs-edu/scheduler-api/internal/service"
	"github.com/mhs-edu/scheduler-api/pkg/cache"
	"github.com/mhs-edu/scheduler-api/pkg/config"
	"github.com/mhs-edu/scheduler-api/pkg/database"
	"github.com/mhs-edu/scheduler-api/pkg/logger"
	corsmiddleware "github.com/mhs-edu/scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mhs-edu/scheduler-api/pkg/middleware/requestid"
)

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
	defer db.Close()

	metrics := service.NewMetricsService()

	cacheEnabled := false
	var cacheRepo service.CacheRepository
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, running without cache", "error", err)
	} else {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		cacheEnabled = true
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Scheduler.ScheduleCacheTTL, logr, cacheEnabled)

	termRepo := repository.NewTermRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	validate := validator.New()

	viewSvc := service.NewScheduleViewService(assignmentRepo, enrollmentRepo, cacheSvc, logr)
	warmSvc := service.NewScheduleWarmService(context.Background(), cacheSvc, viewSvc, logr)
	defer warmSvc.Close()

	generatorSvc := service.NewScheduleGeneratorService(
		termRepo,
		catalogRepo,
		sectionRepo,
		assignmentRepo,
		service.NewDemandEstimator(courseRepo, sectionRepo, cfg.Scheduler),
		warmSvc,
		metrics,
		validate,
		logr,
		cfg.Scheduler,
	)
	plannerSvc := service.NewStudentPlannerService(sectionRepo, courseRepo, enrollmentRepo, assignmentRepo, cacheSvc, validate, logr, cfg.Planner)

	archiveSvc, err := service.NewExportArchiveService(context.Background(), viewSvc, cfg.Export, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export archive", "error", err)
	}

	generatorHandler := handler.NewScheduleGeneratorHandler(generatorSvc)
	scheduleHandler := handler.NewScheduleHandler(viewSvc, archiveSvc)
	plannerHandler := handler.NewPlannerHandler(plannerSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/schedule/generate", generatorHandler.Generate)
		api.GET("/terms/:termId/schedule", scheduleHandler.TermSchedule)
		if cfg.Export.Enabled {
			api.GET("/terms/:termId/schedule/export", scheduleHandler.Export)
			api.POST("/terms/:termId/schedule/export/archive", scheduleHandler.Archive)
			api.GET("/downloads/:token", scheduleHandler.Download)
		}
		api.GET("/terms/:termId/sections/available", plannerHandler.AvailableSections)
		api.POST("/enrollments", plannerHandler.Enroll)
		api.POST("/enrollments/drop", plannerHandler.Drop)
		api.GET("/students/:studentId/progress", plannerHandler.Progress)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
