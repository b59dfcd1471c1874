package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/VipuDevAI/parikshan-ops-api/api/swagger"
	"github.com/VipuDevAI/parikshan-ops-api/internal/handler"
	"github.com/VipuDevAI/parikshan-ops-api/internal/middleware"
	"github.com/VipuDevAI/parikshan-ops-api/internal/models"
	"github.com/VipuDevAI/parikshan-ops-api/internal/repository"
	"github.com/VipuDevAI/parikshan-ops-api/internal/service"
	"github.com/VipuDevAI/parikshan-ops-api/pkg/cache"
	"github.com/VipuDevAI/parikshan-ops-api/pkg/config"
	"github.com/VipuDevAI/parikshan-ops-api/pkg/database"
	"github.com/VipuDevAI/parikshan-ops-api/pkg/logger"
	corsmiddleware "github.com/VipuDevAI/parikshan-ops-api/pkg/middleware/cors"
	reqidmiddleware "github.com/VipuDevAI/parikshan-ops-api/pkg/middleware/requestid"
)

// @title Parikshan Ops API
// @version 0.1.0
// @description Substitute-teacher assignment engine and leave approval gate
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The config cache degrades to per-request DB reads without Redis.
		logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}

	teacherRepo := repository.NewTeacherRepository(db)
	wingRepo := repository.NewWingRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	substitutionRepo := repository.NewSubstitutionRepository(db)
	schoolConfigRepo := repository.NewSchoolConfigRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	authService := service.NewAuthService(cfg.JWT, logr)
	metricsService := service.NewMetricsService()
	configService := service.NewConfigService(schoolConfigRepo, cacheRepo, cfg.Substitution.ConfigCacheTTL, logr)

	notificationService := service.NewNotificationService(
		service.NewLogNotifier(logr),
		substitutionRepo,
		cfg.Notifications,
		logr,
	)
	if cfg.Notifications.Enabled {
		notificationService.Start(context.Background())
		defer notificationService.Stop()
	}

	substitutionService := service.NewSubstitutionService(
		substitutionRepo,
		timetableRepo,
		teacherRepo,
		sectionRepo,
		wingRepo,
		leaveRepo,
		configService,
		notificationService,
		metricsService,
		cfg.Substitution,
		logr,
	)
	leaveService := service.NewLeaveService(
		db,
		leaveRepo,
		wingRepo,
		teacherRepo,
		substitutionService,
		metricsService,
		cfg.Substitution,
		nil,
		logr,
	)
	exportService := service.NewExportService(substitutionRepo, cfg.Reports.Enabled, logr)

	leaveHandler := handler.NewLeaveHandler(leaveService)
	substitutionHandler := handler.NewSubstitutionHandler(substitutionService, exportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authService))
	{
		api.POST("/leaves", leaveHandler.Submit)
		api.GET("/leaves", leaveHandler.List)
		api.GET("/substitutions", substitutionHandler.List)
		api.GET("/substitutions/unfilled", substitutionHandler.Unfilled)

		approvers := api.Group("")
		approvers.Use(middleware.RequireRoles(models.UserRoleAdmin, models.UserRolePrincipal))
		{
			approvers.POST("/leaves/:id/approve", leaveHandler.Approve)
			approvers.POST("/leaves/:id/reject", leaveHandler.Reject)
			approvers.POST("/substitutions/allocate", substitutionHandler.Allocate)
			approvers.GET("/substitutions/report", substitutionHandler.Report)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
