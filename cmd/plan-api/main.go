package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/zut-mobile/plan-api/internal/handler"
	"github.com/zut-mobile/plan-api/internal/middleware"
	"github.com/zut-mobile/plan-api/internal/repository"
	"github.com/zut-mobile/plan-api/internal/service"
	"github.com/zut-mobile/plan-api/pkg/cache"
	"github.com/zut-mobile/plan-api/pkg/config"
	"github.com/zut-mobile/plan-api/pkg/database"
	"github.com/zut-mobile/plan-api/pkg/logger"
	corsmiddleware "github.com/zut-mobile/plan-api/pkg/middleware/cors"
	reqidmiddleware "github.com/zut-mobile/plan-api/pkg/middleware/requestid"
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

	loc, err := time.LoadLocation(cfg.Plan.Timezone)
	if err != nil {
		logr.Sugar().Warnw("unknown timezone, falling back to local", "timezone", cfg.Plan.Timezone)
		loc = time.Local
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	// Redis only persists snapshots across restarts; the plan still works
	// without it.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, snapshots will not survive restarts", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	scheduleSource := repository.NewScheduleSourceRepository(cfg.Plan, loc, metrics, logr)
	snapshots := repository.NewSnapshotRepository(redisClient, logr)
	customEvents := repository.NewCustomEventRepository(db)

	scopeCache := service.NewScopeCache(scheduleSource, snapshots, cfg.Plan.ScopeTTL, loc, logr)
	scopeCache.SetMetricsRecorder(metrics)

	layout := service.NewLayoutEngine(cfg.Plan, loc)
	albums := service.NewStaticAlbumProvider(cfg.Plan.Album)

	planSvc := service.NewPlanService(albums, scopeCache, layout, scheduleSource, customEvents, cfg.Plan.FilterTTL, loc, logr)
	exportSvc := service.NewExportService(planSvc, nil, nil, cfg.Plan.StartHour, cfg.Plan.EndHour, loc, logr)
	customEventSvc := service.NewCustomEventService(customEvents, validate, logr)

	planHandler := handler.NewPlanHandler(planSvc, exportSvc, loc)
	customEventHandler := handler.NewCustomEventHandler(customEventSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, db)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		plan := api.Group("/plan")
		{
			plan.GET("", planHandler.Get)
			plan.GET("/search", planHandler.Search)
			plan.GET("/suggestions", planHandler.Suggestions)
			plan.GET("/filters", planHandler.Filters)
			plan.GET("/filters/semester", planHandler.SemesterFilters)
			plan.GET("/export", planHandler.Export)
		}

		events := api.Group("/custom-events")
		{
			events.GET("", customEventHandler.List)
			events.GET("/subjects", customEventHandler.Subjects)
			events.GET("/:id", customEventHandler.Get)
			events.POST("", customEventHandler.Create)
			events.PUT("/:id", customEventHandler.Update)
			events.DELETE("/:id", customEventHandler.Delete)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "album", cfg.Plan.Album)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
