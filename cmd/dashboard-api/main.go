package main

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/campusgrid/lms-dashboard-api/api/swagger"
	"github.com/campusgrid/lms-dashboard-api/internal/cache"
	"github.com/campusgrid/lms-dashboard-api/internal/handler"
	"github.com/campusgrid/lms-dashboard-api/internal/lms"
	"github.com/campusgrid/lms-dashboard-api/internal/middleware"
	"github.com/campusgrid/lms-dashboard-api/internal/models"
	"github.com/campusgrid/lms-dashboard-api/internal/roles"
	"github.com/campusgrid/lms-dashboard-api/internal/service"
	"github.com/campusgrid/lms-dashboard-api/pkg/batch"
	"github.com/campusgrid/lms-dashboard-api/pkg/config"
	"github.com/campusgrid/lms-dashboard-api/pkg/logger"
	corsmiddleware "github.com/campusgrid/lms-dashboard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusgrid/lms-dashboard-api/pkg/middleware/requestid"
)

// @title LMS Dashboard API
// @version 0.1.0
// @description Cache-first dashboard aggregation layer over an LMS webservice
// @BasePath /api/v1
// @schemes http
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

	metrics := service.NewMetricsService()

	persistent, err := newPersistentStore(cfg)
	if err != nil {
		logr.Sugar().Fatalw("cache store init failed", "store", cfg.Cache.Store, "error", err)
	}
	manager := cache.NewManager(cache.ManagerParams{
		Session:    cache.NewMemoryStore(),
		Persistent: persistent,
		Logger:     logr,
		OnHit:      metrics.RecordCacheHit,
		OnMiss:     metrics.RecordCacheMiss,
	})

	primaryQueue := batch.NewQueue(batch.QueueConfig{
		BatchSize:    cfg.Queue.BatchSize,
		PacingDelay:  cfg.Queue.PacingDelay,
		Logger:       logr,
		ObserveDepth: metrics.ObserveQueueDepth,
		CountBatch:   metrics.ObserveBatch,
	})
	fanoutQueue := batch.NewQueue(batch.QueueConfig{
		BatchSize:   cfg.Queue.SubBatchSize,
		PacingDelay: cfg.Queue.PacingDelay,
		Logger:      logr,
		CountBatch:  metrics.ObserveBatch,
	})

	client := lms.NewClient(cfg.LMS, logr)
	client.SetObserver(metrics.ObserveUpstreamCall)

	primary := service.NewGateway(client, primaryQueue)
	fanout := service.NewGateway(client, fanoutQueue)
	sources := service.CourseSources{Primary: primary, Fanout: fanout}

	resolver := roles.NewResolver(roles.ResolverParams{
		Directory:      primary,
		Enrollments:    primary,
		Logger:         logr,
		SystemAccounts: cfg.Roles.SystemAccounts,
		AdminAccounts:  parseAdminAccounts(cfg.Roles.AdminAccounts, logr),
	})

	courseSvc := service.NewCourseService(service.CourseServiceParams{
		Source: sources,
		Cache:  manager,
		Logger: logr,
		Config: service.CourseServiceConfig{
			CoursesTTL:      cfg.Cache.CoursesTTL,
			CourseDetailTTL: cfg.Cache.CourseDetailTTL,
			LessonsTTL:      cfg.Cache.LessonsTTL,
		},
	})
	lessonSvc := service.NewLessonService(service.LessonServiceParams{
		Source:     sources,
		Cache:      manager,
		Logger:     logr,
		LessonsTTL: cfg.Cache.LessonsTTL,
		DetailTTL:  cfg.Cache.LessonDetailTTL,
	})
	activitySvc := service.NewActivityService(service.ActivityServiceParams{
		Source: primary,
		Cache:  manager,
		Logger: logr,
		TTL:    cfg.Cache.ActivitiesTTL,
	})
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Source:       primary,
		Resolver:     resolver,
		Cache:        manager,
		Logger:       logr,
		DashboardTTL: cfg.Cache.DashboardTTL,
	})
	adminSvc := service.NewAdminService(service.AdminServiceParams{
		Source: primary,
		Cache:  manager,
		Logger: logr,
	})
	exportSvc := service.NewExportService(service.ExportServiceParams{
		Source: sources,
		Logger: logr,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	courseHandler := handler.NewCourseHandler(courseSvc, exportSvc)
	lessonHandler := handler.NewLessonHandler(lessonSvc)
	activityHandler := handler.NewActivityHandler(activitySvc)
	adminHandler := handler.NewAdminHandler(adminSvc)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT.Secret))
	{
		api.GET("/dashboard", dashboardHandler.Get)
		api.GET("/courses", courseHandler.List)
		api.GET("/courses/:id", courseHandler.Get)
		api.GET("/courses/:id/lessons", lessonHandler.List)
		api.GET("/courses/:id/progress/export",
			middleware.RequireRoles(models.RoleTeacher, models.RoleSchoolAdmin, models.RoleAdmin),
			courseHandler.ExportProgress)
		api.GET("/lessons/:id/activities", lessonHandler.Activities)
		api.GET("/activities", activityHandler.List)

		admin := api.Group("/admin")
		admin.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleSchoolAdmin))
		{
			admin.POST("/users", adminHandler.CreateUser)
			admin.PUT("/users/:id", adminHandler.UpdateUser)
			admin.PUT("/users/:id/suspend", adminHandler.SuspendUser)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
			admin.POST("/enrolments", adminHandler.Enrol)
			admin.POST("/roles/assign", adminHandler.AssignRole)
			admin.POST("/roles/unassign", adminHandler.UnassignRole)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "cache_store", cfg.Cache.Store)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// newPersistentStore picks the TTL-tier backend from config.
func newPersistentStore(cfg *config.Config) (cache.Store, error) {
	switch cfg.Cache.Store {
	case config.StoreRedis:
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return cache.NewRedisStore(client), nil
	case config.StoreSQLite:
		return cache.NewSQLiteStore(cfg.Cache.SQLitePath)
	default:
		return cache.NewMemoryStore(), nil
	}
}

// parseAdminAccounts reads "username:ROLE" pairs from config. Malformed
// entries are skipped with a warning.
func parseAdminAccounts(entries []string, logr *zap.Logger) map[string]models.Role {
	if len(entries) == 0 {
		return nil
	}
	accounts := make(map[string]models.Role, len(entries))
	for _, entry := range entries {
		name, role, ok := strings.Cut(entry, ":")
		if !ok || !models.Role(role).Valid() {
			logr.Warn("skipping malformed admin account entry", zap.String("entry", entry))
			continue
		}
		accounts[strings.ToLower(strings.TrimSpace(name))] = models.Role(role)
	}
	return accounts
}
