package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/lepakmasjid/directory-api/api/swagger"
	"github.com/lepakmasjid/directory-api/internal/handler"
	"github.com/lepakmasjid/directory-api/internal/middleware"
	"github.com/lepakmasjid/directory-api/internal/models"
	"github.com/lepakmasjid/directory-api/internal/query"
	"github.com/lepakmasjid/directory-api/internal/repository"
	"github.com/lepakmasjid/directory-api/internal/sanitize"
	"github.com/lepakmasjid/directory-api/internal/service"
	"github.com/lepakmasjid/directory-api/pkg/cache"
	"github.com/lepakmasjid/directory-api/pkg/config"
	"github.com/lepakmasjid/directory-api/pkg/export"
	"github.com/lepakmasjid/directory-api/pkg/logger"
	corsmiddleware "github.com/lepakmasjid/directory-api/pkg/middleware/cors"
	reqidmiddleware "github.com/lepakmasjid/directory-api/pkg/middleware/requestid"
	"github.com/lepakmasjid/directory-api/pkg/storage"
	"github.com/lepakmasjid/directory-api/pkg/store"
)

// @title Lepak Masjid Directory API
// @version 0.1.0
// @description Community mosque directory with moderated submissions
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

	storeClient := store.New(cfg.Store.BaseURL,
		store.WithTokenStore(store.NewFileTokenStore(cfg.Store.TokenFile)),
		store.WithTimeout(cfg.Store.Timeout),
	)

	sanitizer := sanitize.New(sanitize.Config{
		Regions:           cfg.Regions.Override,
		MaxImageSize:      cfg.Uploads.MaxFileSizeBytes,
		AllowedImageMIMEs: cfg.Uploads.AllowedMIMEs,
	})
	builder := query.NewBuilder(sanitizer)

	mosqueRepo := repository.NewMosqueRepository(storeClient)
	amenityRepo := repository.NewAmenityRepository(storeClient, builder)
	activityRepo := repository.NewActivityRepository(storeClient, builder)
	submissionRepo := repository.NewSubmissionRepository(storeClient)
	auditRepo := repository.NewAuditRepository(storeClient, builder)

	aggregator := service.NewAmenityAggregator(amenityRepo, cfg.Store.BatchCeiling, logr)
	readSvc := service.NewMosqueReadService(mosqueRepo, amenityRepo, activityRepo, aggregator, builder, sanitizer, cfg.Store.ListPageSize, logr)
	writeSvc := service.NewMosqueWriteService(mosqueRepo, amenityRepo, sanitizer, logr)
	auditRecorder := service.NewAuditRecorder(auditRepo, logr)
	moderationSvc := service.NewModerationService(submissionRepo, writeSvc, auditRecorder, sanitizer, logr)
	authSvc := service.NewAuthService(cfg.JWT)
	metricsSvc := service.NewMetricsService()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	auditRecorder.StartAsync(ctx, 2)
	defer auditRecorder.StopAsync()

	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			// The limiter fails open, so a missing Redis only costs
			// throttling precision.
			logr.Sugar().Warnw("redis unavailable, rate limiting disabled", "error", err)
			redisClient = nil
		}
	}

	exporter := export.NewCSVExporter()
	exportFiles, err := storage.NewLocalStorage(cfg.Exports.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare exports directory", "error", err)
	}
	if removed, err := exportFiles.CleanupOlderThan(cfg.Exports.FileTTL); err != nil {
		logr.Sugar().Warnw("export cleanup failed", "error", err)
	} else if len(removed) > 0 {
		logr.Sugar().Infow("removed stale exports", "count", len(removed))
	}
	urlSecret := cfg.Exports.URLSecret
	if urlSecret == "" {
		urlSecret = cfg.JWT.Secret
	}
	signer := storage.NewSignedURLSigner(urlSecret, cfg.Exports.URLTTL)

	mosqueHandler := handler.NewMosqueHandler(readSvc, writeSvc, metricsSvc)
	submissionHandler := handler.NewSubmissionHandler(moderationSvc, metricsSvc)
	auditHandler := handler.NewAuditHandler(auditRecorder, exporter, exportFiles, signer)

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
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.GET("/mosques", mosqueHandler.List)
	api.GET("/mosques/:id", mosqueHandler.Get)
	api.GET("/amenities", mosqueHandler.ListAmenities)

	submitGroup := api.Group("/submissions")
	submitGroup.Use(middleware.JWT(authSvc))
	if cfg.RateLimit.Enabled {
		submitGroup.POST("", middleware.RateLimit(redisClient, cfg.RateLimit.SubmissionsPerMin, logr), submissionHandler.Create)
	} else {
		submitGroup.POST("", submissionHandler.Create)
	}

	admin := api.Group("")
	admin.Use(middleware.JWT(authSvc), middleware.AdminOnly())

	admin.POST("/mosques", middleware.Audit(auditRecorder, models.AuditActionMosqueCreate, "mosque"), mosqueHandler.Create)
	admin.PUT("/mosques/:id", middleware.Audit(auditRecorder, models.AuditActionMosqueUpdate, "mosque"), mosqueHandler.Update)
	admin.DELETE("/mosques/:id", middleware.Audit(auditRecorder, models.AuditActionMosqueDelete, "mosque"), mosqueHandler.Delete)
	admin.PUT("/mosques/:id/amenities", middleware.Audit(auditRecorder, models.AuditActionAmenitiesReplace, "mosque"), mosqueHandler.ReplaceAmenities)

	admin.GET("/submissions", submissionHandler.List)
	admin.GET("/submissions/:id", submissionHandler.Get)
	admin.POST("/submissions/:id/approve", submissionHandler.Approve)
	admin.POST("/submissions/:id/reject", submissionHandler.Reject)

	admin.GET("/audit-logs", auditHandler.List)
	admin.POST("/audit-logs/export", auditHandler.Export)
	admin.GET("/audit-logs/export/download", auditHandler.Download)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store", cfg.Store.BaseURL)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
