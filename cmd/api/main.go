package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/obe-attainment-api/api/swagger"
	"github.com/noah-isme/obe-attainment-api/internal/handler"
	"github.com/noah-isme/obe-attainment-api/internal/models"
	"github.com/noah-isme/obe-attainment-api/internal/repository"
	"github.com/noah-isme/obe-attainment-api/internal/service"
	"github.com/noah-isme/obe-attainment-api/pkg/cache"
	"github.com/noah-isme/obe-attainment-api/pkg/config"
	"github.com/noah-isme/obe-attainment-api/pkg/database"
	"github.com/noah-isme/obe-attainment-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/obe-attainment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/obe-attainment-api/pkg/middleware/requestid"
)

// @title OBE Attainment API
// @version 0.1.0
// @description Course/Program outcome attainment calculation engine
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
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	questionRepo := repository.NewQuestionRepository(db)
	markRepo := repository.NewMarkRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	outcomeRepo := repository.NewOutcomeRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attainmentRepo := repository.NewAttainmentRepository(db)
	surveyRepo := repository.NewSurveyRepository(db)

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Attainment.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Attainment.CacheTTL, logr, true)
		}
	}

	weights := models.WeightConfig{
		DirectWeight:       cfg.Attainment.DirectWeight,
		IndirectWeight:     cfg.Attainment.IndirectWeight,
		POTargetLevel:      cfg.Attainment.POTargetLevel,
		ComplianceMinRatio: cfg.Attainment.ComplianceMinRatio,
	}

	attainmentSvc := service.NewAttainmentService(questionRepo, markRepo, courseRepo, enrollmentRepo, logr)
	aggregationSvc := service.NewAggregationService(attainmentSvc, enrollmentRepo, outcomeRepo, courseRepo, attainmentRepo, cacheSvc, metrics, logr)
	poSvc := service.NewPOAttainmentService(outcomeRepo, courseRepo, aggregationSvc, surveyRepo, cacheSvc, metrics, weights, logr)
	exportSvc := service.NewExportService(attainmentRepo, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(metrics.GinMiddleware())
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

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	handler.Register(api, handler.Routers{
		Attainment:   handler.NewAttainmentHandler(attainmentSvc, aggregationSvc),
		POAttainment: handler.NewPOAttainmentHandler(poSvc),
		Export:       handler.NewExportHandler(exportSvc),
		Metrics:      handler.NewMetricsHandler(metrics),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
