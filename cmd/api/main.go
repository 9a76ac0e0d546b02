package main

import (
	"fmt"
	"log"

	"go.uber.org/zap"

	_ "github.com/sgescolar/secretaria-api/api/swagger"
	"github.com/sgescolar/secretaria-api/internal/handler"
	"github.com/sgescolar/secretaria-api/internal/repository"
	"github.com/sgescolar/secretaria-api/internal/router"
	"github.com/sgescolar/secretaria-api/internal/service"
	"github.com/sgescolar/secretaria-api/pkg/cache"
	"github.com/sgescolar/secretaria-api/pkg/config"
	"github.com/sgescolar/secretaria-api/pkg/database"
	"github.com/sgescolar/secretaria-api/pkg/export"
	"github.com/sgescolar/secretaria-api/pkg/logger"
)

// @title Secretaria API
// @version 1.0.0
// @description School secretariat management API
// @BasePath /api
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Database.MigrationDir); err != nil {
		logr.Fatal("failed to run migrations", zap.Error(err))
	}

	metrics := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheService = service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, true)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	sectionRepo := repository.NewClassSectionRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	requestRepo := repository.NewServiceRequestRepository(db)

	authService := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	studentService := service.NewStudentService(studentRepo, cacheService, nil, logr)
	sectionService := service.NewClassSectionService(sectionRepo, cacheService, nil, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, studentRepo, sectionRepo, cacheService, nil, logr)
	gradeService := service.NewGradeService(gradeRepo, enrollmentRepo, nil, logr)
	pdfExporter := export.NewPDFExporter()
	requestService := service.NewServiceRequestService(requestRepo, studentRepo, pdfExporter, cacheService, nil, logr)
	dashboardService := service.NewDashboardService(studentRepo, sectionRepo, enrollmentRepo, requestRepo, cacheService, cfg.Dashboard.CacheTTL, logr)
	exportService := service.NewExportService(studentRepo, export.NewCSVExporter(), pdfExporter, logr)

	handlers := router.Handlers{
		Auth:            handler.NewAuthHandler(authService),
		Students:        handler.NewStudentHandler(studentService, exportService),
		ClassSections:   handler.NewClassSectionHandler(sectionService),
		Enrollments:     handler.NewEnrollmentHandler(enrollmentService),
		Grades:          handler.NewGradeHandler(gradeService),
		ServiceRequests: handler.NewServiceRequestHandler(requestService),
		Dashboard:       handler.NewDashboardHandler(dashboardService),
		Metrics:         handler.NewMetricsHandler(metrics),
	}

	engine := router.New(router.Deps{
		Config:  cfg,
		Logger:  logr,
		Auth:    authService,
		Metrics: metrics,
		Audit:   userRepo,
	}, handlers)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := engine.Run(addr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}
