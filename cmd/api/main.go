package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/CCamarillo18/gestorasistencia2026/api/swagger"
	"github.com/CCamarillo18/gestorasistencia2026/internal/handler"
	"github.com/CCamarillo18/gestorasistencia2026/internal/middleware"
	"github.com/CCamarillo18/gestorasistencia2026/internal/repository"
	"github.com/CCamarillo18/gestorasistencia2026/internal/service"
	"github.com/CCamarillo18/gestorasistencia2026/pkg/cache"
	"github.com/CCamarillo18/gestorasistencia2026/pkg/config"
	"github.com/CCamarillo18/gestorasistencia2026/pkg/database"
	"github.com/CCamarillo18/gestorasistencia2026/pkg/logger"
	corsmiddleware "github.com/CCamarillo18/gestorasistencia2026/pkg/middleware/cors"
	reqidmiddleware "github.com/CCamarillo18/gestorasistencia2026/pkg/middleware/requestid"
)

// @title Gestor de Asistencia API
// @version 1.0.0
// @description Attendance management backend for schools
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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()
	metricsService := service.NewMetricsService()

	// Repositories.
	teacherRepo := repository.NewTeacherRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Reports.CacheTTL, logr, cfg.Reports.CacheEnabled)
	authService := service.NewAuthService(service.AuthConfig{
		TokenSecret: cfg.Auth.TokenSecret,
		Issuer:      cfg.Auth.Issuer,
	}, logr)
	teacherService := service.NewTeacherService(teacherRepo, subjectRepo, validate, logr)
	studentService := service.NewStudentService(studentRepo, subjectRepo, teacherService, validate, logr)
	courseService := service.NewCourseService(courseRepo, logr)
	attendanceService := service.NewAttendanceService(attendanceRepo, subjectRepo, studentRepo, teacherService, cacheService, validate, logr, service.AttendanceConfig{
		AbsentAlertPercent: cfg.Attendance.AbsentAlertPercent,
	})
	reportService := service.NewReportService(attendanceRepo, subjectRepo, courseRepo, studentRepo, settingsRepo, teacherService, cacheService, logr, service.ReportConfig{
		CacheEnabled: cfg.Reports.CacheEnabled,
		CacheTTL:     cfg.Reports.CacheTTL,
	})
	alertService := service.NewAlertService(subjectRepo, attendanceRepo, studentRepo, logr, service.AlertConfig{
		Streak: cfg.Attendance.AlertStreak,
	})
	importService := service.NewImportService(studentRepo, courseRepo, logr)
	settingsService := service.NewSettingsService(settingsRepo, validate, logr)

	// Handlers.
	teacherHandler := handler.NewTeacherHandler(teacherService)
	studentHandler := handler.NewStudentHandler(studentService, alertService, importService, cfg.Import.MaxFileSizeBytes)
	courseHandler := handler.NewCourseHandler(courseService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	reportHandler := handler.NewReportHandler(reportService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
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
		api.GET("/teachers/profile", teacherHandler.Profile)
		api.GET("/teachers/today-classes", teacherHandler.TodayClasses)
		api.GET("/teachers/subjects", teacherHandler.Subjects)
		api.GET("/subjects/all", teacherHandler.AllSubjects)
		api.GET("/subjects/:subjectId/students", studentHandler.RosterBySubject)
		api.GET("/classes/:scheduleId/students", studentHandler.RosterBySchedule)

		api.POST("/attendance", attendanceHandler.Submit)
		api.GET("/reports/daily", reportHandler.Daily)
		api.GET("/reports/export/csv", reportHandler.ExportCSV)
		api.GET("/absences/daily", reportHandler.DailyAbsences)

		api.GET("/students/alerts", studentHandler.Alerts)
		api.GET("/students/attendance-summary", studentHandler.AttendanceSummary)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin(teacherService))
	{
		admin.GET("/courses", courseHandler.List)

		admin.GET("/teachers", teacherHandler.List)
		admin.PUT("/teachers/:id", teacherHandler.Update)
		admin.DELETE("/teachers/:id", teacherHandler.Delete)

		admin.GET("/students", studentHandler.List)
		admin.POST("/students", studentHandler.Create)
		admin.PUT("/students/:id", studentHandler.Update)
		admin.DELETE("/students/:id", studentHandler.Delete)
		admin.POST("/students/import", studentHandler.Import)

		admin.GET("/attendance-records", attendanceHandler.ListRecent)
		admin.DELETE("/attendance-records/:id", attendanceHandler.Delete)

		admin.GET("/settings", settingsHandler.Get)
		admin.PUT("/settings", settingsHandler.Update)
		admin.GET("/subject-hours", settingsHandler.ListHours)
		admin.PUT("/subject-hours", settingsHandler.UpdateHours)
		admin.DELETE("/subject-hours", settingsHandler.ClearHours)
		admin.POST("/config-store/save", settingsHandler.SaveConfig)
		admin.GET("/config-store/history", settingsHandler.History)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
