package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campushq/attendance-api/api/swagger"
	"github.com/campushq/attendance-api/internal/handler"
	"github.com/campushq/attendance-api/internal/middleware"
	"github.com/campushq/attendance-api/internal/models"
	"github.com/campushq/attendance-api/internal/repository"
	"github.com/campushq/attendance-api/internal/service"
	"github.com/campushq/attendance-api/pkg/cache"
	"github.com/campushq/attendance-api/pkg/config"
	"github.com/campushq/attendance-api/pkg/database"
	"github.com/campushq/attendance-api/pkg/logger"
	corsmiddleware "github.com/campushq/attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushq/attendance-api/pkg/middleware/requestid"
)

// @title Campus Attendance API
// @version 1.0.0
// @description Role-based attendance and leave administration
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
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The dashboard cache is best effort; the API works without it.
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	majorRepo := repository.NewMajorRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, nil, logr)
	departmentSvc := service.NewDepartmentService(departmentRepo, nil, logr)
	majorSvc := service.NewMajorService(majorRepo, departmentRepo, nil, logr)
	classSvc := service.NewClassService(classRepo, majorRepo, nil, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, nil, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, classRepo, subjectRepo, nil, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, userRepo, cacheSvc, nil, logr)
	leaveSvc := service.NewLeaveService(leaveRepo, cacheSvc, nil, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Users:       userRepo,
		Attendance:  attendanceRepo,
		Leave:       leaveRepo,
		Departments: departmentRepo,
		Majors:      majorRepo,
		Classes:     classRepo,
		Subjects:    subjectRepo,
		Cache:       cacheSvc,
		Logger:      logr,
		CacheTTL:    cfg.Dashboard.CacheTTL,
	})

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	departmentHandler := handler.NewDepartmentHandler(departmentSvc)
	majorHandler := handler.NewMajorHandler(majorSvc)
	classHandler := handler.NewClassHandler(classSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	leaveHandler := handler.NewLeaveHandler(leaveSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	navigationHandler := handler.NewNavigationHandler()
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

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

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.GET("/auth/me", authHandler.Me)
		authed.POST("/auth/change-password", authHandler.ChangePassword)

		authed.GET("/navigation", navigationHandler.Get)
		authed.GET("/dashboard", dashboardHandler.Get)

		authed.GET("/attendance/me", attendanceHandler.Mine)
		authed.GET("/attendance/me/summary", attendanceHandler.Summary)
		authed.GET("/leave-requests/me", leaveHandler.Mine)
	}

	admin := api.Group("")
	admin.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/users", userHandler.List)
		admin.POST("/users", userHandler.Create)
		admin.GET("/users/:id", userHandler.Get)
		admin.PUT("/users/:id", userHandler.Update)
		admin.DELETE("/users/:id", userHandler.Delete)
		admin.POST("/users/:id/reset-password", userHandler.ResetPassword)

		admin.GET("/departments", departmentHandler.List)
		admin.POST("/departments", departmentHandler.Create)
		admin.GET("/departments/:id", departmentHandler.Get)
		admin.PUT("/departments/:id", departmentHandler.Update)
		admin.DELETE("/departments/:id", departmentHandler.Delete)

		admin.GET("/majors", majorHandler.List)
		admin.POST("/majors", majorHandler.Create)
		admin.GET("/majors/:id", majorHandler.Get)
		admin.PUT("/majors/:id", majorHandler.Update)
		admin.DELETE("/majors/:id", majorHandler.Delete)

		admin.GET("/classes", classHandler.List)
		admin.POST("/classes", classHandler.Create)
		admin.GET("/classes/:id", classHandler.Get)
		admin.PUT("/classes/:id", classHandler.Update)
		admin.DELETE("/classes/:id", classHandler.Delete)

		admin.GET("/subjects", subjectHandler.List)
		admin.POST("/subjects", subjectHandler.Create)
		admin.GET("/subjects/:id", subjectHandler.Get)
		admin.PUT("/subjects/:id", subjectHandler.Update)
		admin.DELETE("/subjects/:id", subjectHandler.Delete)

		admin.GET("/schedules", scheduleHandler.List)
		admin.POST("/schedules", scheduleHandler.Create)
		admin.GET("/schedules/:id", scheduleHandler.Get)
		admin.PUT("/schedules/:id", scheduleHandler.Update)
		admin.DELETE("/schedules/:id", scheduleHandler.Delete)
	}

	markers := api.Group("")
	markers.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleHRAssistant, models.RoleClassModerator))
	{
		markers.PUT("/attendance/mark", attendanceHandler.Mark)
		markers.GET("/attendance", attendanceHandler.RollCall)
	}

	deptReaders := api.Group("")
	deptReaders.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin, models.RoleHead))
	{
		deptReaders.GET("/attendance/department", attendanceHandler.Department)
		deptReaders.GET("/attendance/department/export", attendanceHandler.Export)
	}

	requesters := api.Group("")
	requesters.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleTeacher, models.RoleStaff))
	{
		requesters.POST("/leave-requests", leaveHandler.Submit)
		requesters.POST("/leave-requests/:id/cancel", leaveHandler.Cancel)
	}

	reviewers := api.Group("")
	reviewers.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleHead))
	{
		reviewers.GET("/leave-requests/pending", leaveHandler.Pending)
		reviewers.POST("/leave-requests/:id/approve", leaveHandler.Approve)
		reviewers.POST("/leave-requests/:id/reject", leaveHandler.Reject)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
