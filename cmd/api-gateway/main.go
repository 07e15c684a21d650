package main

import (
	"context"
	"errors"
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
	"go.uber.org/zap"

	_ "github.com/noah-isme/bus-tracker-api/api/swagger"
	"github.com/noah-isme/bus-tracker-api/internal/handler"
	"github.com/noah-isme/bus-tracker-api/internal/location"
	"github.com/noah-isme/bus-tracker-api/internal/middleware"
	"github.com/noah-isme/bus-tracker-api/internal/models"
	"github.com/noah-isme/bus-tracker-api/internal/notify"
	"github.com/noah-isme/bus-tracker-api/internal/repository"
	"github.com/noah-isme/bus-tracker-api/internal/seed"
	"github.com/noah-isme/bus-tracker-api/internal/service"
	"github.com/noah-isme/bus-tracker-api/pkg/cache"
	"github.com/noah-isme/bus-tracker-api/pkg/config"
	"github.com/noah-isme/bus-tracker-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/bus-tracker-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/bus-tracker-api/pkg/middleware/requestid"
)

// @title Bus Tracker API
// @version 0.1.0
// @description Roster, attendance and payment tracking for a single school bus
// @BasePath /
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

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	events := service.NewEventBus()

	// State is memory-resident and resets on restart. The roster starts
	// either empty (identity from config) or with the demo data.
	var bus models.BusInfo
	if cfg.Bus.SeedDemo {
		bus = seed.DemoBus(time.Now().UTC())
		bus.DriverName = cfg.Driver.Name
	} else {
		bus = models.BusInfo{
			ID:         cfg.Bus.ID,
			BusNumber:  cfg.Bus.Number,
			DriverName: cfg.Driver.Name,
			Capacity:   cfg.Bus.Capacity,
			Route:      cfg.Bus.Route,
			Students:   []models.Student{},
		}
	}

	rosterRepo := repository.NewRosterRepository(bus)
	notifRepo := repository.NewNotificationRepository()
	attendanceRepo := repository.NewAttendanceRepository()

	// Redis is optional; the dashboard cache degrades to recompute-on-read.
	var cacheRepo service.CacheRepository
	cacheEnabled := false
	if cfg.Dashboard.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			cacheEnabled = true
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cacheEnabled)

	notifSvc := service.NewNotificationService(notifRepo, events, validate, logr)
	rosterSvc := service.NewRosterService(
		rosterRepo,
		attendanceRepo,
		notifSvc,
		events,
		validate,
		logr,
		time.Duration(cfg.Billing.CycleDays)*24*time.Hour,
	)

	dispatcher := notify.NewLogDispatcher(logr)
	sweepSvc := service.NewSweepService(rosterRepo, notifSvc, dispatcher, events, metricsSvc, logr, cfg.Sweep.Interval)
	sweepSvc.Start(rootCtx)
	defer sweepSvc.Stop()

	dashboardSvc := service.NewDashboardService(rosterRepo, notifRepo, cacheSvc, events, logr, cfg.Dashboard.CacheTTL)
	dashboardSvc.Start(rootCtx)
	defer dashboardSvc.Stop()

	provider := location.NewPushProvider()
	tracker := location.NewTracker(provider, location.WatchOptions{
		Interval: cfg.Location.WatchInterval,
		Distance: cfg.Location.WatchDistance,
	}, rosterSvc.ApplyLocation, logr)
	defer tracker.Stop()

	authSvc := service.NewAuthService(validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		DriverID:          cfg.Driver.ID,
		DriverName:        cfg.Driver.Name,
		DriverPIN:         cfg.Driver.PIN,
		DriverPINHash:     cfg.Driver.PINHash,
	})
	exportSvc := service.NewExportService(rosterRepo, attendanceRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	rosterHandler := handler.NewRosterHandler(rosterSvc, tracker, cfg.Attendance.DisplayLimit)
	notifHandler := handler.NewNotificationHandler(notifSvc)
	locationHandler := handler.NewLocationHandler(provider, tracker)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	reportHandler := handler.NewReportHandler(exportSvc)
	streamHandler := handler.NewStreamHandler(events, logr)

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
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.GET("/bus", rosterHandler.GetBus)
		protected.PATCH("/bus/driver", rosterHandler.UpdateDriver)

		protected.GET("/students", rosterHandler.ListStudents)
		protected.GET("/students/:id", rosterHandler.GetStudent)
		protected.PATCH("/students/:id", rosterHandler.UpdateStudent)
		protected.POST("/students/:id/toggle", rosterHandler.ToggleAttendance)
		protected.POST("/students/:id/payments", rosterHandler.MarkPaymentAsPaid)

		protected.GET("/attendance", rosterHandler.AttendanceHistory)

		protected.GET("/notifications", notifHandler.List)
		protected.POST("/notifications", notifHandler.Create)
		protected.POST("/notifications/:id/read", notifHandler.MarkRead)
		protected.DELETE("/notifications", notifHandler.ClearAll)

		protected.GET("/location", locationHandler.Status)
		protected.POST("/location/samples", locationHandler.PostSample)
		protected.POST("/location/tracking/start", locationHandler.StartTracking)
		protected.POST("/location/tracking/stop", locationHandler.StopTracking)

		protected.GET("/dashboard", dashboardHandler.Summary)

		protected.GET("/reports/payments", reportHandler.PaymentReport)
		protected.GET("/reports/attendance", reportHandler.AttendanceReport)

		protected.GET("/events", streamHandler.Events)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server shutdown failed", zap.Error(err))
	}
}
