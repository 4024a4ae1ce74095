package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/traumalab/trial-monitor-api/internal/handler"
	"github.com/traumalab/trial-monitor-api/internal/middleware"
	"github.com/traumalab/trial-monitor-api/internal/repository"
	"github.com/traumalab/trial-monitor-api/internal/service"
	"github.com/traumalab/trial-monitor-api/internal/upstream"
	"github.com/traumalab/trial-monitor-api/pkg/cache"
	"github.com/traumalab/trial-monitor-api/pkg/config"
	"github.com/traumalab/trial-monitor-api/pkg/logger"
	corsmiddleware "github.com/traumalab/trial-monitor-api/pkg/middleware/cors"
	reqidmiddleware "github.com/traumalab/trial-monitor-api/pkg/middleware/requestid"
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	upstreamClient := upstream.NewClient(cfg.Upstream, logr)
	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	statusSvc := service.NewStatusService(upstreamClient, metricsSvc, logr, service.FromTrialConfig(cfg.Trial))
	participantSvc := service.NewParticipantService(upstreamClient, validate, logr)
	eventSvc := service.NewEventService(upstreamClient, validate, logr)

	var notificationSvc *service.NotificationService
	if cfg.Notifications.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		notificationRepo := repository.NewNotificationRepository(redisClient, logr)
		defer notificationRepo.Close() //nolint:errcheck
		notificationSvc = service.NewNotificationService(upstreamClient, notificationRepo, logr)
	}

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

	statusHandler := handler.NewStatusHandler(statusSvc)
	participantHandler := handler.NewParticipantHandler(participantSvc)
	eventHandler := handler.NewEventHandler(eventSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, cfg.Notifications.Enabled)

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/participants/status", statusHandler.StatusTable)
		api.GET("/schedule/timetable", statusHandler.Timetable)
		api.GET("/participants/:patientId/compliance", statusHandler.Compliance)

		api.POST("/participants", participantHandler.Register)
		api.PATCH("/participants/:patientId", participantHandler.Update)

		api.POST("/events", eventHandler.Create)

		api.POST("/participants/:patientId/notifications", notificationHandler.Push)
		api.GET("/participants/:patientId/notifications/last", notificationHandler.LastNotified)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
