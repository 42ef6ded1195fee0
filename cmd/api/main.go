package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/jwhan-dev/timetable-notify/api/swagger"
	"github.com/jwhan-dev/timetable-notify/internal/handler"
	"github.com/jwhan-dev/timetable-notify/internal/middleware"
	"github.com/jwhan-dev/timetable-notify/internal/models"
	"github.com/jwhan-dev/timetable-notify/internal/notify"
	"github.com/jwhan-dev/timetable-notify/internal/push"
	"github.com/jwhan-dev/timetable-notify/internal/repository"
	"github.com/jwhan-dev/timetable-notify/internal/service"
	"github.com/jwhan-dev/timetable-notify/internal/timetable"
	"github.com/jwhan-dev/timetable-notify/pkg/cache"
	"github.com/jwhan-dev/timetable-notify/pkg/config"
	"github.com/jwhan-dev/timetable-notify/pkg/database"
	"github.com/jwhan-dev/timetable-notify/pkg/jobs"
	"github.com/jwhan-dev/timetable-notify/pkg/logger"
	corsmiddleware "github.com/jwhan-dev/timetable-notify/pkg/middleware/cors"
	reqidmiddleware "github.com/jwhan-dev/timetable-notify/pkg/middleware/requestid"
)

// @title Timetable Notify API
// @version 0.1.0
// @description Weekly class timetable with push notification scheduling
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

	// Malformed timetable definitions must abort startup, never schedule
	// garbage.
	weekly, err := timetable.Load(cfg.Timetable.Path)
	if err != nil {
		logr.Sugar().Fatalw("invalid timetable", "path", cfg.Timetable.Path, "error", err)
	}
	logr.Sugar().Infow("timetable loaded", "slots", len(weekly.Slots), "classes", weekly.ClassCount())

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && cacheRepo != nil)

	subscriptionRepo := repository.NewSubscriptionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	logRepo := repository.NewNotificationLogRepository(db)

	logQueue := jobs.NewQueue("notification-logs", func(ctx context.Context, entry models.NotificationLog) error {
		return logRepo.Create(ctx, &entry)
	}, jobs.QueueConfig{
		Workers:    cfg.Sweeper.LogWorkers,
		BufferSize: cfg.Sweeper.LogBufferSize,
		Logger:     logr,
	})

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()
	logQueue.Start(rootCtx)
	defer logQueue.Stop()

	sender := push.NewWebPushSender(cfg.Push, logr)

	timetableSvc := service.NewTimetableService(weekly, cacheSvc, logr)
	subscriptionSvc := service.NewSubscriptionService(subscriptionRepo, nil, logr)
	schedulerSvc := service.NewSchedulerService(weekly, notificationRepo, cfg.Notifications.ReminderLead, logr)
	dispatchSvc := service.NewDispatchService(notificationRepo, subscriptionRepo, sender, logQueue, metricsSvc, logr)

	notifier := notify.NewNotifier(cfg.Notifications, sender.Configured(), dispatchSvc, logr)

	var localScheduler *notify.LocalScheduler
	if cfg.Notifications.LocalTimers {
		localScheduler = notify.NewLocalScheduler(notifier, cfg.Notifications.ReminderLead, logr)
		armed, err := localScheduler.ScheduleAll(weekly, time.Now())
		if err != nil {
			logr.Sugar().Fatalw("failed to arm local timers", "error", err)
		}
		metricsSvc.SetTimersArmed(armed)
		defer localScheduler.CancelAll()
	}

	crond := cron.New()
	if cfg.Sweeper.Enabled {
		crond.Schedule(cron.Every(cfg.Sweeper.Interval), cron.FuncJob(func() {
			ctx, cancel := context.WithTimeout(rootCtx, cfg.Sweeper.Interval)
			defer cancel()
			if _, err := dispatchSvc.Sweep(ctx, time.Now()); err != nil {
				logr.Warn("scheduled sweep failed", zap.Error(err))
			}
		}))

		if _, err := crond.AddFunc(cfg.Sweeper.RescheduleCron, func() {
			ctx, cancel := context.WithTimeout(rootCtx, time.Minute)
			defer cancel()
			now := time.Now()
			if _, err := schedulerSvc.Reschedule(ctx, now); err != nil {
				logr.Warn("scheduled reschedule failed", zap.Error(err))
				return
			}
			if localScheduler != nil {
				if armed, err := localScheduler.ScheduleAll(weekly, now); err == nil {
					metricsSvc.SetTimersArmed(armed)
				}
			}
		}); err != nil {
			logr.Sugar().Fatalw("invalid reschedule cron expression", "spec", cfg.Sweeper.RescheduleCron, "error", err)
		}

		crond.Start()
		defer crond.Stop()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
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
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionSvc)
	notificationHandler := handler.NewNotificationHandler(schedulerSvc, dispatchSvc, notifier, localScheduler, weekly, logRepo, metricsSvc, logr)

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/timetable", timetableHandler.Weekly)
		api.GET("/timetable/today", timetableHandler.Today)

		api.POST("/subscriptions", subscriptionHandler.Register)
		api.DELETE("/subscriptions", subscriptionHandler.Unregister)

		api.POST("/notifications/schedule", notificationHandler.Schedule)
		api.POST("/notifications/sweep", notificationHandler.Sweep)
		api.POST("/notifications/send", notificationHandler.Send)
		api.GET("/notifications/upcoming", notificationHandler.Upcoming)
		api.GET("/notifications/pending", notificationHandler.Pending)
		api.GET("/notifications/logs", notificationHandler.Logs)
		api.GET("/notifications/status", notificationHandler.Status)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
