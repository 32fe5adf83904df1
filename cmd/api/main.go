package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/medisched/scheduler-api/internal/config"
	"github.com/medisched/scheduler-api/internal/handler"
	appointmentHandler "github.com/medisched/scheduler-api/internal/handler/appointment"
	authHandler "github.com/medisched/scheduler-api/internal/handler/auth"
	notificationHandler "github.com/medisched/scheduler-api/internal/handler/notification"
	slotHandler "github.com/medisched/scheduler-api/internal/handler/slot"
	"github.com/medisched/scheduler-api/internal/middleware"
	"github.com/medisched/scheduler-api/internal/repository/postgres"
	"github.com/medisched/scheduler-api/internal/router"
	authService "github.com/medisched/scheduler-api/internal/service/auth"
	notificationService "github.com/medisched/scheduler-api/internal/service/notification"
	schedulingService "github.com/medisched/scheduler-api/internal/service/scheduling"
	slotService "github.com/medisched/scheduler-api/internal/service/slot"
	jwtauth "github.com/medisched/scheduler-api/pkg/auth"
	"github.com/medisched/scheduler-api/pkg/logger"
	redisbroker "github.com/medisched/scheduler-api/pkg/messaging/redis"
	"github.com/medisched/scheduler-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	// Repositories
	base := postgres.NewBaseRepository(db)
	slotRepo := postgres.NewSlotRepository(base)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	notificationRepo := postgres.NewNotificationRepository(base)
	doctorRepo := postgres.NewDoctorRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	staffRepo := postgres.NewStaffRepository(base)

	// Services
	engineMetrics := metrics.NewMetrics("scheduler", "engine")
	notifier := notificationService.NewService(notificationRepo, broker, appLogger)
	engine := schedulingService.NewService(
		slotRepo,
		appointmentRepo,
		doctorRepo,
		patientRepo,
		notifier,
		engineMetrics,
		appLogger,
		schedulingService.Config{NotifyOnComplete: cfg.Engine.NotifyOnComplete},
	)
	slotSvc := slotService.NewService(slotRepo, doctorRepo, appLogger)

	jwtSvc := jwtauth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authSvc := authService.NewService(patientRepo, doctorRepo, staffRepo, jwtSvc)

	// HTTP layer
	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		appointmentHandler.NewHandler(engine),
		slotHandler.NewHandler(slotSvc),
		notificationHandler.NewHandler(notifier),
		handler.NewHealthHandler(db),
		router.Config{
			RateLimit:     rate.Limit(cfg.Server.RateLimit),
			RateBurst:     cfg.Server.RateBurst,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "scheduler_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
