package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/medisched/scheduler-api/internal/config"
	"github.com/medisched/scheduler-api/internal/email"
	"github.com/medisched/scheduler-api/internal/repository/postgres"
	"github.com/medisched/scheduler-api/internal/worker"
	"github.com/medisched/scheduler-api/pkg/logger"
	redisbroker "github.com/medisched/scheduler-api/pkg/messaging/redis"
	"github.com/medisched/scheduler-api/pkg/metrics"
)

func serveMetrics(port int, appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			appLogger.Error(err, "metrics server failed")
			os.Exit(1)
		}
	}()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
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
		log.Fatal().Err(err).Msg("failed to create Redis broker")
	}
	defer broker.Close()

	base := postgres.NewBaseRepository(db)
	notificationRepo := postgres.NewNotificationRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	doctorRepo := postgres.NewDoctorRepository(base)
	staffRepo := postgres.NewStaffRepository(base)

	emailSvc := email.NewSMTPService(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})

	processor := worker.NewDeliveryProcessor(
		notificationRepo,
		patientRepo,
		doctorRepo,
		staffRepo,
		emailSvc,
		broker,
		worker.DeliveryConfig{
			BatchSize:    cfg.Worker.BatchSize,
			PollInterval: cfg.Worker.PollInterval,
			MaxRetries:   cfg.Worker.MaxRetries,
			RetryDelay:   time.Second,
		},
		appLogger,
		metrics.NewMetrics("scheduler", "delivery"),
	)

	serveMetrics(cfg.Worker.MetricsPort, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		appLogger.Info("shutting down delivery worker")
		cancel()
	}()

	processor.Start(ctx)
}
