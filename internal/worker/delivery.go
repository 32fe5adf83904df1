// Package worker contains the notification delivery processor. It is
// the only component allowed to move notifications out of PENDING.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/medisched/scheduler-api/internal/email"
	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	"github.com/medisched/scheduler-api/pkg/logger"
	"github.com/medisched/scheduler-api/pkg/messaging"
	"github.com/medisched/scheduler-api/pkg/metrics"
)

const inAppChannel = "notifications"

type DeliveryConfig struct {
	BatchSize    int
	PollInterval time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
}

// DeliveryProcessor polls PENDING notifications in batches and delivers
// each over its channel, marking the row SENT or FAILED.
type DeliveryProcessor struct {
	repo      repository.NotificationRepository
	patients  repository.PatientRepository
	doctors   repository.DoctorRepository
	staff     repository.StaffRepository
	emailSvc  email.Service
	broker    messaging.Broker
	config    DeliveryConfig
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewDeliveryProcessor(
	repo repository.NotificationRepository,
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	staff repository.StaffRepository,
	emailSvc email.Service,
	broker messaging.Broker,
	config DeliveryConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) *DeliveryProcessor {
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}

	return &DeliveryProcessor{
		repo:     repo,
		patients: patients,
		doctors:  doctors,
		staff:    staff,
		emailSvc: emailSvc,
		broker:   broker,
		config:   config,
		logger:   log,
		metrics:  m,
	}
}

func (p *DeliveryProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("starting notification delivery processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down notification delivery processor")
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				p.logger.Error(err, "failed to process notification batch")
			}
		}
	}
}

func (p *DeliveryProcessor) processBatch(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.DeliveryLatency)
	defer timer.ObserveDuration()

	pending, err := p.repo.ListPending(ctx, p.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list pending notifications: %w", err)
	}
	p.metrics.PendingQueueSize.Set(float64(len(pending)))

	for _, n := range pending {
		if err := p.deliver(ctx, n); err != nil {
			p.metrics.NotificationDeliveries.WithLabelValues("failed").Inc()
			if markErr := p.repo.MarkFailed(ctx, n.ID, err.Error()); markErr != nil {
				p.logger.Error(markErr, "failed to mark notification failed",
					"notification_id", n.ID.String())
			}
			continue
		}

		p.metrics.NotificationDeliveries.WithLabelValues("sent").Inc()
		if err := p.repo.MarkSent(ctx, n.ID); err != nil {
			p.logger.Error(err, "failed to mark notification sent",
				"notification_id", n.ID.String())
		}
	}

	return nil
}

func (p *DeliveryProcessor) deliver(ctx context.Context, n *model.Notification) error {
	switch n.Channel {
	case model.ChannelEmail:
		address, err := p.recipientEmail(ctx, n)
		if err != nil {
			return err
		}
		return retry(p.config.MaxRetries, p.config.RetryDelay, func() error {
			return p.emailSvc.SendCustom(ctx, address, subjectFor(n.Category), n.Message)
		})
	case model.ChannelInApp:
		return retry(p.config.MaxRetries, p.config.RetryDelay, func() error {
			return p.broker.Publish(ctx, inAppChannel, n)
		})
	default:
		return fmt.Errorf("unsupported channel %q", n.Channel)
	}
}

func (p *DeliveryProcessor) recipientEmail(ctx context.Context, n *model.Notification) (string, error) {
	switch n.RecipientType {
	case model.RolePatient:
		patient, err := p.patients.Get(ctx, n.RecipientID)
		if err != nil {
			return "", fmt.Errorf("failed to resolve patient recipient: %w", err)
		}
		return patient.Email, nil
	case model.RoleDoctor:
		doctor, err := p.doctors.Get(ctx, n.RecipientID)
		if err != nil {
			return "", fmt.Errorf("failed to resolve doctor recipient: %w", err)
		}
		return doctor.Email, nil
	case model.RoleStaff:
		st, err := p.staff.Get(ctx, n.RecipientID)
		if err != nil {
			return "", fmt.Errorf("failed to resolve staff recipient: %w", err)
		}
		return st.Email, nil
	}
	return "", fmt.Errorf("unknown recipient type %q", n.RecipientType)
}

func subjectFor(category string) string {
	switch category {
	case model.NotificationBookingConfirmation:
		return "Appointment confirmed"
	case model.NotificationCancellation:
		return "Appointment cancelled"
	case model.NotificationReassignment:
		return "Appointment updated"
	case model.NotificationStatusUpdate:
		return "Appointment status update"
	}
	return "Clinic notification"
}

func retry(attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay * time.Duration(i+1))
		}
	}
	return err
}
