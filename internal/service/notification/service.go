package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	"github.com/medisched/scheduler-api/pkg/logger"
	"github.com/medisched/scheduler-api/pkg/messaging"
)

const eventsChannel = "notifications"

// Service is the notification sink consumed by the scheduling engine.
// Emit accepts the notification for later delivery; it never blocks on
// the delivery itself.
type Service interface {
	Emit(ctx context.Context, notification *model.Notification) error
	List(ctx context.Context, filters *model.NotificationFilters) ([]*model.Notification, error)
}

type service struct {
	repo   repository.NotificationRepository
	broker messaging.Broker
	logger *logger.Logger
}

func NewService(repo repository.NotificationRepository, broker messaging.Broker, logger *logger.Logger) Service {
	return &service{
		repo:   repo,
		broker: broker,
		logger: logger,
	}
}

// Emit persists the notification as PENDING and announces it on the
// broker for in-app consumers. A broker outage only degrades the in-app
// announcement; the persisted row still reaches the delivery worker.
func (s *service) Emit(ctx context.Context, notification *model.Notification) error {
	if err := s.validate(notification); err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}

	notification.ID = uuid.New()
	notification.Status = model.NotificationStatusPending
	notification.CreatedAt = time.Now()
	notification.UpdatedAt = notification.CreatedAt

	if err := s.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	event := &model.NotificationEvent{
		ID:             uuid.New(),
		NotificationID: notification.ID,
		RecipientID:    notification.RecipientID,
		Category:       notification.Category,
		Message:        notification.Message,
		CreatedAt:      notification.CreatedAt,
	}
	if err := s.broker.Publish(ctx, eventsChannel, event); err != nil {
		s.logger.Error(err, "failed to publish notification event",
			"notification_id", notification.ID.String())
	}

	return nil
}

func (s *service) List(ctx context.Context, filters *model.NotificationFilters) ([]*model.Notification, error) {
	notifications, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *service) validate(notification *model.Notification) error {
	if notification.AppointmentID == uuid.Nil {
		return fmt.Errorf("appointment ID is required")
	}
	if notification.RecipientID == uuid.Nil {
		return fmt.Errorf("recipient ID is required")
	}
	if !notification.RecipientType.Valid() {
		return fmt.Errorf("invalid recipient type %q", notification.RecipientType)
	}
	if notification.Message == "" {
		return fmt.Errorf("message is required")
	}
	if notification.Channel == "" {
		return fmt.Errorf("channel is required")
	}
	return nil
}
