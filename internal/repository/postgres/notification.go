package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	"github.com/medisched/scheduler-api/pkg/errors"
)

type notificationRepository struct {
	*BaseRepository
}

func NewNotificationRepository(base *BaseRepository) repository.NotificationRepository {
	return &notificationRepository{BaseRepository: base}
}

const notificationColumns = `
	id, appointment_id, recipient_type, recipient_id, message, category,
	channel, status, retry_count, last_error, sent_at, created_at, updated_at
`

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	if notification.Status == "" {
		notification.Status = model.NotificationStatusPending
	}
	notification.CreatedAt = time.Now()
	notification.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		notification.ID,
		notification.AppointmentID,
		notification.RecipientType,
		notification.RecipientID,
		notification.Message,
		notification.Category,
		notification.Channel,
		notification.Status,
		notification.RetryCount,
		notification.LastError,
		notification.SentAt,
		notification.CreatedAt,
		notification.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr(err, "notification")
	}
	return nil
}

func (r *notificationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	var notification model.Notification
	if err := r.db.GetContext(ctx, &notification, query, id); err != nil {
		return nil, mapLookupErr(err, "notification")
	}
	return &notification, nil
}

func (r *notificationRepository) List(ctx context.Context, filters *model.NotificationFilters) ([]*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filters != nil {
		if filters.RecipientType != "" {
			query += sqlAnd("recipient_type", argPos)
			args = append(args, filters.RecipientType)
			argPos++
		}
		if filters.RecipientID != uuid.Nil {
			query += sqlAnd("recipient_id", argPos)
			args = append(args, filters.RecipientID)
			argPos++
		}
		if filters.Status != "" {
			query += sqlAnd("status", argPos)
			args = append(args, filters.Status)
			argPos++
		}
	}
	query += " ORDER BY created_at DESC"

	var notifications []*model.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, errors.Internal(err)
	}
	return notifications, nil
}

func (r *notificationRepository) ListPending(ctx context.Context, limit int) ([]*model.Notification, error) {
	// SKIP LOCKED lets several worker replicas share the queue without
	// delivering the same notification twice.
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`
	var notifications []*model.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, model.NotificationStatusPending, limit); err != nil {
		return nil, errors.Internal(err)
	}
	return notifications, nil
}

func (r *notificationRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE notifications
		SET status = $1, sent_at = $2, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, model.NotificationStatusSent, time.Now(), id)
	if err != nil {
		return errors.Internal(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errors.NotFound("notification", nil)
	}
	return nil
}

func (r *notificationRepository) MarkFailed(ctx context.Context, id uuid.UUID, deliveryErr string) error {
	query := `
		UPDATE notifications
		SET status = $1, last_error = $2, retry_count = retry_count + 1, updated_at = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query, model.NotificationStatusFailed, deliveryErr, time.Now(), id)
	if err != nil {
		return errors.Internal(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return errors.NotFound("notification", nil)
	}
	return nil
}
