package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/pkg/errors"
)

type notificationRepository struct {
	store *Store
}

func (r *notificationRepository) Create(_ context.Context, notification *model.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = now
	}
	notification.UpdatedAt = now
	if notification.Status == "" {
		notification.Status = model.NotificationStatusPending
	}

	cp := *notification
	r.store.notifications[notification.ID] = &cp
	r.store.notifOrder = append(r.store.notifOrder, notification.ID)
	return nil
}

func (r *notificationRepository) Get(_ context.Context, id uuid.UUID) (*model.Notification, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	n, ok := r.store.notifications[id]
	if !ok {
		return nil, errors.NotFound("notification", nil)
	}
	cp := *n
	return &cp, nil
}

func (r *notificationRepository) List(_ context.Context, filters *model.NotificationFilters) ([]*model.Notification, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if filters == nil {
		filters = &model.NotificationFilters{}
	}

	var out []*model.Notification
	for _, id := range r.store.notifOrder {
		n := r.store.notifications[id]
		if filters.RecipientType != "" && n.RecipientType != filters.RecipientType {
			continue
		}
		if filters.RecipientID != uuid.Nil && n.RecipientID != filters.RecipientID {
			continue
		}
		if filters.Status != "" && n.Status != filters.Status {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (r *notificationRepository) ListPending(_ context.Context, limit int) ([]*model.Notification, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*model.Notification
	for _, id := range r.store.notifOrder {
		n := r.store.notifications[id]
		if n.Status != model.NotificationStatusPending {
			continue
		}
		cp := *n
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *notificationRepository) MarkSent(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	n, ok := r.store.notifications[id]
	if !ok {
		return errors.NotFound("notification", nil)
	}
	now := time.Now()
	n.Status = model.NotificationStatusSent
	n.SentAt = &now
	n.UpdatedAt = now
	return nil
}

func (r *notificationRepository) MarkFailed(_ context.Context, id uuid.UUID, deliveryErr string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	n, ok := r.store.notifications[id]
	if !ok {
		return errors.NotFound("notification", nil)
	}
	n.Status = model.NotificationStatusFailed
	n.LastError = deliveryErr
	n.RetryCount++
	n.UpdatedAt = time.Now()
	return nil
}
