package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// Notification categories emitted by the scheduling engine.
const (
	NotificationBookingConfirmation = "BOOKING_CONFIRMATION"
	NotificationCancellation        = "CANCELLATION"
	NotificationStatusUpdate        = "STATUS_UPDATE"
	NotificationReassignment        = "REASSIGNMENT"
)

// Notification channels.
const (
	ChannelEmail = "EMAIL"
	ChannelInApp = "IN_APP"
)

// Notification is created as a side effect of an appointment transition
// and handed off to the delivery subsystem, which alone moves it out of
// PENDING.
type Notification struct {
	ID            uuid.UUID          `db:"id" json:"id"`
	AppointmentID uuid.UUID          `db:"appointment_id" json:"appointment_id"`
	RecipientType Role               `db:"recipient_type" json:"recipient_type"`
	RecipientID   uuid.UUID          `db:"recipient_id" json:"recipient_id"`
	Message       string             `db:"message" json:"message"`
	Category      string             `db:"category" json:"category"`
	Channel       string             `db:"channel" json:"channel"`
	Status        NotificationStatus `db:"status" json:"status"`
	RetryCount    int                `db:"retry_count" json:"retry_count"`
	LastError     string             `db:"last_error" json:"last_error,omitempty"`
	SentAt        *time.Time         `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updated_at"`
}

// NotificationEvent is the in-app payload published to the message broker.
type NotificationEvent struct {
	ID             uuid.UUID `json:"id"`
	NotificationID uuid.UUID `json:"notification_id"`
	RecipientID    uuid.UUID `json:"recipient_id"`
	Category       string    `json:"category"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

// NotificationFilters narrows notification queries.
type NotificationFilters struct {
	RecipientType Role
	RecipientID   uuid.UUID
	Status        NotificationStatus
}
