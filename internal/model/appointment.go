package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "SCHEDULED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusNoShow    AppointmentStatus = "NO_SHOW"
)

// DefaultAppointmentType is used when a booking request leaves the type empty.
const DefaultAppointmentType = "CONSULTATION"

// appointmentTransitions is the full status state machine. SCHEDULED is
// the only non-terminal state.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusScheduled: {
		AppointmentStatusCompleted,
		AppointmentStatusCancelled,
		AppointmentStatusNoShow,
	},
}

// CanTransitionTo reports whether the state machine permits moving from s to next.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s AppointmentStatus) Terminal() bool {
	return len(appointmentTransitions[s]) == 0
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// Appointment is a patient's reservation against a slot. Date, StartTime
// and EndTime are copied from the slot when the reservation is taken so
// the record stays readable even if the slot is later withdrawn.
type Appointment struct {
	Base
	PatientID    uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID     uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	SlotID       uuid.UUID         `db:"slot_id" json:"slot_id"`
	Date         time.Time         `db:"date" json:"date"`
	StartTime    time.Time         `db:"start_time" json:"start_time"`
	EndTime      time.Time         `db:"end_time" json:"end_time"`
	Status       AppointmentStatus `db:"status" json:"status"`
	Type         string            `db:"type" json:"type"`
	StaffID      *uuid.UUID        `db:"staff_id" json:"staff_id,omitempty"`
	CancelledBy  *string           `db:"cancelled_by" json:"cancelled_by,omitempty"`
	CancelReason *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

type BookAppointmentRequest struct {
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	DoctorID  uuid.UUID `json:"doctor_id" binding:"required"`
	SlotID    uuid.UUID `json:"slot_id" binding:"required"`
	Type      string    `json:"type" binding:"max=100"`
}

type CancelAppointmentRequest struct {
	CancelledBy string `json:"cancelled_by" binding:"required,oneof=PATIENT DOCTOR STAFF"`
	Reason      string `json:"reason" binding:"max=1000"`
}

type UpdateAppointmentStatusRequest struct {
	Status  AppointmentStatus `json:"status" binding:"required"`
	StaffID *uuid.UUID        `json:"staff_id"`
}

type ReassignAppointmentRequest struct {
	DoctorID *uuid.UUID `json:"doctor_id"`
	SlotID   *uuid.UUID `json:"slot_id"`
}

// AppointmentFilters narrows appointment queries; zero values match everything.
type AppointmentFilters struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Status    AppointmentStatus
	Date      time.Time
}
