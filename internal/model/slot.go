package model

import (
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "AVAILABLE"
	SlotStatusBooked    SlotStatus = "BOOKED"
	SlotStatusCancelled SlotStatus = "CANCELLED"
)

// Slot is a doctor-published bookable time window. AppointmentID is set
// exactly when the slot is BOOKED; the appointment it names holds the
// reservation. The cross-reference is by id only, the appointment record
// is owned by the appointment store.
type Slot struct {
	Base
	DoctorID      uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	Date          time.Time  `db:"date" json:"date"`
	StartTime     time.Time  `db:"start_time" json:"start_time"`
	EndTime       time.Time  `db:"end_time" json:"end_time"`
	Status        SlotStatus `db:"status" json:"status"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
}

type CreateSlotRequest struct {
	Date      time.Time `json:"date" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required,gtfield=StartTime"`
}

// SlotFilters narrows slot queries; zero values match everything.
type SlotFilters struct {
	DoctorID uuid.UUID
	Date     time.Time
	Status   SlotStatus
}

// Overlaps reports whether the slot's window intersects [start, end).
func (s *Slot) Overlaps(start, end time.Time) bool {
	return s.StartTime.Before(end) && start.Before(s.EndTime)
}
