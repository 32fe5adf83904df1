package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/medisched/scheduler-api/internal/model"
)

// All repository interfaces in one file.
//
// Get returns a NotFound error when the id is unknown. Update methods
// compare the record's Version and return a Conflict error when the row
// changed underneath the caller. Reserve and the status setters are
// compare-and-set operations: the store, not the caller, arbitrates
// races on a single record.
type (
	// SlotRepository owns slot records and their availability status.
	SlotRepository interface {
		Create(ctx context.Context, slot *model.Slot) error
		Get(ctx context.Context, id uuid.UUID) (*model.Slot, error)
		// Update writes the full record; fails with Conflict on a version mismatch.
		Update(ctx context.Context, slot *model.Slot) error
		// Reserve atomically moves an AVAILABLE slot to BOOKED and binds it to
		// the appointment. Exactly one of N concurrent calls can win; the rest
		// fail with SlotUnavailable (or NotFound for an unknown slot).
		Reserve(ctx context.Context, slotID, appointmentID uuid.UUID) (*model.Slot, error)
		// Release clears the reservation. A slot already AVAILABLE is a no-op;
		// a withdrawn (CANCELLED) slot keeps its status, only the binding is
		// cleared. Unknown slots fail with NotFound.
		Release(ctx context.Context, slotID uuid.UUID) (*model.Slot, error)
		List(ctx context.Context, filters *model.SlotFilters) ([]*model.Slot, error)
	}

	// AppointmentRepository owns appointment records and enforces the status
	// state machine on writes.
	AppointmentRepository interface {
		// Create persists a new SCHEDULED appointment. The referenced patient,
		// doctor and slot must exist; otherwise it fails with NotFound. The
		// caller may pre-assign the id, a nil id gets a fresh one.
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		// SetStatus performs a state-machine-checked transition and records the
		// staff member of record. Fails with InvalidTransition when the target
		// status is not reachable from the current one.
		SetStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, staffID *uuid.UUID) (*model.Appointment, error)
		// SetCancellation is the CANCELLED transition plus who cancelled and why.
		SetCancellation(ctx context.Context, id uuid.UUID, cancelledBy, reason string) (*model.Appointment, error)
		// Update writes reference fields (slot, doctor, window); fails with
		// Conflict on a version mismatch. Status is not touched here.
		Update(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
		List(ctx context.Context, filters *model.NotificationFilters) ([]*model.Notification, error)
		// ListPending returns up to limit notifications awaiting delivery,
		// oldest first.
		ListPending(ctx context.Context, limit int) ([]*model.Notification, error)
		// MarkSent and MarkFailed are reserved for the delivery subsystem.
		MarkSent(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, deliveryErr string) error
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		GetByEmail(ctx context.Context, email string) (*model.Doctor, error)
		List(ctx context.Context) ([]*model.Doctor, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByEmail(ctx context.Context, email string) (*model.Patient, error)
		List(ctx context.Context) ([]*model.Patient, error)
	}

	StaffRepository interface {
		Create(ctx context.Context, staff *model.Staff) error
		Get(ctx context.Context, id uuid.UUID) (*model.Staff, error)
		GetByEmail(ctx context.Context, email string) (*model.Staff, error)
	}
)
