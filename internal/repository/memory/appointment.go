package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/pkg/errors"
)

type appointmentRepository struct {
	store *Store
}

func (r *appointmentRepository) Create(_ context.Context, appointment *model.Appointment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.patients[appointment.PatientID]; !ok {
		return errors.NotFound("patient", nil)
	}
	if _, ok := r.store.doctors[appointment.DoctorID]; !ok {
		return errors.NotFound("doctor", nil)
	}
	if _, ok := r.store.slots[appointment.SlotID]; !ok {
		return errors.NotFound("slot", nil)
	}

	touch(&appointment.Base)
	if appointment.Status == "" {
		appointment.Status = model.AppointmentStatusScheduled
	}
	cp := *appointment
	r.store.appointments[appointment.ID] = &cp
	return nil
}

func (r *appointmentRepository) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	appt, ok := r.store.appointments[id]
	if !ok {
		return nil, errors.NotFound("appointment", nil)
	}
	cp := *appt
	return &cp, nil
}

func (r *appointmentRepository) SetStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus, staffID *uuid.UUID) (*model.Appointment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.setStatusLocked(id, status, staffID, nil, nil)
}

func (r *appointmentRepository) SetCancellation(_ context.Context, id uuid.UUID, cancelledBy, reason string) (*model.Appointment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.setStatusLocked(id, model.AppointmentStatusCancelled, nil, &cancelledBy, &reason)
}

func (r *appointmentRepository) setStatusLocked(id uuid.UUID, status model.AppointmentStatus, staffID *uuid.UUID, cancelledBy, reason *string) (*model.Appointment, error) {
	appt, ok := r.store.appointments[id]
	if !ok {
		return nil, errors.NotFound("appointment", nil)
	}
	if !appt.Status.CanTransitionTo(status) {
		return nil, errors.InvalidTransition(string(appt.Status), string(status))
	}

	appt.Status = status
	if staffID != nil {
		appt.StaffID = staffID
	}
	if cancelledBy != nil {
		appt.CancelledBy = cancelledBy
	}
	if reason != nil {
		appt.CancelReason = reason
	}
	appt.Version++
	touch(&appt.Base)

	cp := *appt
	return &cp, nil
}

func (r *appointmentRepository) Update(_ context.Context, appointment *model.Appointment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.appointments[appointment.ID]
	if !ok {
		return errors.NotFound("appointment", nil)
	}
	if current.Version != appointment.Version {
		return errors.Conflict("appointment", nil)
	}

	cp := *appointment
	touch(&cp.Base)
	cp.Version = current.Version + 1
	r.store.appointments[appointment.ID] = &cp
	*appointment = cp
	return nil
}

func (r *appointmentRepository) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if filters == nil {
		filters = &model.AppointmentFilters{}
	}

	var out []*model.Appointment
	for _, appt := range r.store.appointments {
		if filters.PatientID != uuid.Nil && appt.PatientID != filters.PatientID {
			continue
		}
		if filters.DoctorID != uuid.Nil && appt.DoctorID != filters.DoctorID {
			continue
		}
		if filters.Status != "" && appt.Status != filters.Status {
			continue
		}
		if !filters.Date.IsZero() && !sameDay(appt.Date, filters.Date) {
			continue
		}
		cp := *appt
		out = append(out, &cp)
	}
	return out, nil
}
