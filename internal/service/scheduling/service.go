// Package scheduling implements the appointment lifecycle engine. It is
// the only writer allowed to touch slot and appointment state in one
// logical operation, and every state change it commits emits
// notifications to the affected parties.
package scheduling

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/google/uuid"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	"github.com/medisched/scheduler-api/internal/service/notification"
	"github.com/medisched/scheduler-api/pkg/errors"
	"github.com/medisched/scheduler-api/pkg/keylock"
	"github.com/medisched/scheduler-api/pkg/logger"
	"github.com/medisched/scheduler-api/pkg/metrics"
)

const dateFormat = "2006-01-02"
const timeFormat = "15:04"

type Config struct {
	// NotifyOnComplete controls whether completing an appointment emits a
	// notification. NO_SHOW always notifies.
	NotifyOnComplete bool
}

type Service struct {
	slots        repository.SlotRepository
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	notifier     notification.Service
	locks        *keylock.KeyLock
	metrics      *metrics.Metrics
	logger       *logger.Logger
	cfg          Config
}

func NewService(
	slots repository.SlotRepository,
	appointments repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	notifier notification.Service,
	m *metrics.Metrics,
	log *logger.Logger,
	cfg Config,
) *Service {
	return &Service{
		slots:        slots,
		appointments: appointments,
		doctors:      doctors,
		patients:     patients,
		notifier:     notifier,
		locks:        keylock.New(),
		metrics:      m,
		logger:       log,
		cfg:          cfg,
	}
}

// Lock keys follow a fixed global order: slot keys first (sorted among
// themselves), then the appointment key. Every multi-record operation
// acquires in that order, which keeps concurrent book/cancel/reassign
// calls deadlock-free.
func slotKey(id uuid.UUID) string { return "slot:" + id.String() }

func appointmentKey(id uuid.UUID) string { return "appointment:" + id.String() }

func (s *Service) lockSlotsThenAppointment(slotIDs []uuid.UUID, appointmentID uuid.UUID) func() {
	keys := make([]string, 0, len(slotIDs)+1)
	for _, id := range slotIDs {
		keys = append(keys, slotKey(id))
	}
	sort.Strings(keys)
	// a reassignment targeting the appointment's current slot names the
	// same slot twice, and the mutexes are not reentrant
	keys = slices.Compact(keys)
	keys = append(keys, appointmentKey(appointmentID))
	return s.locks.Lock(keys...)
}

// lockAppointmentWithSlot takes the slot and appointment locks for an
// existing appointment. The slot reference can change between the
// unlocked read and the lock acquisition (a concurrent reassignment), so
// it re-reads under the lock and retries until the reference is stable.
func (s *Service) lockAppointmentWithSlot(ctx context.Context, id uuid.UUID) (*model.Appointment, func(), error) {
	for {
		appt, err := s.appointments.Get(ctx, id)
		if err != nil {
			return nil, nil, err
		}

		unlock := s.lockSlotsThenAppointment([]uuid.UUID{appt.SlotID}, id)

		current, err := s.appointments.Get(ctx, id)
		if err != nil {
			unlock()
			return nil, nil, err
		}
		if current.SlotID == appt.SlotID {
			return current, unlock, nil
		}
		unlock()
	}
}

// BookAppointment reserves the slot, creates the appointment, and
// notifies both parties. If the create fails after the reservation was
// taken, the reservation is rolled back before the error surfaces.
func (s *Service) BookAppointment(ctx context.Context, actor model.Actor, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	if req.PatientID == uuid.Nil || req.DoctorID == uuid.Nil || req.SlotID == uuid.Nil {
		return nil, errors.BadRequest("patient, doctor and slot are required", nil)
	}

	if _, err := s.patients.Get(ctx, req.PatientID); err != nil {
		return nil, err
	}
	if _, err := s.doctors.Get(ctx, req.DoctorID); err != nil {
		return nil, err
	}
	slot, err := s.slots.Get(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}
	if slot.DoctorID != req.DoctorID {
		return nil, errors.DoctorSlotMismatch(req.DoctorID.String(), req.SlotID.String())
	}

	apptType := req.Type
	if apptType == "" {
		apptType = model.DefaultAppointmentType
	}

	unlock := s.locks.Lock(slotKey(req.SlotID))
	defer unlock()

	appointmentID := uuid.New()
	reserved, err := s.slots.Reserve(ctx, req.SlotID, appointmentID)
	if err != nil {
		if errors.Is(err, errors.ErrSlotUnavailable) && s.metrics != nil {
			s.metrics.BookingRacesLost.Inc()
		}
		return nil, err
	}

	appointment := &model.Appointment{
		Base:      model.Base{ID: appointmentID},
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		SlotID:    reserved.ID,
		Date:      reserved.Date,
		StartTime: reserved.StartTime,
		EndTime:   reserved.EndTime,
		Status:    model.AppointmentStatusScheduled,
		Type:      apptType,
	}

	if err := s.appointments.Create(ctx, appointment); err != nil {
		// compensating action: the reservation must not outlive a failed create
		if _, relErr := s.slots.Release(ctx, reserved.ID); relErr != nil {
			s.logger.Error(relErr, "failed to release slot after create failure",
				"slot_id", reserved.ID.String())
		}
		if s.metrics != nil {
			s.metrics.BookingRollbacks.Inc()
		}
		return nil, err
	}

	window := fmt.Sprintf("%s at %s", appointment.Date.Format(dateFormat), appointment.StartTime.Format(timeFormat))
	s.notifyParties(ctx, appointment, model.NotificationBookingConfirmation,
		fmt.Sprintf("Your appointment has been booked for %s", window),
		fmt.Sprintf("A new appointment was booked for %s", window),
	)

	if s.metrics != nil {
		s.metrics.BookingsTotal.Inc()
	}
	s.logger.Info("appointment booked",
		"appointment_id", appointment.ID.String(),
		"slot_id", reserved.ID.String(),
		"actor_role", string(actor.Role))

	return appointment, nil
}

// CancelAppointment moves a SCHEDULED appointment to CANCELLED and
// returns its slot to availability. A missing slot does not undo the
// cancellation.
func (s *Service) CancelAppointment(ctx context.Context, actor model.Actor, id uuid.UUID, req *model.CancelAppointmentRequest) (*model.Appointment, error) {
	appt, unlock, err := s.lockAppointmentWithSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	updated, err := s.appointments.SetCancellation(ctx, id, req.CancelledBy, req.Reason)
	if err != nil {
		return nil, err
	}

	s.releaseBestEffort(ctx, appt.SlotID)

	patientMsg := fmt.Sprintf("Your appointment on %s was cancelled. Reason: %s",
		updated.Date.Format(dateFormat), req.Reason)
	doctorMsg := fmt.Sprintf("The appointment on %s at %s was cancelled. Reason: %s",
		updated.Date.Format(dateFormat), updated.StartTime.Format(timeFormat), req.Reason)
	if actor.Role == model.RoleStaff {
		patientMsg = fmt.Sprintf("Your appointment on %s was cancelled by clinic staff. Reason: %s",
			updated.Date.Format(dateFormat), req.Reason)
		doctorMsg = fmt.Sprintf("The appointment on %s at %s was cancelled by clinic staff. Reason: %s",
			updated.Date.Format(dateFormat), updated.StartTime.Format(timeFormat), req.Reason)
	}
	s.notifyParties(ctx, updated, model.NotificationCancellation, patientMsg, doctorMsg)

	if s.metrics != nil {
		s.metrics.CancellationsTotal.Inc()
	}
	s.logger.Info("appointment cancelled",
		"appointment_id", id.String(),
		"cancelled_by", req.CancelledBy)

	return updated, nil
}

// UpdateAppointmentStatus applies a state-machine transition. COMPLETED
// and NO_SHOW leave the slot BOOKED: a consumed slot stays consumed. A
// CANCELLED target is routed through the full cancellation path so the
// slot is released.
func (s *Service) UpdateAppointmentStatus(ctx context.Context, actor model.Actor, id uuid.UUID, req *model.UpdateAppointmentStatusRequest) (*model.Appointment, error) {
	if !req.Status.Valid() {
		return nil, errors.BadRequest(fmt.Sprintf("unknown status %q", req.Status), nil)
	}

	if req.Status == model.AppointmentStatusCancelled {
		return s.CancelAppointment(ctx, actor, id, &model.CancelAppointmentRequest{
			CancelledBy: string(actor.Role),
		})
	}

	unlock := s.locks.Lock(appointmentKey(id))
	defer unlock()

	updated, err := s.appointments.SetStatus(ctx, id, req.Status, req.StaffID)
	if err != nil {
		return nil, err
	}

	switch updated.Status {
	case model.AppointmentStatusNoShow:
		s.notifyParties(ctx, updated, model.NotificationStatusUpdate,
			fmt.Sprintf("You missed your appointment on %s", updated.Date.Format(dateFormat)),
			fmt.Sprintf("Patient did not show up for the appointment on %s", updated.Date.Format(dateFormat)),
		)
	case model.AppointmentStatusCompleted:
		if s.cfg.NotifyOnComplete {
			s.notifyParties(ctx, updated, model.NotificationStatusUpdate,
				fmt.Sprintf("Your appointment on %s is complete", updated.Date.Format(dateFormat)),
				"",
			)
		}
	}

	if s.metrics != nil {
		s.metrics.StatusUpdates.WithLabelValues(string(updated.Status)).Inc()
	}
	s.logger.Info("appointment status updated",
		"appointment_id", id.String(),
		"status", string(updated.Status))

	return updated, nil
}

// ReassignAppointment moves a SCHEDULED appointment to another doctor
// and/or slot. The new slot is held before the old one is touched; if
// the new reservation cannot be taken the appointment and old slot are
// left exactly as they were.
func (s *Service) ReassignAppointment(ctx context.Context, actor model.Actor, id uuid.UUID, req *model.ReassignAppointmentRequest) (*model.Appointment, error) {
	if req.DoctorID == nil && req.SlotID == nil {
		return nil, errors.BadRequest("nothing to reassign: provide a doctor and/or a slot", nil)
	}

	if req.SlotID == nil {
		return s.reassignDoctor(ctx, id, *req.DoctorID)
	}
	return s.reassignSlot(ctx, id, req)
}

func (s *Service) reassignDoctor(ctx context.Context, id, doctorID uuid.UUID) (*model.Appointment, error) {
	doctor, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	appt, unlock, err := s.lockAppointmentWithSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if appt.Status != model.AppointmentStatusScheduled {
		return nil, errors.InvalidState(fmt.Sprintf("appointment is %s, only scheduled appointments can be reassigned", appt.Status))
	}

	appt.DoctorID = doctor.ID
	if err := s.appointments.Update(ctx, appt); err != nil {
		return nil, err
	}

	s.notifyPatient(ctx, appt, model.NotificationReassignment,
		fmt.Sprintf("Your appointment on %s has been reassigned to Dr. %s",
			appt.Date.Format(dateFormat), doctor.Name))

	if s.metrics != nil {
		s.metrics.ReassignmentsTotal.Inc()
	}
	return appt, nil
}

func (s *Service) reassignSlot(ctx context.Context, id uuid.UUID, req *model.ReassignAppointmentRequest) (*model.Appointment, error) {
	newSlot, err := s.slots.Get(ctx, *req.SlotID)
	if err != nil {
		return nil, err
	}
	if req.DoctorID != nil && *req.DoctorID != newSlot.DoctorID {
		return nil, errors.DoctorSlotMismatch(req.DoctorID.String(), req.SlotID.String())
	}

	for {
		appt, err := s.appointments.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		unlock := s.lockSlotsThenAppointment([]uuid.UUID{appt.SlotID, newSlot.ID}, id)

		current, err := s.appointments.Get(ctx, id)
		if err != nil {
			unlock()
			return nil, err
		}
		if current.SlotID != appt.SlotID {
			unlock()
			continue
		}

		updated, err := s.reassignSlotLocked(ctx, current, newSlot.ID)
		unlock()
		return updated, err
	}
}

func (s *Service) reassignSlotLocked(ctx context.Context, appt *model.Appointment, newSlotID uuid.UUID) (*model.Appointment, error) {
	if appt.Status != model.AppointmentStatusScheduled {
		return nil, errors.InvalidState(fmt.Sprintf("appointment is %s, only scheduled appointments can be reassigned", appt.Status))
	}
	if appt.SlotID == newSlotID {
		return nil, errors.BadRequest("appointment already occupies this slot", nil)
	}

	oldSlotID := appt.SlotID

	// hold the new slot before giving anything up
	reserved, err := s.slots.Reserve(ctx, newSlotID, appt.ID)
	if err != nil {
		return nil, err
	}

	appt.SlotID = reserved.ID
	appt.DoctorID = reserved.DoctorID
	appt.Date = reserved.Date
	appt.StartTime = reserved.StartTime
	appt.EndTime = reserved.EndTime

	if err := s.appointments.Update(ctx, appt); err != nil {
		// compensating action: drop the fresh reservation, the old slot
		// was never touched
		if _, relErr := s.slots.Release(ctx, reserved.ID); relErr != nil {
			s.logger.Error(relErr, "failed to release slot after reassignment failure",
				"slot_id", reserved.ID.String())
		}
		return nil, err
	}

	s.releaseBestEffort(ctx, oldSlotID)

	s.notifyPatient(ctx, appt, model.NotificationReassignment,
		fmt.Sprintf("Your appointment has been moved to %s at %s",
			appt.Date.Format(dateFormat), appt.StartTime.Format(timeFormat)))

	if s.metrics != nil {
		s.metrics.ReassignmentsTotal.Inc()
	}
	s.logger.Info("appointment reassigned",
		"appointment_id", appt.ID.String(),
		"old_slot_id", oldSlotID.String(),
		"new_slot_id", appt.SlotID.String())

	return appt, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.appointments.Get(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.appointments.List(ctx, filters)
}

// releaseBestEffort returns a slot to availability after its appointment
// left the SCHEDULED state. Slot absence is not fatal: the appointment
// transition already committed and stands.
func (s *Service) releaseBestEffort(ctx context.Context, slotID uuid.UUID) {
	if _, err := s.slots.Release(ctx, slotID); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			s.logger.Warn("slot missing during release", "slot_id", slotID.String())
			return
		}
		s.logger.Error(err, "failed to release slot", "slot_id", slotID.String())
	}
}

// notifyParties emits to the patient and, when doctorMsg is non-empty,
// the doctor. Emission is fire-and-forget: a sink failure never rolls
// back the transition that triggered it.
func (s *Service) notifyParties(ctx context.Context, appt *model.Appointment, category, patientMsg, doctorMsg string) {
	s.notifyPatient(ctx, appt, category, patientMsg)
	if doctorMsg == "" {
		return
	}
	s.emit(ctx, &model.Notification{
		AppointmentID: appt.ID,
		RecipientType: model.RoleDoctor,
		RecipientID:   appt.DoctorID,
		Message:       doctorMsg,
		Category:      category,
		Channel:       model.ChannelEmail,
	})
}

func (s *Service) notifyPatient(ctx context.Context, appt *model.Appointment, category, msg string) {
	s.emit(ctx, &model.Notification{
		AppointmentID: appt.ID,
		RecipientType: model.RolePatient,
		RecipientID:   appt.PatientID,
		Message:       msg,
		Category:      category,
		Channel:       model.ChannelEmail,
	})
}

func (s *Service) emit(ctx context.Context, n *model.Notification) {
	if err := s.notifier.Emit(ctx, n); err != nil {
		s.logger.Error(err, "failed to emit notification",
			"appointment_id", n.AppointmentID.String(),
			"category", n.Category)
		return
	}
	if s.metrics != nil {
		s.metrics.NotificationsEmitted.Inc()
	}
}
