// Package memory holds mutex-guarded in-memory implementations of the
// repository interfaces. They back the test suite and demo runs and obey
// the same atomicity contracts as the postgres implementations.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
)

// Store is the shared backing state. All repository views serialize on
// one mutex, which is what makes Reserve and the status setters atomic.
type Store struct {
	mu            sync.RWMutex
	slots         map[uuid.UUID]*model.Slot
	appointments  map[uuid.UUID]*model.Appointment
	notifications map[uuid.UUID]*model.Notification
	notifOrder    []uuid.UUID
	doctors       map[uuid.UUID]*model.Doctor
	patients      map[uuid.UUID]*model.Patient
	staff         map[uuid.UUID]*model.Staff
}

func NewStore() *Store {
	return &Store{
		slots:         make(map[uuid.UUID]*model.Slot),
		appointments:  make(map[uuid.UUID]*model.Appointment),
		notifications: make(map[uuid.UUID]*model.Notification),
		doctors:       make(map[uuid.UUID]*model.Doctor),
		patients:      make(map[uuid.UUID]*model.Patient),
		staff:         make(map[uuid.UUID]*model.Staff),
	}
}

func (s *Store) Slots() repository.SlotRepository {
	return &slotRepository{store: s}
}

func (s *Store) Appointments() repository.AppointmentRepository {
	return &appointmentRepository{store: s}
}

func (s *Store) Notifications() repository.NotificationRepository {
	return &notificationRepository{store: s}
}

func (s *Store) Doctors() repository.DoctorRepository {
	return &doctorRepository{store: s}
}

func (s *Store) Patients() repository.PatientRepository {
	return &patientRepository{store: s}
}

func (s *Store) Staff() repository.StaffRepository {
	return &staffRepository{store: s}
}

func touch(base *model.Base) {
	now := time.Now()
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
	if base.Version == 0 {
		base.Version = 1
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
