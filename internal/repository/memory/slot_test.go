package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository/memory"
	"github.com/medisched/scheduler-api/pkg/errors"
)

func createSlot(t *testing.T, store *memory.Store, status model.SlotStatus) *model.Slot {
	t.Helper()
	start := time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC)
	slot := &model.Slot{
		DoctorID:  uuid.New(),
		Date:      start.Truncate(24 * time.Hour),
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    status,
	}
	require.NoError(t, store.Slots().Create(context.Background(), slot))
	return slot
}

func TestSlotReserve(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	slot := createSlot(t, store, model.SlotStatusAvailable)
	apptID := uuid.New()

	reserved, err := store.Slots().Reserve(ctx, slot.ID, apptID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusBooked, reserved.Status)
	require.NotNil(t, reserved.AppointmentID)
	assert.Equal(t, apptID, *reserved.AppointmentID)
	assert.Greater(t, reserved.Version, slot.Version)

	_, err = store.Slots().Reserve(ctx, slot.ID, uuid.New())
	assert.True(t, errors.Is(err, errors.ErrSlotUnavailable))

	_, err = store.Slots().Reserve(ctx, uuid.New(), uuid.New())
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestSlotReserveWithdrawn(t *testing.T) {
	store := memory.NewStore()
	slot := createSlot(t, store, model.SlotStatusCancelled)

	_, err := store.Slots().Reserve(context.Background(), slot.ID, uuid.New())
	assert.True(t, errors.Is(err, errors.ErrSlotUnavailable))
}

func TestSlotReserveConcurrent(t *testing.T) {
	store := memory.NewStore()
	slot := createSlot(t, store, model.SlotStatusAvailable)

	const attempts = 50
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Slots().Reserve(context.Background(), slot.ID, uuid.New())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestSlotRelease(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	slot := createSlot(t, store, model.SlotStatusAvailable)

	_, err := store.Slots().Reserve(ctx, slot.ID, uuid.New())
	require.NoError(t, err)

	released, err := store.Slots().Release(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusAvailable, released.Status)
	assert.Nil(t, released.AppointmentID)

	// releasing an already available slot is a no-op
	again, err := store.Slots().Release(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusAvailable, again.Status)

	_, err = store.Slots().Release(ctx, uuid.New())
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestSlotReleaseKeepsWithdrawn(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	slot := createSlot(t, store, model.SlotStatusCancelled)
	apptID := uuid.New()
	slot.AppointmentID = &apptID
	require.NoError(t, store.Slots().Update(ctx, slot))

	released, err := store.Slots().Release(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusCancelled, released.Status)
	assert.Nil(t, released.AppointmentID)
}

func TestSlotUpdateVersionConflict(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	slot := createSlot(t, store, model.SlotStatusAvailable)

	stale := *slot
	slot.Status = model.SlotStatusCancelled
	require.NoError(t, store.Slots().Update(ctx, slot))

	stale.Status = model.SlotStatusBooked
	err := store.Slots().Update(ctx, &stale)
	assert.True(t, errors.Is(err, errors.ErrConflict))
}

func TestSlotList(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	a := createSlot(t, store, model.SlotStatusAvailable)
	createSlot(t, store, model.SlotStatusBooked)

	byDoctor, err := store.Slots().List(ctx, &model.SlotFilters{DoctorID: a.DoctorID})
	require.NoError(t, err)
	require.Len(t, byDoctor, 1)
	assert.Equal(t, a.ID, byDoctor[0].ID)

	available, err := store.Slots().List(ctx, &model.SlotFilters{Status: model.SlotStatusAvailable})
	require.NoError(t, err)
	assert.Len(t, available, 1)

	all, err := store.Slots().List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAppointmentSetStatusEnforcesTransitions(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	doctor := &model.Doctor{Name: "D", Email: "d@clinic.test"}
	require.NoError(t, store.Doctors().Create(ctx, doctor))
	patient := &model.Patient{Name: "P", Email: "p@example.test"}
	require.NoError(t, store.Patients().Create(ctx, patient))
	slot := createSlot(t, store, model.SlotStatusBooked)

	appt := &model.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		SlotID:    slot.ID,
		Status:    model.AppointmentStatusScheduled,
	}
	require.NoError(t, store.Appointments().Create(ctx, appt))

	updated, err := store.Appointments().SetStatus(ctx, appt.ID, model.AppointmentStatusCompleted, nil)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, updated.Status)

	_, err = store.Appointments().SetStatus(ctx, appt.ID, model.AppointmentStatusNoShow, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidTransition))

	_, err = store.Appointments().SetStatus(ctx, uuid.New(), model.AppointmentStatusCompleted, nil)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestAppointmentSetCancellation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	doctor := &model.Doctor{Name: "D", Email: "d2@clinic.test"}
	require.NoError(t, store.Doctors().Create(ctx, doctor))
	patient := &model.Patient{Name: "P", Email: "p2@example.test"}
	require.NoError(t, store.Patients().Create(ctx, patient))
	slot := createSlot(t, store, model.SlotStatusBooked)

	appt := &model.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		SlotID:    slot.ID,
	}
	require.NoError(t, store.Appointments().Create(ctx, appt))

	cancelled, err := store.Appointments().SetCancellation(ctx, appt.ID, "PATIENT", "sick")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, "PATIENT", *cancelled.CancelledBy)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "sick", *cancelled.CancelReason)
}

func TestAppointmentCreateChecksReferences(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	err := store.Appointments().Create(ctx, &model.Appointment{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		SlotID:    uuid.New(),
	})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
