package slot_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository/memory"
	"github.com/medisched/scheduler-api/internal/service/slot"
	"github.com/medisched/scheduler-api/pkg/errors"
	"github.com/medisched/scheduler-api/pkg/logger"
)

func newService(t *testing.T) (*slot.Service, *memory.Store, *model.Doctor) {
	t.Helper()
	store := memory.NewStore()
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})

	doctor := &model.Doctor{Name: "Grace Hall", Specialization: "Cardiology", Email: "grace@clinic.test"}
	require.NoError(t, store.Doctors().Create(context.Background(), doctor))

	return slot.NewService(store.Slots(), store.Doctors(), log), store, doctor
}

func window(hour int) (time.Time, time.Time, time.Time) {
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	start := day.Add(time.Duration(hour) * time.Hour)
	return day, start, start.Add(30 * time.Minute)
}

func TestPublish(t *testing.T) {
	svc, _, doctor := newService(t)
	day, start, end := window(9)

	published, err := svc.Publish(context.Background(), doctor.ID, &model.CreateSlotRequest{
		Date: day, StartTime: start, EndTime: end,
	})
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusAvailable, published.Status)
	assert.Equal(t, doctor.ID, published.DoctorID)
	assert.NotEqual(t, uuid.Nil, published.ID)
}

func TestPublishUnknownDoctor(t *testing.T) {
	svc, _, _ := newService(t)
	day, start, end := window(9)

	_, err := svc.Publish(context.Background(), uuid.New(), &model.CreateSlotRequest{
		Date: day, StartTime: start, EndTime: end,
	})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestPublishEmptyWindow(t *testing.T) {
	svc, _, doctor := newService(t)
	day, start, _ := window(9)

	_, err := svc.Publish(context.Background(), doctor.ID, &model.CreateSlotRequest{
		Date: day, StartTime: start, EndTime: start,
	})
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestPublishOverlap(t *testing.T) {
	svc, _, doctor := newService(t)
	ctx := context.Background()
	day, start, end := window(9)

	_, err := svc.Publish(ctx, doctor.ID, &model.CreateSlotRequest{Date: day, StartTime: start, EndTime: end})
	require.NoError(t, err)

	// overlapping window on the same day is rejected
	_, err = svc.Publish(ctx, doctor.ID, &model.CreateSlotRequest{
		Date: day, StartTime: start.Add(15 * time.Minute), EndTime: end.Add(15 * time.Minute),
	})
	assert.True(t, errors.Is(err, errors.ErrConflict))

	// back to back is fine
	_, err = svc.Publish(ctx, doctor.ID, &model.CreateSlotRequest{
		Date: day, StartTime: end, EndTime: end.Add(30 * time.Minute),
	})
	assert.NoError(t, err)
}

func TestPublishOverWithdrawnSlot(t *testing.T) {
	svc, _, doctor := newService(t)
	ctx := context.Background()
	day, start, end := window(9)

	first, err := svc.Publish(ctx, doctor.ID, &model.CreateSlotRequest{Date: day, StartTime: start, EndTime: end})
	require.NoError(t, err)
	_, err = svc.Withdraw(ctx, doctor.ID, first.ID)
	require.NoError(t, err)

	// a withdrawn slot does not block its window
	_, err = svc.Publish(ctx, doctor.ID, &model.CreateSlotRequest{Date: day, StartTime: start, EndTime: end})
	assert.NoError(t, err)
}

func TestWithdraw(t *testing.T) {
	svc, _, doctor := newService(t)
	ctx := context.Background()
	day, start, end := window(10)

	published, err := svc.Publish(ctx, doctor.ID, &model.CreateSlotRequest{Date: day, StartTime: start, EndTime: end})
	require.NoError(t, err)

	withdrawn, err := svc.Withdraw(ctx, doctor.ID, published.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusCancelled, withdrawn.Status)

	// withdrawing again is a no-op
	again, err := svc.Withdraw(ctx, doctor.ID, published.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusCancelled, again.Status)
}

func TestWithdrawWrongDoctor(t *testing.T) {
	svc, _, doctor := newService(t)
	ctx := context.Background()
	day, start, end := window(10)

	published, err := svc.Publish(ctx, doctor.ID, &model.CreateSlotRequest{Date: day, StartTime: start, EndTime: end})
	require.NoError(t, err)

	_, err = svc.Withdraw(ctx, uuid.New(), published.ID)
	assert.True(t, errors.Is(err, errors.ErrDoctorSlotMismatch))
}

func TestWithdrawBookedSlot(t *testing.T) {
	svc, store, doctor := newService(t)
	ctx := context.Background()
	day, start, end := window(11)

	published, err := svc.Publish(ctx, doctor.ID, &model.CreateSlotRequest{Date: day, StartTime: start, EndTime: end})
	require.NoError(t, err)

	_, err = store.Slots().Reserve(ctx, published.ID, uuid.New())
	require.NoError(t, err)

	_, err = svc.Withdraw(ctx, doctor.ID, published.ID)
	assert.True(t, errors.Is(err, errors.ErrInvalidTransition))
}

func TestAvailable(t *testing.T) {
	svc, store, doctor := newService(t)
	ctx := context.Background()
	day, start, end := window(9)

	published, err := svc.Publish(ctx, doctor.ID, &model.CreateSlotRequest{Date: day, StartTime: start, EndTime: end})
	require.NoError(t, err)
	_, err = svc.Publish(ctx, doctor.ID, &model.CreateSlotRequest{
		Date: day, StartTime: end, EndTime: end.Add(30 * time.Minute),
	})
	require.NoError(t, err)

	available, err := svc.Available(ctx, doctor.ID, day)
	require.NoError(t, err)
	assert.Len(t, available, 2)

	// a booked slot drops out once the cache expires or is invalidated
	_, err = store.Slots().Reserve(ctx, published.ID, uuid.New())
	require.NoError(t, err)

	// publishing flushes the availability cache, so the next read is fresh
	day2 := day.AddDate(0, 0, 1)
	_, err = svc.Publish(ctx, doctor.ID, &model.CreateSlotRequest{
		Date: day2, StartTime: start.AddDate(0, 0, 1), EndTime: end.AddDate(0, 0, 1),
	})
	require.NoError(t, err)

	available, err = svc.Available(ctx, doctor.ID, day)
	require.NoError(t, err)
	assert.Len(t, available, 1)
}

func TestAvailableCaches(t *testing.T) {
	svc, store, doctor := newService(t)
	ctx := context.Background()
	day, start, end := window(9)

	published, err := svc.Publish(ctx, doctor.ID, &model.CreateSlotRequest{Date: day, StartTime: start, EndTime: end})
	require.NoError(t, err)

	first, err := svc.Available(ctx, doctor.ID, day)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// a reservation made behind the cache's back is not visible yet
	_, err = store.Slots().Reserve(ctx, published.ID, uuid.New())
	require.NoError(t, err)

	cached, err := svc.Available(ctx, doctor.ID, day)
	require.NoError(t, err)
	assert.Len(t, cached, 1)
}
