package notification_test

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository/memory"
	"github.com/medisched/scheduler-api/internal/service/notification"
	"github.com/medisched/scheduler-api/pkg/logger"
)

type recordingBroker struct {
	published int
	fail      bool
}

func (b *recordingBroker) Publish(context.Context, string, interface{}) error {
	if b.fail {
		return io.ErrClosedPipe
	}
	b.published++
	return nil
}

func (b *recordingBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, nil
}

func (b *recordingBroker) Close() error { return nil }

func newService(t *testing.T, broker *recordingBroker) (notification.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	return notification.NewService(store.Notifications(), broker, log), store
}

func valid() *model.Notification {
	return &model.Notification{
		AppointmentID: uuid.New(),
		RecipientType: model.RolePatient,
		RecipientID:   uuid.New(),
		Message:       "Your appointment has been booked",
		Category:      model.NotificationBookingConfirmation,
		Channel:       model.ChannelEmail,
	}
}

func TestEmit(t *testing.T) {
	broker := &recordingBroker{}
	svc, store := newService(t, broker)

	n := valid()
	require.NoError(t, svc.Emit(context.Background(), n))

	assert.NotEqual(t, uuid.Nil, n.ID)
	assert.Equal(t, model.NotificationStatusPending, n.Status)
	assert.Equal(t, 1, broker.published)

	stored, err := store.Notifications().Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationStatusPending, stored.Status)
}

func TestEmitSurvivesBrokerFailure(t *testing.T) {
	broker := &recordingBroker{fail: true}
	svc, store := newService(t, broker)

	n := valid()
	require.NoError(t, svc.Emit(context.Background(), n))

	// the persisted row is the source of truth; the announcement is best effort
	stored, err := store.Notifications().Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationStatusPending, stored.Status)
}

func TestEmitValidation(t *testing.T) {
	svc, _ := newService(t, &recordingBroker{})
	ctx := context.Background()

	missingAppt := valid()
	missingAppt.AppointmentID = uuid.Nil
	assert.Error(t, svc.Emit(ctx, missingAppt))

	missingRecipient := valid()
	missingRecipient.RecipientID = uuid.Nil
	assert.Error(t, svc.Emit(ctx, missingRecipient))

	badRole := valid()
	badRole.RecipientType = "ROBOT"
	assert.Error(t, svc.Emit(ctx, badRole))

	emptyMessage := valid()
	emptyMessage.Message = ""
	assert.Error(t, svc.Emit(ctx, emptyMessage))

	noChannel := valid()
	noChannel.Channel = ""
	assert.Error(t, svc.Emit(ctx, noChannel))
}

func TestList(t *testing.T) {
	svc, _ := newService(t, &recordingBroker{})
	ctx := context.Background()

	recipient := uuid.New()
	mine := valid()
	mine.RecipientID = recipient
	require.NoError(t, svc.Emit(ctx, mine))
	require.NoError(t, svc.Emit(ctx, valid()))

	out, err := svc.List(ctx, &model.NotificationFilters{
		RecipientType: model.RolePatient,
		RecipientID:   recipient,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, mine.ID, out[0].ID)
}
