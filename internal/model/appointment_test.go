package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medisched/scheduler-api/internal/model"
)

func TestAppointmentTransitions(t *testing.T) {
	cases := []struct {
		from    model.AppointmentStatus
		to      model.AppointmentStatus
		allowed bool
	}{
		{model.AppointmentStatusScheduled, model.AppointmentStatusCompleted, true},
		{model.AppointmentStatusScheduled, model.AppointmentStatusCancelled, true},
		{model.AppointmentStatusScheduled, model.AppointmentStatusNoShow, true},
		{model.AppointmentStatusScheduled, model.AppointmentStatusScheduled, false},
		{model.AppointmentStatusCompleted, model.AppointmentStatusScheduled, false},
		{model.AppointmentStatusCompleted, model.AppointmentStatusCancelled, false},
		{model.AppointmentStatusCancelled, model.AppointmentStatusScheduled, false},
		{model.AppointmentStatusCancelled, model.AppointmentStatusCompleted, false},
		{model.AppointmentStatusNoShow, model.AppointmentStatusScheduled, false},
		{model.AppointmentStatusNoShow, model.AppointmentStatusCancelled, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestAppointmentStatusTerminal(t *testing.T) {
	assert.False(t, model.AppointmentStatusScheduled.Terminal())
	assert.True(t, model.AppointmentStatusCompleted.Terminal())
	assert.True(t, model.AppointmentStatusCancelled.Terminal())
	assert.True(t, model.AppointmentStatusNoShow.Terminal())
}

func TestAppointmentStatusValid(t *testing.T) {
	assert.True(t, model.AppointmentStatusScheduled.Valid())
	assert.True(t, model.AppointmentStatusNoShow.Valid())
	assert.False(t, model.AppointmentStatus("POSTPONED").Valid())
	assert.False(t, model.AppointmentStatus("").Valid())
}
