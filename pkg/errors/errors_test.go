package errors_test

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medisched/scheduler-api/pkg/errors"
)

func TestCode(t *testing.T) {
	assert.Equal(t, errors.ErrNotFound, errors.Code(errors.NotFound("slot", nil)))
	assert.Equal(t, errors.ErrSlotUnavailable, errors.Code(errors.SlotUnavailable("abc")))
	assert.Equal(t, errors.ErrDoctorSlotMismatch, errors.Code(errors.DoctorSlotMismatch("d", "s")))
	assert.Equal(t, errors.ErrInvalidTransition, errors.Code(errors.InvalidTransition("SCHEDULED", "SCHEDULED")))
	assert.Equal(t, errors.ErrInvalidTransition, errors.Code(errors.InvalidState("appointment is terminal")))
	assert.Equal(t, errors.ErrConflict, errors.Code(errors.Conflict("appointment", nil)))
	assert.Equal(t, errors.ErrInternal, errors.Code(io.EOF))
	assert.Equal(t, errors.ErrInternal, errors.Code(nil))
}

func TestCodeWalksWrapChain(t *testing.T) {
	wrapped := fmt.Errorf("booking failed: %w", errors.SlotUnavailable("abc"))
	assert.Equal(t, errors.ErrSlotUnavailable, errors.Code(wrapped))
	assert.True(t, errors.Is(wrapped, errors.ErrSlotUnavailable))
	assert.False(t, errors.Is(wrapped, errors.ErrNotFound))
}

func TestErrorMessage(t *testing.T) {
	err := errors.NotFound("appointment", io.EOF)
	assert.Contains(t, err.Error(), "appointment not found")
	assert.Contains(t, err.Error(), io.EOF.Error())
	assert.Equal(t, io.EOF, err.Unwrap())

	bare := errors.SlotUnavailable("abc")
	assert.Equal(t, "slot abc is not available", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
