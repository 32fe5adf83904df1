package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrSlotUnavailable
	ErrDoctorSlotMismatch
	ErrInvalidTransition
	ErrConflict
	ErrBadRequest
	ErrUnauthorized
	ErrInternal
)

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func SlotUnavailable(slotID string) *AppError {
	return &AppError{
		Code:    ErrSlotUnavailable,
		Message: fmt.Sprintf("slot %s is not available", slotID),
	}
}

func DoctorSlotMismatch(doctorID, slotID string) *AppError {
	return &AppError{
		Code:    ErrDoctorSlotMismatch,
		Message: fmt.Sprintf("slot %s does not belong to doctor %s", slotID, doctorID),
	}
}

func InvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: fmt.Sprintf("invalid status transition from %s to %s", from, to),
	}
}

// InvalidState is an InvalidTransition whose message does not fit the
// from/to shape, e.g. reassigning a terminal appointment.
func InvalidState(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: message,
	}
}

func Conflict(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: fmt.Sprintf("%s was modified concurrently", resource),
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// Code extracts the ErrorCode from err, walking the wrap chain.
// Errors that are not AppErrors map to ErrInternal.
func Code(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code ErrorCode) bool {
	return Code(err) == code
}
