package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medisched/scheduler-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError maps the scheduling error taxonomy onto HTTP statuses.
// Expected conditions (unavailable slot, invalid transition) are
// ordinary results, not 500s.
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.Code(err) {
	case errors.ErrNotFound:
		status = http.StatusNotFound
	case errors.ErrSlotUnavailable, errors.ErrConflict:
		status = http.StatusConflict
	case errors.ErrDoctorSlotMismatch, errors.ErrInvalidTransition:
		status = http.StatusUnprocessableEntity
	case errors.ErrBadRequest:
		status = http.StatusBadRequest
	case errors.ErrUnauthorized:
		status = http.StatusUnauthorized
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	c.JSON(status, NewErrorResponse(message))
}
