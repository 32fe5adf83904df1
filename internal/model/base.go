package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Role identifies the kind of caller performing an operation.
type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleStaff   Role = "STAFF"
)

// Actor is the caller identity passed explicitly into every scheduling
// operation. There is no ambient session state below the transport layer.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
}

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleStaff:
		return true
	}
	return false
}
