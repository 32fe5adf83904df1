package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	"github.com/medisched/scheduler-api/pkg/errors"
)

type appointmentRepository struct {
	*BaseRepository
}

func NewAppointmentRepository(base *BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{BaseRepository: base}
}

const appointmentColumns = `
	id, patient_id, doctor_id, slot_id, date, start_time, end_time,
	status, type, staff_id, cancelled_by, cancel_reason,
	version, created_at, updated_at
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	if appointment.Status == "" {
		appointment.Status = model.AppointmentStatusScheduled
	}
	appointment.Version = 1
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.SlotID,
		appointment.Date,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.Type,
		appointment.StaffID,
		appointment.CancelledBy,
		appointment.CancelReason,
		appointment.Version,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr(err, "appointment")
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, mapLookupErr(err, "appointment")
	}
	return &appointment, nil
}

func (r *appointmentRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, staffID *uuid.UUID) (*model.Appointment, error) {
	return r.transition(ctx, id, status, staffID, nil, nil)
}

func (r *appointmentRepository) SetCancellation(ctx context.Context, id uuid.UUID, cancelledBy, reason string) (*model.Appointment, error) {
	return r.transition(ctx, id, model.AppointmentStatusCancelled, nil, &cancelledBy, &reason)
}

// transition validates the state machine against the row as it exists
// inside a transaction with a row lock, so two racing transitions cannot
// both pass the check.
func (r *appointmentRepository) transition(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, staffID *uuid.UUID, cancelledBy, reason *string) (*model.Appointment, error) {
	var updated model.Appointment

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var current model.Appointment
		query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &current, query, id); err != nil {
			return mapLookupErr(err, "appointment")
		}

		if !current.Status.CanTransitionTo(status) {
			return errors.InvalidTransition(string(current.Status), string(status))
		}

		update := `
			UPDATE appointments
			SET status = $1,
				staff_id = COALESCE($2, staff_id),
				cancelled_by = COALESCE($3, cancelled_by),
				cancel_reason = COALESCE($4, cancel_reason),
				version = version + 1,
				updated_at = $5
			WHERE id = $6
			RETURNING ` + appointmentColumns
		return tx.GetContext(ctx, &updated, update,
			status, staffID, cancelledBy, reason, time.Now(), id)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET doctor_id = $1, slot_id = $2, date = $3, start_time = $4,
			end_time = $5, type = $6, staff_id = $7,
			version = version + 1, updated_at = $8
		WHERE id = $9 AND version = $10
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.DoctorID,
		appointment.SlotID,
		appointment.Date,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Type,
		appointment.StaffID,
		appointment.UpdatedAt,
		appointment.ID,
		appointment.Version,
	)
	if err != nil {
		return mapWriteErr(err, "appointment")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Internal(err)
	}
	if rows == 0 {
		if _, getErr := r.Get(ctx, appointment.ID); getErr != nil {
			return getErr
		}
		return errors.Conflict("appointment", nil)
	}
	appointment.Version++
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filters != nil {
		if filters.PatientID != uuid.Nil {
			query += sqlAnd("patient_id", argPos)
			args = append(args, filters.PatientID)
			argPos++
		}
		if filters.DoctorID != uuid.Nil {
			query += sqlAnd("doctor_id", argPos)
			args = append(args, filters.DoctorID)
			argPos++
		}
		if filters.Status != "" {
			query += sqlAnd("status", argPos)
			args = append(args, filters.Status)
			argPos++
		}
		if !filters.Date.IsZero() {
			query += sqlAnd("date", argPos)
			args = append(args, filters.Date)
			argPos++
		}
	}
	query += " ORDER BY date, start_time"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil && err != sql.ErrNoRows {
		return nil, errors.Internal(err)
	}
	return appointments, nil
}
