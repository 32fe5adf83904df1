package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	"github.com/medisched/scheduler-api/pkg/errors"
)

type slotRepository struct {
	*BaseRepository
}

func NewSlotRepository(base *BaseRepository) repository.SlotRepository {
	return &slotRepository{BaseRepository: base}
}

func (r *slotRepository) Create(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO slots (
			id, doctor_id, date, start_time, end_time,
			status, appointment_id, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	if slot.Status == "" {
		slot.Status = model.SlotStatusAvailable
	}
	slot.Version = 1
	slot.CreatedAt = time.Now()
	slot.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		slot.ID,
		slot.DoctorID,
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		slot.Status,
		slot.AppointmentID,
		slot.Version,
		slot.CreatedAt,
		slot.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr(err, "slot")
	}
	return nil
}

func (r *slotRepository) Get(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	query := `
		SELECT id, doctor_id, date, start_time, end_time,
			   status, appointment_id, version, created_at, updated_at
		FROM slots
		WHERE id = $1
	`
	var slot model.Slot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, mapLookupErr(err, "slot")
	}
	return &slot, nil
}

func (r *slotRepository) Update(ctx context.Context, slot *model.Slot) error {
	query := `
		UPDATE slots
		SET date = $1, start_time = $2, end_time = $3, status = $4,
			appointment_id = $5, version = version + 1, updated_at = $6
		WHERE id = $7 AND version = $8
	`
	slot.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		slot.Status,
		slot.AppointmentID,
		slot.UpdatedAt,
		slot.ID,
		slot.Version,
	)
	if err != nil {
		return mapWriteErr(err, "slot")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Internal(err)
	}
	if rows == 0 {
		// row absent or version moved on; disambiguate for the caller
		if _, getErr := r.Get(ctx, slot.ID); getErr != nil {
			return getErr
		}
		return errors.Conflict("slot", nil)
	}
	slot.Version++
	return nil
}

// Reserve lets the database arbitrate the booking race: the conditional
// UPDATE flips exactly one concurrent caller's row from AVAILABLE to
// BOOKED, everyone else matches zero rows.
func (r *slotRepository) Reserve(ctx context.Context, slotID, appointmentID uuid.UUID) (*model.Slot, error) {
	query := `
		UPDATE slots
		SET status = $1, appointment_id = $2, version = version + 1, updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING id, doctor_id, date, start_time, end_time,
				  status, appointment_id, version, created_at, updated_at
	`
	var slot model.Slot
	err := r.db.GetContext(ctx, &slot, query,
		model.SlotStatusBooked,
		appointmentID,
		time.Now(),
		slotID,
		model.SlotStatusAvailable,
	)
	if err == sql.ErrNoRows {
		if _, getErr := r.Get(ctx, slotID); getErr != nil {
			return nil, getErr
		}
		return nil, errors.SlotUnavailable(slotID.String())
	}
	if err != nil {
		return nil, errors.Internal(err)
	}
	return &slot, nil
}

func (r *slotRepository) Release(ctx context.Context, slotID uuid.UUID) (*model.Slot, error) {
	// Withdrawn slots keep their CANCELLED status, only the binding is
	// cleared. A slot already AVAILABLE passes through unchanged.
	query := `
		UPDATE slots
		SET status = CASE WHEN status = $1 THEN status ELSE $2 END,
			appointment_id = NULL,
			version = version + 1,
			updated_at = $3
		WHERE id = $4
		RETURNING id, doctor_id, date, start_time, end_time,
				  status, appointment_id, version, created_at, updated_at
	`
	var slot model.Slot
	err := r.db.GetContext(ctx, &slot, query,
		model.SlotStatusCancelled,
		model.SlotStatusAvailable,
		time.Now(),
		slotID,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("slot", nil)
	}
	if err != nil {
		return nil, errors.Internal(err)
	}
	return &slot, nil
}

func (r *slotRepository) List(ctx context.Context, filters *model.SlotFilters) ([]*model.Slot, error) {
	query := `
		SELECT id, doctor_id, date, start_time, end_time,
			   status, appointment_id, version, created_at, updated_at
		FROM slots
		WHERE 1=1
	`
	args := []interface{}{}
	argPos := 1

	if filters != nil {
		if filters.DoctorID != uuid.Nil {
			query += sqlAnd("doctor_id", argPos)
			args = append(args, filters.DoctorID)
			argPos++
		}
		if !filters.Date.IsZero() {
			query += sqlAnd("date", argPos)
			args = append(args, filters.Date)
			argPos++
		}
		if filters.Status != "" {
			query += sqlAnd("status", argPos)
			args = append(args, filters.Status)
			argPos++
		}
	}
	query += " ORDER BY date, start_time"

	var slots []*model.Slot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, errors.Internal(err)
	}
	return slots, nil
}
