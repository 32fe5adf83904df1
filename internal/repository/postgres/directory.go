package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	"github.com/medisched/scheduler-api/pkg/errors"
)

type doctorRepository struct {
	*BaseRepository
}

func NewDoctorRepository(base *BaseRepository) repository.DoctorRepository {
	return &doctorRepository{BaseRepository: base}
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (id, name, specialization, email, password_hash, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	doctor.Version = 1
	doctor.CreatedAt = time.Now()
	doctor.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		doctor.ID, doctor.Name, doctor.Specialization, doctor.Email,
		doctor.PasswordHash, doctor.Version, doctor.CreatedAt, doctor.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr(err, "doctor")
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	var doctor model.Doctor
	query := `SELECT id, name, specialization, email, password_hash, version, created_at, updated_at FROM doctors WHERE id = $1`
	if err := r.db.GetContext(ctx, &doctor, query, id); err != nil {
		return nil, mapLookupErr(err, "doctor")
	}
	return &doctor, nil
}

func (r *doctorRepository) GetByEmail(ctx context.Context, email string) (*model.Doctor, error) {
	var doctor model.Doctor
	query := `SELECT id, name, specialization, email, password_hash, version, created_at, updated_at FROM doctors WHERE email = $1`
	if err := r.db.GetContext(ctx, &doctor, query, email); err != nil {
		return nil, mapLookupErr(err, "doctor")
	}
	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	var doctors []*model.Doctor
	query := `SELECT id, name, specialization, email, password_hash, version, created_at, updated_at FROM doctors ORDER BY name`
	if err := r.db.SelectContext(ctx, &doctors, query); err != nil {
		return nil, errors.Internal(err)
	}
	return doctors, nil
}

type patientRepository struct {
	*BaseRepository
}

func NewPatientRepository(base *BaseRepository) repository.PatientRepository {
	return &patientRepository{BaseRepository: base}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (id, name, email, phone, password_hash, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	patient.Version = 1
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		patient.ID, patient.Name, patient.Email, patient.Phone,
		patient.PasswordHash, patient.Version, patient.CreatedAt, patient.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr(err, "patient")
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	var patient model.Patient
	query := `SELECT id, name, email, phone, password_hash, version, created_at, updated_at FROM patients WHERE id = $1`
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, mapLookupErr(err, "patient")
	}
	return &patient, nil
}

func (r *patientRepository) GetByEmail(ctx context.Context, email string) (*model.Patient, error) {
	var patient model.Patient
	query := `SELECT id, name, email, phone, password_hash, version, created_at, updated_at FROM patients WHERE email = $1`
	if err := r.db.GetContext(ctx, &patient, query, email); err != nil {
		return nil, mapLookupErr(err, "patient")
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	var patients []*model.Patient
	query := `SELECT id, name, email, phone, password_hash, version, created_at, updated_at FROM patients ORDER BY name`
	if err := r.db.SelectContext(ctx, &patients, query); err != nil {
		return nil, errors.Internal(err)
	}
	return patients, nil
}

type staffRepository struct {
	*BaseRepository
}

func NewStaffRepository(base *BaseRepository) repository.StaffRepository {
	return &staffRepository{BaseRepository: base}
}

func (r *staffRepository) Create(ctx context.Context, staff *model.Staff) error {
	query := `
		INSERT INTO staff (id, name, email, password_hash, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if staff.ID == uuid.Nil {
		staff.ID = uuid.New()
	}
	staff.Version = 1
	staff.CreatedAt = time.Now()
	staff.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		staff.ID, staff.Name, staff.Email, staff.PasswordHash,
		staff.Version, staff.CreatedAt, staff.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr(err, "staff")
	}
	return nil
}

func (r *staffRepository) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	var staff model.Staff
	query := `SELECT id, name, email, password_hash, version, created_at, updated_at FROM staff WHERE id = $1`
	if err := r.db.GetContext(ctx, &staff, query, id); err != nil {
		return nil, mapLookupErr(err, "staff")
	}
	return &staff, nil
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	var staff model.Staff
	query := `SELECT id, name, email, password_hash, version, created_at, updated_at FROM staff WHERE email = $1`
	if err := r.db.GetContext(ctx, &staff, query, email); err != nil {
		return nil, mapLookupErr(err, "staff")
	}
	return &staff, nil
}
