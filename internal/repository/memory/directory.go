package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/pkg/errors"
)

type doctorRepository struct {
	store *Store
}

func (r *doctorRepository) Create(_ context.Context, doctor *model.Doctor) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	touch(&doctor.Base)
	cp := *doctor
	r.store.doctors[doctor.ID] = &cp
	return nil
}

func (r *doctorRepository) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	d, ok := r.store.doctors[id]
	if !ok {
		return nil, errors.NotFound("doctor", nil)
	}
	cp := *d
	return &cp, nil
}

func (r *doctorRepository) GetByEmail(_ context.Context, email string) (*model.Doctor, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, d := range r.store.doctors {
		if d.Email == email {
			cp := *d
			return &cp, nil
		}
	}
	return nil, errors.NotFound("doctor", nil)
}

func (r *doctorRepository) List(_ context.Context) ([]*model.Doctor, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*model.Doctor, 0, len(r.store.doctors))
	for _, d := range r.store.doctors {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

type patientRepository struct {
	store *Store
}

func (r *patientRepository) Create(_ context.Context, patient *model.Patient) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	touch(&patient.Base)
	cp := *patient
	r.store.patients[patient.ID] = &cp
	return nil
}

func (r *patientRepository) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.patients[id]
	if !ok {
		return nil, errors.NotFound("patient", nil)
	}
	cp := *p
	return &cp, nil
}

func (r *patientRepository) GetByEmail(_ context.Context, email string) (*model.Patient, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, p := range r.store.patients {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errors.NotFound("patient", nil)
}

func (r *patientRepository) List(_ context.Context) ([]*model.Patient, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*model.Patient, 0, len(r.store.patients))
	for _, p := range r.store.patients {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

type staffRepository struct {
	store *Store
}

func (r *staffRepository) Create(_ context.Context, staff *model.Staff) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	touch(&staff.Base)
	cp := *staff
	r.store.staff[staff.ID] = &cp
	return nil
}

func (r *staffRepository) Get(_ context.Context, id uuid.UUID) (*model.Staff, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	s, ok := r.store.staff[id]
	if !ok {
		return nil, errors.NotFound("staff", nil)
	}
	cp := *s
	return &cp, nil
}

func (r *staffRepository) GetByEmail(_ context.Context, email string) (*model.Staff, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, s := range r.store.staff {
		if s.Email == email {
			cp := *s
			return &cp, nil
		}
	}
	return nil, errors.NotFound("staff", nil)
}
