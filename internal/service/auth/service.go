package auth

import (
	"context"
	"fmt"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository"
	"github.com/medisched/scheduler-api/pkg/auth"
	"github.com/medisched/scheduler-api/pkg/errors"
	"github.com/medisched/scheduler-api/pkg/security"
)

const bcryptCost = 12

type Service struct {
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	staff    repository.StaffRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
}

func NewService(
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	staff repository.StaffRepository,
	jwtSvc auth.JWTService,
) *Service {
	return &Service{
		patients: patients,
		doctors:  doctors,
		staff:    staff,
		jwtSvc:   jwtSvc,
		hasher:   security.NewBcryptHasher(bcryptCost),
	}
}

func (s *Service) RegisterPatient(ctx context.Context, req *model.RegisterPatientRequest) (*model.Patient, error) {
	if _, err := s.patients.GetByEmail(ctx, req.Email); err == nil {
		return nil, errors.Conflict("patient email", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, errors.BadRequest("invalid password", err)
	}

	patient := &model.Patient{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
	}
	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

// Login verifies credentials for the given role and issues an access
// token carrying the caller identity handlers pass into the engine.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	actor, hash, err := s.lookup(ctx, req.Role, req.Email)
	if err != nil {
		// do not leak whether the account exists
		return nil, errors.Unauthorized(nil)
	}

	if err := s.hasher.Compare(hash, req.Password); err != nil {
		return nil, errors.Unauthorized(nil)
	}

	token, err := s.jwtSvc.GenerateToken(actor, req.Email)
	if err != nil {
		return nil, errors.Internal(err)
	}

	return &model.LoginResponse{Token: token, Actor: actor}, nil
}

func (s *Service) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, errors.Unauthorized(err)
	}
	return claims, nil
}

func (s *Service) lookup(ctx context.Context, role model.Role, email string) (model.Actor, string, error) {
	switch role {
	case model.RolePatient:
		p, err := s.patients.GetByEmail(ctx, email)
		if err != nil {
			return model.Actor{}, "", err
		}
		return model.Actor{ID: p.ID, Role: role}, p.PasswordHash, nil
	case model.RoleDoctor:
		d, err := s.doctors.GetByEmail(ctx, email)
		if err != nil {
			return model.Actor{}, "", err
		}
		return model.Actor{ID: d.ID, Role: role}, d.PasswordHash, nil
	case model.RoleStaff:
		st, err := s.staff.GetByEmail(ctx, email)
		if err != nil {
			return model.Actor{}, "", err
		}
		return model.Actor{ID: st.ID, Role: role}, st.PasswordHash, nil
	}
	return model.Actor{}, "", fmt.Errorf("unknown role %q", role)
}
