package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository/memory"
	authService "github.com/medisched/scheduler-api/internal/service/auth"
	jwtauth "github.com/medisched/scheduler-api/pkg/auth"
	"github.com/medisched/scheduler-api/pkg/errors"
)

func newService(t *testing.T) (*authService.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	jwtSvc := jwtauth.NewJWTService("test-secret", time.Hour)
	return authService.NewService(store.Patients(), store.Doctors(), store.Staff(), jwtSvc), store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	patient, err := svc.RegisterPatient(ctx, &model.RegisterPatientRequest{
		Name:     "Ada Lovelace",
		Email:    "ada@example.test",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, patient.PasswordHash)
	assert.NotEqual(t, "correct-horse", patient.PasswordHash)

	resp, err := svc.Login(ctx, &model.LoginRequest{
		Email:    "ada@example.test",
		Password: "correct-horse",
		Role:     model.RolePatient,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, patient.ID, resp.Actor.ID)
	assert.Equal(t, model.RolePatient, resp.Actor.Role)

	claims, err := svc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, patient.ID, claims.Actor.ID)
	assert.Equal(t, model.RolePatient, claims.Actor.Role)
	assert.Equal(t, "ada@example.test", claims.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	req := &model.RegisterPatientRequest{
		Name:     "Ada",
		Email:    "ada@example.test",
		Password: "correct-horse",
	}
	_, err := svc.RegisterPatient(ctx, req)
	require.NoError(t, err)

	_, err = svc.RegisterPatient(ctx, req)
	assert.True(t, errors.Is(err, errors.ErrConflict))
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.RegisterPatient(ctx, &model.RegisterPatientRequest{
		Name:     "Ada",
		Email:    "ada@example.test",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	// wrong password
	_, err = svc.Login(ctx, &model.LoginRequest{
		Email: "ada@example.test", Password: "wrong", Role: model.RolePatient,
	})
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	// unknown account looks identical to a bad password
	_, err = svc.Login(ctx, &model.LoginRequest{
		Email: "nobody@example.test", Password: "correct-horse", Role: model.RolePatient,
	})
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	// the account exists as a patient, not a doctor
	_, err = svc.Login(ctx, &model.LoginRequest{
		Email: "ada@example.test", Password: "correct-horse", Role: model.RoleDoctor,
	})
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.ValidateToken(context.Background(), "not-a-token")
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	// token minted with another secret
	otherSvc := jwtauth.NewJWTService("other-secret", time.Hour)
	token, err := otherSvc.GenerateToken(model.Actor{Role: model.RolePatient}, "x@example.test")
	require.NoError(t, err)
	_, err = svc.ValidateToken(context.Background(), token)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}
