package appointment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appointmentHandler "github.com/medisched/scheduler-api/internal/handler/appointment"
	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/repository/memory"
	notificationService "github.com/medisched/scheduler-api/internal/service/notification"
	"github.com/medisched/scheduler-api/internal/service/scheduling"
	"github.com/medisched/scheduler-api/pkg/logger"
)

type noopBroker struct{}

func (noopBroker) Publish(context.Context, string, interface{}) error { return nil }
func (noopBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, nil
}
func (noopBroker) Close() error { return nil }

type apiFixture struct {
	engine  *gin.Engine
	store   *memory.Store
	doctor  *model.Doctor
	patient *model.Patient
	slot    *model.Slot
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store := memory.NewStore()
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})

	doctor := &model.Doctor{Name: "Grace Hall", Specialization: "Cardiology", Email: "grace@clinic.test"}
	require.NoError(t, store.Doctors().Create(ctx, doctor))
	patient := &model.Patient{Name: "Ivan Petrov", Email: "ivan@example.test"}
	require.NoError(t, store.Patients().Create(ctx, patient))

	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	slot := &model.Slot{
		DoctorID:  doctor.ID,
		Date:      start.Truncate(24 * time.Hour),
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    model.SlotStatusAvailable,
	}
	require.NoError(t, store.Slots().Create(ctx, slot))

	notifier := notificationService.NewService(store.Notifications(), noopBroker{}, log)
	svc := scheduling.NewService(
		store.Slots(), store.Appointments(), store.Doctors(), store.Patients(),
		notifier, nil, log, scheduling.Config{},
	)

	engine := gin.New()
	// stand-in for the auth middleware
	engine.Use(func(c *gin.Context) {
		c.Set("actor", model.Actor{ID: patient.ID, Role: model.RolePatient})
		c.Next()
	})
	appointmentHandler.NewHandler(svc).RegisterRoutes(engine.Group("/api/v1"))

	return &apiFixture{engine: engine, store: store, doctor: doctor, patient: patient, slot: slot}
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, envelope
}

func (f *apiFixture) bookPayload() map[string]interface{} {
	return map[string]interface{}{
		"patient_id": f.patient.ID.String(),
		"doctor_id":  f.doctor.ID.String(),
		"slot_id":    f.slot.ID.String(),
	}
}

func TestBookEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	w, envelope := f.do(t, http.MethodPost, "/api/v1/appointments/book", f.bookPayload())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "success", envelope["status"])

	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, string(model.AppointmentStatusScheduled), data["status"])
	assert.Equal(t, f.slot.ID.String(), data["slot_id"])
}

func TestBookEndpointValidation(t *testing.T) {
	f := newAPIFixture(t)

	w, envelope := f.do(t, http.MethodPost, "/api/v1/appointments/book", map[string]interface{}{
		"patient_id": f.patient.ID.String(),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", envelope["status"])
}

func TestBookEndpointSlotTaken(t *testing.T) {
	f := newAPIFixture(t)

	w, _ := f.do(t, http.MethodPost, "/api/v1/appointments/book", f.bookPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	w, envelope := f.do(t, http.MethodPost, "/api/v1/appointments/book", f.bookPayload())
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "error", envelope["status"])
}

func TestCancelEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	w, envelope := f.do(t, http.MethodPost, "/api/v1/appointments/book", f.bookPayload())
	require.Equal(t, http.StatusCreated, w.Code)
	id := envelope["data"].(map[string]interface{})["id"].(string)

	w, envelope = f.do(t, http.MethodPost,
		fmt.Sprintf("/api/v1/appointments/%s/cancel", id),
		map[string]interface{}{"cancelled_by": "PATIENT", "reason": "conflict"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, string(model.AppointmentStatusCancelled), data["status"])

	// cancelling again hits the state machine
	w, _ = f.do(t, http.MethodPost,
		fmt.Sprintf("/api/v1/appointments/%s/cancel", id),
		map[string]interface{}{"cancelled_by": "PATIENT"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestStatusEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	w, envelope := f.do(t, http.MethodPost, "/api/v1/appointments/book", f.bookPayload())
	require.Equal(t, http.StatusCreated, w.Code)
	id := envelope["data"].(map[string]interface{})["id"].(string)

	w, envelope = f.do(t, http.MethodPatch,
		fmt.Sprintf("/api/v1/appointments/%s/status", id),
		map[string]interface{}{"status": "COMPLETED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, string(model.AppointmentStatusCompleted), data["status"])
}

func TestGetEndpointNotFound(t *testing.T) {
	f := newAPIFixture(t)

	w, envelope := f.do(t, http.MethodGet, "/api/v1/appointments/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error", envelope["status"])

	w, _ = f.do(t, http.MethodGet, "/api/v1/appointments/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReassignEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	w, envelope := f.do(t, http.MethodPost, "/api/v1/appointments/book", f.bookPayload())
	require.Equal(t, http.StatusCreated, w.Code)
	id := envelope["data"].(map[string]interface{})["id"].(string)

	start := f.slot.StartTime.Add(2 * time.Hour)
	newSlot := &model.Slot{
		DoctorID:  f.doctor.ID,
		Date:      f.slot.Date,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    model.SlotStatusAvailable,
	}
	require.NoError(t, f.store.Slots().Create(ctx, newSlot))

	w, envelope = f.do(t, http.MethodPatch,
		fmt.Sprintf("/api/v1/appointments/%s/reassign", id),
		map[string]interface{}{"slot_id": newSlot.ID.String()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, newSlot.ID.String(), data["slot_id"])

	released, err := f.store.Slots().Get(ctx, f.slot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusAvailable, released.Status)
}
