package appointment

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medisched/scheduler-api/internal/handler"
	"github.com/medisched/scheduler-api/internal/middleware"
	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/service/scheduling"
)

type Handler struct {
	engine *scheduling.Service
}

func NewHandler(engine *scheduling.Service) *Handler {
	return &Handler{engine: engine}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("/book", h.BookAppointment)
		appointments.GET("/:id", h.GetAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.POST("/:id/cancel", h.CancelAppointment)
		appointments.PATCH("/:id/status", h.UpdateAppointmentStatus)
		appointments.PATCH("/:id/reassign", h.ReassignAppointment)
	}
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondBindError(c, err)
		return
	}

	actor := middleware.ActorFromContext(c)
	appointment, err := h.engine.BookAppointment(c.Request.Context(), actor, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(appointment))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	appointment, err := h.engine.GetAppointment(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointment))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filters := &model.AppointmentFilters{}

	if id := c.Query("patient_id"); id != "" {
		patientID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
			return
		}
		filters.PatientID = patientID
	}

	if id := c.Query("doctor_id"); id != "" {
		doctorID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
			return
		}
		filters.DoctorID = doctorID
	}

	if status := c.Query("status"); status != "" {
		filters.Status = model.AppointmentStatus(status)
	}

	if date := c.Query("date"); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date, expected YYYY-MM-DD"))
			return
		}
		filters.Date = parsed
	}

	appointments, err := h.engine.ListAppointments(c.Request.Context(), filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req model.CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondBindError(c, err)
		return
	}

	actor := middleware.ActorFromContext(c)
	appointment, err := h.engine.CancelAppointment(c.Request.Context(), actor, id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointment))
}

func (h *Handler) UpdateAppointmentStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req model.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondBindError(c, err)
		return
	}

	actor := middleware.ActorFromContext(c)
	appointment, err := h.engine.UpdateAppointmentStatus(c.Request.Context(), actor, id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointment))
}

func (h *Handler) ReassignAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req model.ReassignAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondBindError(c, err)
		return
	}

	actor := middleware.ActorFromContext(c)
	appointment, err := h.engine.ReassignAppointment(c.Request.Context(), actor, id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointment))
}
