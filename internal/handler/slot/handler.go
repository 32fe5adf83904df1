package slot

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medisched/scheduler-api/internal/handler"
	"github.com/medisched/scheduler-api/internal/middleware"
	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/service/slot"
)

type Handler struct {
	service *slot.Service
}

func NewHandler(service *slot.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	slots := r.Group("/slots")
	{
		slots.POST("", h.PublishSlot)
		slots.GET("", h.ListSlots)
		slots.GET("/:id", h.GetSlot)
		slots.POST("/:id/withdraw", h.WithdrawSlot)
	}
}

// RegisterPublicRoutes mounts the unauthenticated availability query.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/slots/available", h.AvailableSlots)
}

// PublishSlot opens a new bookable slot for the authenticated doctor.
func (h *Handler) PublishSlot(c *gin.Context) {
	var req model.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondBindError(c, err)
		return
	}

	actor := middleware.ActorFromContext(c)
	created, err := h.service.Publish(c.Request.Context(), actor.ID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) GetSlot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid slot ID"))
		return
	}

	s, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(s))
}

func (h *Handler) ListSlots(c *gin.Context) {
	filters := &model.SlotFilters{}

	if id := c.Query("doctor_id"); id != "" {
		doctorID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
			return
		}
		filters.DoctorID = doctorID
	}

	if date := c.Query("date"); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date, expected YYYY-MM-DD"))
			return
		}
		filters.Date = parsed
	}

	if status := c.Query("status"); status != "" {
		filters.Status = model.SlotStatus(status)
	}

	slots, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}

// AvailableSlots is the public availability query used by booking clients.
func (h *Handler) AvailableSlots(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("doctor_id is required"))
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("date is required, expected YYYY-MM-DD"))
		return
	}

	slots, err := h.service.Available(c.Request.Context(), doctorID, date)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}

func (h *Handler) WithdrawSlot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid slot ID"))
		return
	}

	actor := middleware.ActorFromContext(c)
	withdrawn, err := h.service.Withdraw(c.Request.Context(), actor.ID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(withdrawn))
}
