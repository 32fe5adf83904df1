package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medisched/scheduler-api/internal/handler"
	"github.com/medisched/scheduler-api/internal/middleware"
	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/service/notification"
)

type Handler struct {
	service notification.Service
}

func NewHandler(service notification.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
	}
}

// ListNotifications returns the authenticated caller's notifications,
// optionally filtered by delivery status.
func (h *Handler) ListNotifications(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	filters := &model.NotificationFilters{
		RecipientType: actor.Role,
		RecipientID:   actor.ID,
	}
	if status := c.Query("status"); status != "" {
		filters.Status = model.NotificationStatus(status)
	}

	notifications, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(notifications))
}
