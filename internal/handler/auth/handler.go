package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medisched/scheduler-api/internal/handler"
	"github.com/medisched/scheduler-api/internal/middleware"
	"github.com/medisched/scheduler-api/internal/model"
	"github.com/medisched/scheduler-api/internal/service/auth"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondBindError(c, err)
		return
	}

	patient, err := h.service.RegisterPatient(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(patient))
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondBindError(c, err)
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}
