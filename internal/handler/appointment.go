package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/healthscope/internal/middleware"
	"github.com/vcscsvcscs/healthscope/internal/service"
	"github.com/vcscsvcscs/healthscope/pkg/model"
	"go.uber.org/zap"
)

// AppointmentHandler implements appointment API endpoints
type AppointmentHandler struct {
	service *service.AppointmentService
	logger  *zap.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler
func NewAppointmentHandler(service *service.AppointmentService, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		logger:  logger,
	}
}

// List handles GET /api/users/me/appointments
func (h *AppointmentHandler) List(c *gin.Context) {
	appointments, err := h.service.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, h.logger, err, "Failed to retrieve appointments")
		return
	}
	if appointments == nil {
		appointments = []model.Appointment{}
	}
	c.JSON(http.StatusOK, appointments)
}

// Create handles POST /api/users/me/appointments
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req model.Appointment
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, h.logger, err, "Invalid request body")
		return
	}

	created, err := h.service.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		writeError(c, h.logger, err, "Failed to create appointment")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/users/me/appointments/:id
func (h *AppointmentHandler) Update(c *gin.Context) {
	var req model.Appointment
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, h.logger, err, "Invalid request body")
		return
	}

	updated, err := h.service.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, h.logger, err, "Failed to update appointment")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/users/me/appointments/:id
func (h *AppointmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		writeError(c, h.logger, err, "Failed to delete appointment")
		return
	}
	c.Status(http.StatusNoContent)
}
