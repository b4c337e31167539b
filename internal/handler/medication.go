package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/healthscope/internal/middleware"
	"github.com/vcscsvcscs/healthscope/internal/service"
	"github.com/vcscsvcscs/healthscope/pkg/model"
	"go.uber.org/zap"
)

// MedicationHandler implements medication reminder API endpoints
type MedicationHandler struct {
	service *service.MedicationService
	logger  *zap.Logger
}

// NewMedicationHandler creates a new MedicationHandler
func NewMedicationHandler(service *service.MedicationService, logger *zap.Logger) *MedicationHandler {
	return &MedicationHandler{
		service: service,
		logger:  logger,
	}
}

// List handles GET /api/users/me/medications
func (h *MedicationHandler) List(c *gin.Context) {
	medications, err := h.service.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, h.logger, err, "Failed to retrieve medications")
		return
	}
	if medications == nil {
		medications = []model.MedicationReminder{}
	}
	c.JSON(http.StatusOK, medications)
}

// Create handles POST /api/users/me/medications
func (h *MedicationHandler) Create(c *gin.Context) {
	var req model.MedicationReminder
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, h.logger, err, "Invalid request body")
		return
	}

	created, err := h.service.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		writeError(c, h.logger, err, "Failed to add medication")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/users/me/medications/:id
func (h *MedicationHandler) Update(c *gin.Context) {
	var req model.MedicationReminder
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, h.logger, err, "Invalid request body")
		return
	}

	updated, err := h.service.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, h.logger, err, "Failed to update medication")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/users/me/medications/:id
func (h *MedicationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		writeError(c, h.logger, err, "Failed to delete medication")
		return
	}
	c.Status(http.StatusNoContent)
}
