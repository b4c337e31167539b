package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/healthscope/internal/middleware"
	"github.com/vcscsvcscs/healthscope/internal/service"
	"go.uber.org/zap"
)

// PrivacyHandler implements data export and account erasure
type PrivacyHandler struct {
	service *service.PrivacyService
	logger  *zap.Logger
}

// NewPrivacyHandler creates a new PrivacyHandler
func NewPrivacyHandler(service *service.PrivacyService, logger *zap.Logger) *PrivacyHandler {
	return &PrivacyHandler{
		service: service,
		logger:  logger,
	}
}

// Export handles GET /api/users/me/export
func (h *PrivacyHandler) Export(c *gin.Context) {
	export, err := h.service.Export(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, h.logger, err, "Failed to export user data")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "healthscope-export.json"))
	c.JSON(http.StatusOK, export)
}

// Erase handles DELETE /api/users/me
func (h *PrivacyHandler) Erase(c *gin.Context) {
	if err := h.service.Erase(c.Request.Context(), middleware.UserID(c)); err != nil {
		writeError(c, h.logger, err, "Failed to delete user data")
		return
	}
	c.Status(http.StatusNoContent)
}
