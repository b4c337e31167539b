package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/healthscope/internal/middleware"
	"github.com/vcscsvcscs/healthscope/internal/service"
	"github.com/vcscsvcscs/healthscope/pkg/model"
	"go.uber.org/zap"
)

// ProfileHandler implements the profile and device token endpoints
type ProfileHandler struct {
	service *service.ProfileService
	logger  *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(service *service.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger,
	}
}

type deviceTokenRequest struct {
	Token string `json:"token"`
}

// Get handles GET /api/users/me/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.service.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, h.logger, err, "Failed to retrieve profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Update handles PUT /api/users/me/profile. Fields absent from the body are kept.
func (h *ProfileHandler) Update(c *gin.Context) {
	var patch model.UserProfile
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeBindError(c, h.logger, err, "Invalid request body")
		return
	}

	profile, err := h.service.Update(c.Request.Context(), middleware.UserID(c), patch)
	if err != nil {
		writeError(c, h.logger, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// RegisterDeviceToken handles PUT /api/users/me/device-token
func (h *ProfileHandler) RegisterDeviceToken(c *gin.Context) {
	var req deviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, h.logger, err, "Invalid request body")
		return
	}

	if err := h.service.RegisterDeviceToken(c.Request.Context(), middleware.UserID(c), req.Token); err != nil {
		writeError(c, h.logger, err, "Failed to register device token")
		return
	}
	c.Status(http.StatusNoContent)
}
