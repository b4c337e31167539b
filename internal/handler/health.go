package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/healthscope/pkg/model"
	"go.uber.org/zap"
)

// Pinger reports whether the store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler implements the liveness and reference data endpoints
type HealthHandler struct {
	store    Pinger
	contacts []model.EmergencyContact
	version  string
	logger   *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(store Pinger, contacts []model.EmergencyContact, version string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		store:    store,
		contacts: contacts,
		version:  version,
		logger:   logger,
	}
}

// GetHealth handles GET /health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Error("health check failed: store unreachable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"store":  "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"store":   "connected",
		"service": "healthscope-backend",
		"version": h.version,
	})
}

// EmergencyContacts handles GET /api/emergency/contacts
func (h *HealthHandler) EmergencyContacts(c *gin.Context) {
	c.JSON(http.StatusOK, h.contacts)
}
