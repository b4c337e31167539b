package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/healthscope/internal/service"
	"github.com/vcscsvcscs/healthscope/pkg/model"
	"go.uber.org/zap"
)

// AssistantHandler implements the AI endpoints
type AssistantHandler struct {
	service *service.AssistantService
	logger  *zap.Logger
}

// NewAssistantHandler creates a new AssistantHandler
func NewAssistantHandler(service *service.AssistantService, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{
		service: service,
		logger:  logger,
	}
}

type chatRequest struct {
	Message     json.RawMessage     `json:"message"`
	ChatHistory []model.ChatMessage `json:"chatHistory"`
}

type hospitalsRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

var errMessageNotString = errors.New("message must be a string")

func locale(c *gin.Context) model.Locale {
	return model.ParseLocale(c.GetHeader("Accept-Language"))
}

// AnalyzeVitals handles POST /api/vitals/analyze
func (h *AssistantHandler) AnalyzeVitals(c *gin.Context) {
	var req model.VitalsReading
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, h.logger, err, service.MsgVitalsRequired)
		return
	}

	result, err := h.service.AnalyzeVitals(c.Request.Context(), req, locale(c))
	if err != nil {
		writeError(c, h.logger, err, "Failed to analyze vitals")
		return
	}

	c.JSON(http.StatusOK, result)
}

// RecommendActivities handles POST /api/mood/recommendations
func (h *AssistantHandler) RecommendActivities(c *gin.Context) {
	var req model.MoodEntry
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, h.logger, err, service.MsgMoodRequired)
		return
	}

	result, err := h.service.RecommendActivities(c.Request.Context(), req, locale(c))
	if err != nil {
		writeError(c, h.logger, err, "Failed to get activity recommendations")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Chat handles POST /api/chat/sakhi
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, h.logger, err, service.MsgMessageRequired)
		return
	}

	var message string
	if len(req.Message) == 0 || json.Unmarshal(req.Message, &message) != nil {
		writeBindError(c, h.logger, errMessageNotString, service.MsgMessageRequired)
		return
	}

	reply, err := h.service.Chat(c.Request.Context(), message, req.ChatHistory, locale(c))
	if err != nil {
		writeError(c, h.logger, err, "Failed to get response from Sakhi")
		return
	}

	c.JSON(http.StatusOK, reply)
}

// NearbyHospitals handles POST /api/hospitals/nearby
func (h *AssistantHandler) NearbyHospitals(c *gin.Context) {
	var req hospitalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, h.logger, err, service.MsgCoordinatesRequired)
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    CodeValidation,
			Message: service.MsgCoordinatesRequired,
		})
		return
	}

	coords := model.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
	result, err := h.service.NearbyHospitals(c.Request.Context(), coords, locale(c))
	if err != nil {
		writeError(c, h.logger, err, "Failed to find nearby hospitals")
		return
	}

	c.JSON(http.StatusOK, result)
}
