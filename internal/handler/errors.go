package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/healthscope/internal/apperr"
	"go.uber.org/zap"
)

// Error codes
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeAI           = "AI_ERROR"
	CodeAISchema     = "AI_SCHEMA_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details,omitempty"`
}

func stringPtr(s string) *string {
	return &s
}

// statusFor maps an error kind to its HTTP status and error code
func statusFor(kind apperr.Kind) (int, string) {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest, CodeValidation
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized, CodeUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound, CodeNotFound
	case apperr.KindAITransport:
		return http.StatusInternalServerError, CodeAI
	case apperr.KindAISchema:
		return http.StatusInternalServerError, CodeAISchema
	case apperr.KindStore, apperr.KindInternal:
		return http.StatusInternalServerError, CodeInternal
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// writeError converts err into an ErrorResponse. Client errors carry their own message;
// server errors use the error's message when it is user facing, else fallback.
func writeError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	kind := apperr.KindOf(err)
	status, code := statusFor(kind)

	message := fallback
	switch kind {
	case apperr.KindValidation, apperr.KindUnauthorized, apperr.KindNotFound,
		apperr.KindAITransport, apperr.KindAISchema:
		message = apperr.MessageOf(err, fallback)
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.Error(err),
			zap.String("kind", kind.String()),
			zap.String("path", c.Request.URL.Path),
		)
		_ = c.Error(err)
	}

	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// writeBindError reports a request body that could not be decoded
func writeBindError(c *gin.Context, logger *zap.Logger, err error, message string) {
	logger.Warn("invalid request body", zap.Error(err), zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    CodeValidation,
		Message: message,
		Details: stringPtr(err.Error()),
	})
}
