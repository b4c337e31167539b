package handler

import (
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/healthscope/internal/apidoc"
	"github.com/vcscsvcscs/healthscope/internal/middleware"
	"go.uber.org/zap"
)

// RouterConfig wires the handlers and cross-cutting concerns into a gin engine
type RouterConfig struct {
	Assistant   *AssistantHandler
	Appointment *AppointmentHandler
	Medication  *MedicationHandler
	Profile     *ProfileHandler
	Health      *HealthHandler
	// Privacy is optional; when nil the export and erase routes are not registered
	Privacy *PrivacyHandler

	Auth           middleware.AuthOptions
	AllowedOrigins []string
	APIDoc         *openapi3.T
	// Metrics is optional; when set the engine reports per-route metrics and serves /metrics
	Metrics MetricsExporter
	Logger  *zap.Logger
}

// MetricsExporter observes requests and serves the collected metrics
type MetricsExporter interface {
	middleware.HTTPObserver
	Handler() http.Handler
}

// NewRouter builds the HTTP engine
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()

	// Recovery must be first
	r.Use(middleware.RecoveryMiddleware(cfg.Logger))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: !containsWildcard(origins),
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLoggingMiddleware(cfg.Logger))
	r.Use(middleware.ErrorLoggingMiddleware(cfg.Logger))
	r.Use(middleware.AuditContextMiddleware())
	if cfg.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(cfg.Metrics))
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	r.GET("/health", cfg.Health.GetHealth)

	api := r.Group("/api")
	api.POST("/vitals/analyze", cfg.Assistant.AnalyzeVitals)
	api.POST("/mood/recommendations", cfg.Assistant.RecommendActivities)
	api.POST("/chat/sakhi", cfg.Assistant.Chat)
	api.POST("/hospitals/nearby", cfg.Assistant.NearbyHospitals)
	api.GET("/emergency/contacts", cfg.Health.EmergencyContacts)
	if cfg.APIDoc != nil {
		api.GET("/openapi.json", apidoc.Handler(cfg.APIDoc))
	}

	me := api.Group("/users/me", middleware.RequireAuth(cfg.Auth, cfg.Logger))
	me.GET("/appointments", cfg.Appointment.List)
	me.POST("/appointments", cfg.Appointment.Create)
	me.PUT("/appointments/:id", cfg.Appointment.Update)
	me.DELETE("/appointments/:id", cfg.Appointment.Delete)
	me.GET("/medications", cfg.Medication.List)
	me.POST("/medications", cfg.Medication.Create)
	me.PUT("/medications/:id", cfg.Medication.Update)
	me.DELETE("/medications/:id", cfg.Medication.Delete)
	me.GET("/profile", cfg.Profile.Get)
	me.PUT("/profile", cfg.Profile.Update)
	me.PUT("/device-token", cfg.Profile.RegisterDeviceToken)
	if cfg.Privacy != nil {
		me.GET("/export", cfg.Privacy.Export)
		me.DELETE("", cfg.Privacy.Erase)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Code: CodeNotFound, Message: "Route not found"})
	})

	return r
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
