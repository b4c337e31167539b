package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// All incoming requests are logged with method, path, user ID and timestamp
func TestProperty_RequestLogging(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("all requests are logged with required fields", prop.ForAll(
		func(method string, path string, userID string) bool {
			core, logs := observer.New(zapcore.InfoLevel)
			logger := zap.New(core)

			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.Use(RequestLoggingMiddleware(logger))

			router.Handle(method, path, func(c *gin.Context) {
				if userID != "" {
					c.Set(UserIDKey, userID)
				}
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(method, path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			var requestLog *observer.LoggedEntry
			for _, entry := range logs.All() {
				if entry.Message == "Request completed" {
					e := entry
					requestLog = &e
					break
				}
			}
			if requestLog == nil {
				t.Logf("Request log entry not found")
				return false
			}

			fields := requestLog.ContextMap()
			if fields["method"] != method || fields["path"] != path {
				t.Logf("method/path mismatch: %v %v", fields["method"], fields["path"])
				return false
			}

			wantUser := userID
			if wantUser == "" {
				wantUser = "anonymous"
			}
			if fields["user_id"] != wantUser {
				t.Logf("user_id mismatch: expected %s, got %v", wantUser, fields["user_id"])
				return false
			}

			for _, key := range []string{"timestamp", "duration", "status"} {
				if _, ok := fields[key]; !ok {
					t.Logf("%s field missing", key)
					return false
				}
			}
			return true
		},
		gen.OneConstOf("GET", "POST", "PUT", "DELETE"),
		gen.OneConstOf("/api/analyze-vitals", "/health", "/api/users/me/appointments"),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Errors are logged with stack traces and request context
func TestProperty_ErrorLoggingDetail(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("errors are logged with stack traces and context", prop.ForAll(
		func(errorMessage string, path string) bool {
			core, logs := observer.New(zapcore.ErrorLevel)
			logger := zap.New(core)

			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.Use(ErrorLoggingMiddleware(logger))

			router.GET(path, func(c *gin.Context) {
				_ = c.Error(&testError{msg: errorMessage})
				c.Status(http.StatusInternalServerError)
			})

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))

			var errorLog *observer.LoggedEntry
			for _, entry := range logs.All() {
				if entry.Message == "Request error occurred" {
					e := entry
					errorLog = &e
					break
				}
			}
			if errorLog == nil {
				t.Logf("Error log entry not found")
				return false
			}

			fields := errorLog.ContextMap()
			if _, ok := fields["error"]; !ok {
				return false
			}
			if fields["method"] != "GET" || fields["path"] != path {
				return false
			}
			_, ok := fields["stack_trace"]
			return ok
		},
		gen.AlphaString(),
		gen.OneConstOf("/api/chat", "/api/nearby-hospitals", "/api/recommend-activities"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RecoveryMiddleware(zap.New(core)))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":"INTERNAL_ERROR","message":"Internal server error"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	t.Run("generates uuid", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

		_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
		require.NoError(t, err)
		assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())
	})

	t.Run("keeps caller id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	})
}

type fakeObserver struct {
	method string
	route  string
	status int
	d      time.Duration
}

func (f *fakeObserver) ObserveHTTP(method, route string, status int, d time.Duration) {
	f.method, f.route, f.status, f.d = method, route, status, d
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	obs := &fakeObserver{}
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(MetricsMiddleware(obs))
	router.DELETE("/api/users/me/appointments/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("DELETE", "/api/users/me/appointments/42", nil))

	assert.Equal(t, "DELETE", obs.method)
	assert.Equal(t, "/api/users/me/appointments/:id", obs.route)
	assert.Equal(t, http.StatusNoContent, obs.status)
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}
