package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPObserver receives one observation per finished request
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
}

// MetricsMiddleware reports request counts and latency by matched route
func MetricsMiddleware(observer HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observer.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
