package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/court-facilities-api/internal/service"
)

// Metrics records request latency and counts. Unrouted requests share one label
// so that scanners cannot blow up series cardinality.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
