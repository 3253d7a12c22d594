package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/recordgraph/recordgraph/internal/telemetry"
)

// Metrics records request counts and latency per route template.
// Unmatched paths share one label so unknown urls cannot blow up cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		telemetry.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		telemetry.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
