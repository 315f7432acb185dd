package middleware

import (
	"strconv"

	"github.com/LPS-RESULT/mongodb-gin-boilerplate/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// HTTPMetrics counts responses by method, route template and status code.
// Unmatched paths share the "unmatched" route label to keep cardinality bounded.
func HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPResponses.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
