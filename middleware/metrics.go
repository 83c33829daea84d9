package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/hantverk-dashboard/metrics"
)

// Metrics records every request under its route pattern so ids do not explode label cardinality
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
