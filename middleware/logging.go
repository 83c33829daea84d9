package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/hantverk-dashboard/logger"
)

// Logging writes one structured line when a request starts and one when it completes
func Logging(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := log.WithFields(c.Request.Context(), map[string]any{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		log.Debug(ctx, "request.start")

		c.Next()

		ctx = log.WithFields(ctx, map[string]any{
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if len(c.Errors) > 0 {
			log.Error(ctx, "request.complete", c.Errors.Last())
			return
		}
		log.Info(ctx, "request.complete")
	}
}
