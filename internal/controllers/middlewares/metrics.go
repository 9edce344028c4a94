package middlewares

import (
	"time"

	"github.com/fsdevblog/urlkeeper/internal/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware собирает HTTP метрики по шаблону маршрута.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		m.RequestStarted()
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RequestFinished(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
