package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zut-mobile/plan-api/internal/service"
)

// Metrics records request duration and status for every route except the
// scrape endpoint itself.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		// FullPath keeps the route template so /custom-events/:id stays a
		// single label value.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
