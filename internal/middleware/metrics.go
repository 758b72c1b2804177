package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-records-api/internal/service"
)

// Endpoints whose traffic is scraping or probing, not API usage. Recording
// them would drown the request series in monitoring noise.
var unobservedPaths = map[string]struct{}{
	"/metrics": {},
	"/health":  {},
	"/ready":   {},
}

// Metrics returns middleware that records method/path/status/latency for each
// request on the given MetricsService. A nil service disables observation.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		// Route template keeps cardinality bounded; raw path only for
		// unmatched requests.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		if _, skip := unobservedPaths[path]; skip {
			return
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
