// Package middleware holds the gin middleware of the article API: request ids,
// access logging, Prometheus instrumentation and session capabilities.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"article_cms/internal/metrics"
)

// unobserved routes are scraped or probed constantly and would drown the
// article traffic in the request metrics.
var unobserved = map[string]bool{
	"/metrics": true,
	"/health":  true,
	"/ready":   true,
	"/live":    true,
}

// Metrics observes every API request under its route template, so
// /api/v1/articles/:slug is one series no matter how many articles exist.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if unobserved[route] {
			c.Next()
			return
		}
		if route == "" {
			route = "unmatched"
		}

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()
		start := time.Now()

		c.Next()

		method := c.Request.Method
		metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
