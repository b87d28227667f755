package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPMetricsRecorder receives one observation per served request
type HTTPMetricsRecorder interface {
	IncInFlight()
	DecInFlight()
	ObserveHTTPRequest(method, route string, status int, elapsed time.Duration)
}

// HTTPMetrics returns a middleware recording request count, latency and
// in-flight requests. Requests to skipPaths (e.g. the scrape endpoint) are not counted.
func HTTPMetrics(recorder HTTPMetricsRecorder, skipPaths ...string) gin.HandlerFunc {
	if recorder == nil {
		return func(c *gin.Context) { c.Next() }
	}

	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		recorder.IncInFlight()
		defer recorder.DecInFlight()

		c.Next()

		recorder.ObserveHTTPRequest(c.Request.Method, getRoutePattern(c), c.Writer.Status(), time.Since(start))
	}
}

// getRoutePattern returns the matched route (e.g. "/orders/:id") to keep label
// cardinality bounded
func getRoutePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}
