package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/berlinbruno/podpirate/internal/logging"
	"github.com/berlinbruno/podpirate/internal/metrics"
)

// RequestLogger logs every request with method, path, status and latency,
// and feeds the HTTP metrics. The route pattern, not the raw path, is used
// as the metric label.
func RequestLogger(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		elapsed := time.Since(start)
		logger.LogHTTPRequest(
			c.Request.Method,
			path,
			c.ClientIP(),
			c.Writer.Status(),
			elapsed,
		)

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordHTTPRequest(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
			elapsed.Seconds(),
		)
	}
}
