package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/stagekit/logger"
)

// quietPaths are polled by probes and dashboards and are not logged.
var quietPaths = map[string]bool{
	"/health": true,
	"/alive":  true,
	"/ready":  true,
}

// RequestLogger returns a Gin middleware that logs every request with
// method, path, status code, and latency.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if quietPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path = path + "?" + q
		}

		fields := logger.Fields(
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client", c.ClientIP(),
		)
		if id, ok := c.Get(RequestIDKey); ok {
			fields[RequestIDKey] = id
		}
		if latency > 500*time.Millisecond {
			fields["slow"] = true
		}
		logByStatus(log, fields, status)
	}
}

// logByStatus logs request fields at the appropriate level based on HTTP status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
