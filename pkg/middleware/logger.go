package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger records request outcomes. Successful requests stay at debug
// level; 4xx and 5xx get promoted so operators see them without the noise.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			slog.String("request_id", GetRequestID(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
		}

		switch {
		case status >= 500:
			logger.Error("http request failed", attrs...)
		case status >= 400:
			logger.Warn("http request rejected", attrs...)
		default:
			logger.Debug("http request", attrs...)
		}
	}
}
