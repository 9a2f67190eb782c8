// internal/middleware/logging_middleware.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"panel-link/internal/utils"
)

// LoggingMiddleware logs one line per request with the request id attached
func LoggingMiddleware(logger *utils.ServiceLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()

		requestLogger := &utils.ServiceLogger{
			Logger: utils.LoggerWithRequestID(logger.Logger, utils.GetRequestID(c)),
		}
		requestLogger.LogAPIRequest(
			c.Request.Method,
			c.FullPath(),
			c.Request.UserAgent(),
			c.ClientIP(),
			c.Writer.Status(),
			time.Since(startTime),
		)

		for _, e := range c.Errors {
			requestLogger.Warn("Request error", zap.Error(e.Err))
		}
	}
}
