package middleware

import (
	"time"

	"heroes/heroes_go_service/pkg/logger"

	"github.com/gin-gonic/gin"
)

func AccessLog(log logger.LoggerI) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)),
			logger.String("client_ip", c.ClientIP()),
			logger.String("request_id", c.GetString(RequestIDKey)),
		}

		switch {
		case len(c.Errors) > 0:
			log.Error("request failed", append(fields, logger.String("errors", c.Errors.String()))...)
		case c.Writer.Status() >= 500:
			log.Error("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
