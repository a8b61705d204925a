package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/ticket-desk/internal/logger"
)

// RequestLogger пишет одну строку на запрос через zap.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}
