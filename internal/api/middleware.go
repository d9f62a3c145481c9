package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiaobei/mvd/internal/logger"
)

// requestLogger logs failed and slow requests through the app logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		elapsed := time.Since(start)
		if status >= 400 || (elapsed > time.Second && c.FullPath() != "/api/events") {
			logger.Printf("[api] %s %s %d %v", c.Request.Method, c.Request.URL.Path, status, elapsed.Round(time.Millisecond))
		}
	}
}
