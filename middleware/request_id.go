package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader  = "X-Request-ID"
	ContextRequestID = "request_id"
)

// RequestID reuses the caller's X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger is gin's logger with the request id in each line.
func RequestLogger() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(p gin.LogFormatterParams) string {
		id, _ := p.Keys[ContextRequestID].(string)
		return fmt.Sprintf("[GIN] %s | %s | %3d | %13v | %15s | %-7s %#v\n%s",
			p.TimeStamp.Format(time.RFC3339),
			id,
			p.StatusCode,
			p.Latency,
			p.ClientIP,
			p.Method,
			p.Path,
			p.ErrorMessage,
		)
	})
}
