package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an identifier, reusing the caller's
// X-Request-ID when one is provided.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID extracts the request identifier from the Gin context
func GetRequestID(c *gin.Context) string {
	id, exists := c.Get("requestID")
	if !exists {
		return ""
	}
	return id.(string)
}
