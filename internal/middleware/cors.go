package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS returns a middleware that handles cross-origin requests. allowedOrigins
// comes from configuration; "*" allows any origin.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	origins := make([]string, len(allowedOrigins))
	for i, o := range allowedOrigins {
		origins[i] = strings.TrimSpace(o)
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := ""
		for _, o := range origins {
			if o == "*" {
				allowed = "*"
				break
			}
			if o == origin {
				allowed = origin
				break
			}
		}

		if allowed != "" {
			c.Header("Access-Control-Allow-Origin", allowed)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
