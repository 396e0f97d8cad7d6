package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// RequestID tags every request with an identifier, honoring one supplied
// by the caller so ids survive proxies and retries.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDHeader, id)
		c.Writer.Header().Set(requestIDHeader, id)

		c.Next()
	}
}

// RequestIDFrom returns the identifier assigned by RequestID, or "" when
// the middleware did not run.
func RequestIDFrom(c *gin.Context) string {
	return c.Writer.Header().Get(requestIDHeader)
}
