package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/invoxia/logger"
)

// HeaderRequestID is the request-correlation header.
const HeaderRequestID = "X-Request-Id"

const requestIDKey = "request_id"

// RequestID honors an incoming X-Request-Id or generates one, echoes it on
// the response and stores it on both the gin and the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		EnsureRequestID(c)
		c.Next()
	}
}

// EnsureRequestID returns the request id for c, creating and publishing one
// when no earlier stage has.
func EnsureRequestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	id := c.GetHeader(HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDKey, id)
	c.Request.Header.Set(HeaderRequestID, id)
	c.Header(HeaderRequestID, id)
	c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
	return id
}

// RequestIDFrom returns the request id stored on c, or "".
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
