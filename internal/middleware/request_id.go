package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ===========================================================================
// Request ID Middleware
// Tags every request with a unique ID for tracing. The ID is stored in
// the gin context and echoed back in the response header.
// ===========================================================================

const (
	// RequestIDKey gin context key holding the request ID.
	RequestIDKey = "request_id"

	// RequestIDHeader header carrying the request ID.
	RequestIDHeader = "X-Request-ID"
)

// RequestID reuses the client-sent X-Request-ID when present and
// generates a UUID otherwise.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID returns the request ID from the gin context, or an empty
// string when missing.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		return id.(string)
	}
	return ""
}
