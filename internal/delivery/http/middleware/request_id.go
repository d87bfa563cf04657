package middleware

import (
	"context"
	"regexp"

	"go-headhunter-backend/pkg/audit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID reuses a well-formed incoming X-Request-ID or generates one, and
// exposes it to handlers, the audit log and the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !validRequestID.MatchString(id) {
			id = uuid.NewString()
		}

		c.Set("RequestID", id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), audit.RequestIDKey, id))
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}
