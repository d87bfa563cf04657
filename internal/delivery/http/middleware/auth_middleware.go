package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"go-headhunter-backend/internal/delivery/http/response"
	"go-headhunter-backend/internal/domain"
	"go-headhunter-backend/pkg/auth"

	"github.com/gin-gonic/gin"
)

const AdminTokenHeader = "X-Admin-Token"

// AuthMiddleware verifies the bearer token and stores the caller identity in
// both the gin context and the request context.
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header required", nil)
			c.Abort()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), claims.Subject)
		c.Set(string(domain.KeyUserEmail), claims.Email)
		c.Set(string(domain.KeyUserRole), claims.Role)

		ctx := context.WithValue(c.Request.Context(), domain.KeyUserID, claims.Subject)
		ctx = context.WithValue(ctx, domain.KeyUserEmail, claims.Email)
		ctx = context.WithValue(ctx, domain.KeyUserRole, claims.Role)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(string(domain.KeyUserRole))
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Error(c, http.StatusForbidden, "Insufficient permissions", nil)
		c.Abort()
	}
}

// AdminToken guards operator endpoints with a shared secret. An empty
// configured token disables the endpoints.
func AdminToken(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" {
			response.Error(c, http.StatusForbidden, "Admin endpoints are disabled", nil)
			c.Abort()
			return
		}
		got := c.GetHeader(AdminTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			response.Error(c, http.StatusUnauthorized, "Invalid admin token", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
