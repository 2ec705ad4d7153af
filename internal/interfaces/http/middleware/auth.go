package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"marketplace/internal/infrastructure/auth"
	"marketplace/internal/shared/utils"
)

const (
	// ContextUserID is the gin context key carrying the caller's user ID.
	ContextUserID = "user_id"
	// ContextUserRole is the gin context key carrying the caller's role.
	ContextUserRole = "user_role"
)

// Auth validates the bearer token and stashes the caller's identity
// on the context.
func Auth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			utils.ErrorResponse(c, 401, "missing or malformed authorization header")
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

// UserID extracts the authenticated user ID set by Auth.
func UserID(c *gin.Context) (uint, bool) {
	value, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
