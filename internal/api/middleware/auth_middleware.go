package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/EvgeniyGal/hr-agency/internal/auth"
	"github.com/EvgeniyGal/hr-agency/internal/rbac"
)

// Context keys set by AuthMiddleware and read by handlers and gates.
const (
	UserIDKey             = "userID"
	UserRoleKey           = "userRole"
	MustChangePasswordKey = "mustChangePassword"
)

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

// AuthMiddleware validates the access token and injects the principal
// (user id + role) into the request context.
func AuthMiddleware(authService *auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c)
			return
		}

		rawToken := parts[1]
		if strings.TrimSpace(rawToken) == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := authService.ValidateToken(rawToken)
		if err != nil || claims.TokenType != "access" {
			abortUnauthorized(c)
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserRoleKey, claims.Role)
		c.Set(MustChangePasswordKey, claims.MustChangePassword)
		c.Next()
	}
}

// RequireCapability gates a route group on the declarative capability
// table. The principal's role comes from the access token; nothing here
// touches the database, and a denial aborts before any write.
func RequireCapability(cap rbac.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, ok := c.Get(UserRoleKey)
		if !ok {
			abortUnauthorized(c)
			return
		}
		role, ok := value.(rbac.Role)
		if !ok {
			abortUnauthorized(c)
			return
		}
		if !rbac.Allowed(role, cap) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}
