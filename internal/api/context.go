package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/EvgeniyGal/hr-agency/internal/api/middleware"
	"github.com/EvgeniyGal/hr-agency/internal/rbac"
)

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case uint64:
		return uint(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}

func roleFromContext(c *gin.Context) (rbac.Role, bool) {
	value, exists := c.Get(middleware.UserRoleKey)
	if !exists {
		return "", false
	}
	role, ok := value.(rbac.Role)
	return role, ok
}

func loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	return slog.Default()
}
