package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"astroseva/internal/domain"
	"astroseva/internal/pkg/response"
)

// RequireRole ensures that the authenticated actor holds one of the roles.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor.Anonymous() {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			c.Abort()
			return
		}

		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
		c.Abort()
	}
}

// AdminOnly middleware requires admin role
func AdminOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}

// ProvidersOnly admits astrologers, priests and admins.
func ProvidersOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleAstrologer, domain.RolePriest, domain.RoleAdmin)
}
