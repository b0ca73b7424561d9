package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"astroseva/internal/domain"
	"astroseva/internal/modules/identity"
	"astroseva/internal/pkg/jwt"
	"astroseva/internal/pkg/response"
)

const actorKey = "actor"

// RoleResolver looks up the actor's role. Roles are never read from the token.
type RoleResolver interface {
	ResolveRole(ctx context.Context, actorID string) (domain.Role, error)
}

// JWTAuth requires a valid bearer token and resolves the caller's role.
func JWTAuth(jwtService *jwt.Service, roles RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid Authorization header")
			c.Abort()
			return
		}
		if !authenticate(c, jwtService, roles, token) {
			return
		}
		c.Next()
	}
}

// OptionalAuth resolves the caller when a bearer token is present and lets
// anonymous requests through. A present but invalid token is still rejected.
func OptionalAuth(jwtService *jwt.Service, roles RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Set(actorKey, domain.Actor{})
			c.Next()
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid Authorization header")
			c.Abort()
			return
		}
		if !authenticate(c, jwtService, roles, token) {
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return token, token != ""
}

func authenticate(c *gin.Context, jwtService *jwt.Service, roles RoleResolver, token string) bool {
	claims, err := jwtService.ValidateToken(token)
	if err != nil || claims.ActorID() == "" {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		c.Abort()
		return false
	}

	role, err := roles.ResolveRole(c.Request.Context(), claims.ActorID())
	if err != nil {
		_ = c.Error(err)
		if errors.Is(err, identity.ErrUpstreamUnavailable) {
			response.Error(c, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Could not resolve role")
		} else {
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not resolve role")
		}
		c.Abort()
		return false
	}

	actor := domain.Actor{ID: claims.ActorID(), Role: role}
	c.Set(actorKey, actor)
	c.Set("user_id", actor.ID)
	c.Set("role", string(actor.Role))
	c.Set("email", claims.Email)
	return true
}

// GetActor returns the actor set by JWTAuth or OptionalAuth; the zero Actor
// when the request is anonymous.
func GetActor(c *gin.Context) domain.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return domain.Actor{}
	}
	actor, _ := v.(domain.Actor)
	return actor
}
