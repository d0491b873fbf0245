// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"estatedesk-service/internal/pkg/identity"
	"estatedesk-service/internal/pkg/jwt"
	"estatedesk-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

type AuthMiddleware struct {
	verifier *jwt.Verifier
}

func NewAuthMiddleware(verifier *jwt.Verifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// Auth validates the bearer token minted by the identity provider and
// stores the resulting actor in the request context.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		actor := claims.Actor()
		if !actor.Role.Valid() {
			response.Error(c, http.StatusForbidden, "unknown role", nil)
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireRole restricts a route to the listed roles. MUST be used after
// Auth().
func (m *AuthMiddleware) RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			response.Error(c, http.StatusForbidden, "authentication required", nil)
			return
		}

		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "insufficient permissions", nil, map[string]interface{}{
			"required_roles": roles,
			"role":           actor.Role,
		})
	}
}

// AdminOnly returns middlewares for admin-only routes (Auth + RequireRole).
func (m *AuthMiddleware) AdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireRole(identity.RoleAdmin),
	}
}

// extractToken extracts the Bearer token from the Authorization header.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	return ""
}

// GetActor retrieves the authenticated actor from the request context.
func GetActor(c *gin.Context) (identity.Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return identity.Actor{}, false
	}

	actor, ok := v.(identity.Actor)
	return actor, ok
}
