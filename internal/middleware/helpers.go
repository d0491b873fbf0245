// internal/middleware/helpers.go
package middleware

import (
	"estatedesk-service/internal/pkg/identity"

	"github.com/gin-gonic/gin"
)

// MustGetActor gets the authenticated actor from context or panics.
// Handlers behind Auth() may rely on it being present.
func MustGetActor(c *gin.Context) identity.Actor {
	actor, ok := GetActor(c)
	if !ok {
		panic("actor not found in context")
	}
	return actor
}

// SetActor stores an actor directly, for tests that bypass Auth().
func SetActor(c *gin.Context, actor identity.Actor) {
	c.Set(actorKey, actor)
}

// IsAuthenticated checks if the request carries an actor.
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get(actorKey)
	return exists
}
