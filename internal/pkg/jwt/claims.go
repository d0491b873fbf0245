package jwt

import (
	"github.com/golang-jwt/jwt/v5"

	"estatedesk-service/internal/pkg/identity"
)

// Claims are the token claims minted by the identity provider. This service
// only consumes role classification and project assignment; it never issues
// tokens or manages users.
type Claims struct {
	StaffID  int64   `json:"staff_id"`
	Role     string  `json:"role"`
	Projects []int64 `json:"projects,omitempty"`
	jwt.RegisteredClaims
}

// Actor converts the claims into the actor shape services consume.
func (c *Claims) Actor() identity.Actor {
	return identity.Actor{
		StaffID:  c.StaffID,
		Role:     identity.Role(c.Role),
		Projects: c.Projects,
	}
}

// VerifyAudience checks if the expected audience is listed in the claims.
func (c *Claims) VerifyAudience(audience string, required bool) bool {
	if len(c.Audience) == 0 {
		return !required
	}

	for _, aud := range c.Audience {
		if aud == audience {
			return true
		}
	}

	return false
}
