package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/supplypulse/backend/internal/order"
)

// Context keys for the verified caller identity.
const (
	ContextActorKey = "actor"

	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
)

var knownRoles = map[string]bool{
	order.RoleClient:   true,
	order.RoleSupplier: true,
	order.RoleEmployee: true,
	order.RoleManager:  true,
	order.RoleAdmin:    true,
}

// RequireActor reads the verified-identity headers set by the upstream auth
// gateway and rejects requests without them. There is no bypass identity.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(headerUserID)
		role := c.GetHeader(headerUserRole)

		if userID == "" || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
			return
		}
		if !knownRoles[role] {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown role"})
			return
		}

		c.Set(ContextActorKey, order.Actor{ID: userID, Role: role})
		c.Next()
	}
}

// ActorFrom extracts the actor stored by RequireActor.
func ActorFrom(c *gin.Context) order.Actor {
	if v, ok := c.Get(ContextActorKey); ok {
		if actor, ok := v.(order.Actor); ok {
			return actor
		}
	}

	return order.Actor{}
}
