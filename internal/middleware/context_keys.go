package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// actorIDKey is the key used to store the acting principal's id in the
// request contexts. Using the custom key type prevents collisions.
const actorIDKey = contextKey("actorID")

const (
	// ActorHeader names the acting principal on incoming requests.
	// Authentication happens upstream; this service trusts the header.
	ActorHeader = "X-Actor-ID"

	// SystemActor is recorded for unattended callers (schedulers, queue
	// consumers) and requests without the header.
	SystemActor = "system"
)

// ActorMiddleware resolves the acting principal for the request and stores it
// in the Gin context and the request's context.Context. Every audit field and
// audit record downstream carries this id.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader(ActorHeader)
		if actorID == "" {
			actorID = SystemActor
		}

		c.Set(string(actorIDKey), actorID)
		ctx := context.WithValue(c.Request.Context(), actorIDKey, actorID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetActorIDFromContext retrieves the acting principal from the Gin context,
// checking the request context as well. Returns SystemActor when the
// middleware did not run.
func GetActorIDFromContext(c *gin.Context) string {
	if v, exists := c.Get(string(actorIDKey)); exists {
		if actorID, ok := v.(string); ok && actorID != "" {
			return actorID
		}
	}
	if v := c.Request.Context().Value(actorIDKey); v != nil {
		if actorID, ok := v.(string); ok && actorID != "" {
			return actorID
		}
	}
	return SystemActor
}
