package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
	"github.com/noah-isme/innovation-hub-api/pkg/response"
)

// RequireTypes restricts a route to the given actor populations.
func RequireTypes(types ...models.UserType) gin.HandlerFunc {
	allowed := make(map[models.UserType]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	return func(c *gin.Context) {
		actorValue, exists := c.Get(ContextActorKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		actor := actorValue.(models.Actor)

		if _, ok := allowed[actor.Type]; !ok {
			response.Error(c, appErrors.ErrInvalidUserType)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAccessorRoles further restricts accessor routes to specific roles.
// Non-accessor types named alongside pass on type alone.
func RequireAccessorRoles(roles ...models.AccessorRole) gin.HandlerFunc {
	allowed := make(map[models.AccessorRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		actorValue, exists := c.Get(ContextActorKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		actor := actorValue.(models.Actor)

		if actor.Type != models.UserTypeAccessor || actor.Organisation == nil {
			response.Error(c, appErrors.ErrInvalidUserType)
			c.Abort()
			return
		}
		if _, ok := allowed[actor.Organisation.Role]; !ok {
			response.Error(c, appErrors.ErrInvalidUserRole)
			c.Abort()
			return
		}
		c.Next()
	}
}
