package middleware

import (
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	"github.com/noah-isme/innovation-hub-api/internal/repository"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
	"github.com/noah-isme/innovation-hub-api/pkg/response"
)

// ContextActorKey is the gin context key storing the resolved actor.
const ContextActorKey = "currentActor"

// Actor resolves the authenticated claims into a platform actor. Accessor
// actors carry their single organisation membership as request context.
func Actor(users *repository.UserRepository, organisations *repository.OrganisationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextClaimsKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		user, err := users.FindByExternalID(c.Request.Context(), claims.ExternalID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "unknown platform user"))
			} else {
				response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve user"))
			}
			c.Abort()
			return
		}

		actor := models.Actor{
			ID:         user.ID,
			ExternalID: user.ExternalID,
			Type:       user.Type,
		}

		if user.Type == models.UserTypeAccessor {
			membership, err := organisations.FindMembership(c.Request.Context(), user.ID)
			switch {
			case err == nil:
				orgCtx := &models.OrganisationContext{
					MembershipID:   membership.ID,
					Role:           membership.Role,
					OrganisationID: membership.OrganisationID,
				}
				if membership.OrganisationName != nil {
					orgCtx.OrganisationName = *membership.OrganisationName
				}
				if membership.OrganisationUnitID != nil {
					orgCtx.UnitID = *membership.OrganisationUnitID
				}
				if membership.UnitName != nil {
					orgCtx.UnitName = *membership.UnitName
				}
				actor.Organisation = orgCtx
			case errors.Is(err, sql.ErrNoRows):
				// Membership-less accessors reach the service layer and
				// fail there with a precise error code.
			default:
				response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve membership"))
				c.Abort()
				return
			}
		}

		c.Set(ContextActorKey, actor)
		c.Next()
	}
}
