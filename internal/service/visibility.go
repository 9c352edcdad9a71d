package service

import (
	"context"
	"database/sql"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
)

// innovationReader is the visibility surface every workflow service needs.
type innovationReader interface {
	FindByID(ctx context.Context, id string) (*models.Innovation, error)
	FindForOwner(ctx context.Context, id, ownerID string) (*models.Innovation, error)
	FindSharedWithOrganisation(ctx context.Context, id, organisationID, unitID string, requireEngaging bool) (*models.Innovation, error)
}

// ensureAccessorContext verifies the actor carries the organisation and unit
// context accessor operations require. It runs before any repository write.
func ensureAccessorContext(actor models.Actor) error {
	if actor.Type != models.UserTypeAccessor {
		return appErrors.ErrInvalidUserType
	}
	if actor.Organisation == nil {
		return appErrors.ErrMissingOrganisation
	}
	if actor.Organisation.UnitID == "" {
		return appErrors.ErrMissingOrganisationUnit
	}
	return nil
}

// resolveInnovationForActor loads an innovation applying the actor's
// visibility: owner match for innovators, share match for accessors (plain
// accessors additionally need an engaging support from their unit),
// unrestricted for assessment and admin users.
func resolveInnovationForActor(ctx context.Context, innovations innovationReader, actor models.Actor, innovationID string) (*models.Innovation, error) {
	var (
		innovation *models.Innovation
		err        error
	)
	switch actor.Type {
	case models.UserTypeInnovator:
		innovation, err = innovations.FindForOwner(ctx, innovationID, actor.ID)
	case models.UserTypeAccessor:
		if actor.Organisation == nil {
			return nil, appErrors.ErrMissingOrganisation
		}
		requireEngaging := actor.Organisation.Role == models.RoleAccessor
		if requireEngaging && actor.Organisation.UnitID == "" {
			return nil, appErrors.ErrMissingOrganisationUnit
		}
		innovation, err = innovations.FindSharedWithOrganisation(ctx, innovationID,
			actor.Organisation.OrganisationID, actor.Organisation.UnitID, requireEngaging)
	case models.UserTypeAssessment, models.UserTypeAdmin:
		innovation, err = innovations.FindByID(ctx, innovationID)
	default:
		return nil, appErrors.ErrInvalidUserType
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "innovation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load innovation")
	}
	return innovation, nil
}

// dedupeStrings removes duplicates and empty entries preserving order.
func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

// excludeString drops one value from a slice.
func excludeString(values []string, drop string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v != drop {
			result = append(result, v)
		}
	}
	return result
}
