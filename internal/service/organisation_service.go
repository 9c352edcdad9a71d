package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
)

type organisationRepo interface {
	List(ctx context.Context) ([]models.OrganisationWithUnits, error)
	ListUnitUsers(ctx context.Context, unitID string) ([]models.UnitUser, error)
}

// OrganisationService exposes the organisation and unit directory.
type OrganisationService struct {
	organisations organisationRepo
	profiles      profileResolver
	logger        *zap.Logger
}

// NewOrganisationService creates a new organisation service.
func NewOrganisationService(organisations organisationRepo, profiles profileResolver, logger *zap.Logger) *OrganisationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrganisationService{
		organisations: organisations,
		profiles:      profiles,
		logger:        logger,
	}
}

// List returns every active organisation with its units.
func (s *OrganisationService) List(ctx context.Context) ([]models.OrganisationWithUnits, error) {
	organisations, err := s.organisations.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list organisations")
	}
	return organisations, nil
}

// ListUnitUsers returns the accessors of a unit with their display names
// resolved from the directory. Accessor and admin users only.
func (s *OrganisationService) ListUnitUsers(ctx context.Context, actor models.Actor, unitID string) ([]models.UnitUser, error) {
	switch actor.Type {
	case models.UserTypeAccessor, models.UserTypeAdmin:
	default:
		return nil, appErrors.ErrInvalidUserType
	}

	users, err := s.organisations.ListUnitUsers(ctx, unitID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list unit users")
	}
	if len(users) == 0 {
		return users, nil
	}

	externalIDs := make([]string, 0, len(users))
	for _, user := range users {
		externalIDs = append(externalIDs, user.ExternalID)
	}
	profiles, err := s.profiles.ListProfiles(ctx, externalIDs)
	if err != nil {
		s.logger.Warn("unit user profile lookup failed",
			zap.String("unit_id", unitID), zap.Error(err))
		return users, nil
	}
	for i := range users {
		if profile, ok := profiles[users[i].ExternalID]; ok {
			users[i].DisplayName = profile.DisplayName
		}
	}
	return users, nil
}
