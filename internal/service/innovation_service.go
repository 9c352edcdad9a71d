package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
)

type innovationRepo interface {
	innovationReader
	Create(ctx context.Context, innovation *models.Innovation, organisationIDs []string) error
	ListByOwner(ctx context.Context, ownerID string, opts models.ListOptions) ([]models.InnovationListItem, int, error)
	ListSharedWithOrganisation(ctx context.Context, organisationID string, filter models.InnovationFilter) ([]models.InnovationListItem, int, error)
	ListAll(ctx context.Context, filter models.InnovationFilter) ([]models.InnovationListItem, int, error)
	UpdateStatus(ctx context.Context, id string, status models.InnovationStatus, updatedBy string) error
	GetShareOrganisationIDs(ctx context.Context, innovationID string) ([]string, error)
	ReplaceShares(ctx context.Context, innovationID string, organisationIDs []string) ([]string, error)
	Archive(ctx context.Context, id, updatedBy string) error
}

// InnovationService owns the innovation lifecycle from creation to archive.
type InnovationService struct {
	innovations   innovationRepo
	notifications notifier
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewInnovationService creates a new innovation service.
func NewInnovationService(innovations innovationRepo, notifications notifier, logger *zap.Logger) *InnovationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InnovationService{
		innovations:   innovations,
		notifications: notifications,
		validator:     validator.New(),
		logger:        logger,
	}
}

// Create registers a new innovation owned by the acting innovator, optionally
// shared with an initial organisation set.
func (s *InnovationService) Create(ctx context.Context, actor models.Actor, req models.CreateInnovationRequest) (*models.Innovation, error) {
	if actor.Type != models.UserTypeInnovator {
		return nil, appErrors.ErrInvalidUserType
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid innovation payload")
	}

	innovation := &models.Innovation{
		ID:          uuid.NewString(),
		Name:        req.Name,
		CountryName: req.CountryName,
		Status:      models.InnovationStatusCreated,
		OwnerID:     actor.ID,
		CreatedBy:   &actor.ID,
		UpdatedBy:   &actor.ID,
	}
	if req.Description != "" {
		innovation.Description = &req.Description
	}
	if req.Postcode != "" {
		innovation.Postcode = &req.Postcode
	}

	if err := s.innovations.Create(ctx, innovation, dedupeStrings(req.Organisations)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create innovation")
	}
	return innovation, nil
}

// Find returns one innovation within the actor's visibility.
func (s *InnovationService) Find(ctx context.Context, actor models.Actor, innovationID string) (*models.Innovation, error) {
	return resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
}

// List returns the innovations visible to the actor: own records for
// innovators, shared records for accessors, everything for assessment and
// admin users.
func (s *InnovationService) List(ctx context.Context, actor models.Actor, filter models.InnovationFilter) ([]models.InnovationListItem, int, error) {
	filter.Normalize()

	var (
		items []models.InnovationListItem
		total int
		err   error
	)
	switch actor.Type {
	case models.UserTypeInnovator:
		items, total, err = s.innovations.ListByOwner(ctx, actor.ID, filter.ListOptions)
	case models.UserTypeAccessor:
		if actor.Organisation == nil {
			return nil, 0, appErrors.ErrMissingOrganisation
		}
		items, total, err = s.innovations.ListSharedWithOrganisation(ctx, actor.Organisation.OrganisationID, filter)
	case models.UserTypeAssessment, models.UserTypeAdmin:
		items, total, err = s.innovations.ListAll(ctx, filter)
	default:
		return nil, 0, appErrors.ErrInvalidUserType
	}
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list innovations")
	}
	return items, total, nil
}

// SubmitForAssessment moves a CREATED innovation into the assessment queue.
func (s *InnovationService) SubmitForAssessment(ctx context.Context, actor models.Actor, innovationID string) error {
	if actor.Type != models.UserTypeInnovator {
		return appErrors.ErrInvalidUserType
	}
	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return err
	}
	if innovation.Status != models.InnovationStatusCreated {
		return appErrors.Clone(appErrors.ErrConflict, "innovation already submitted")
	}
	if err := s.innovations.UpdateStatus(ctx, innovation.ID, models.InnovationStatusWaitingNeedsAssessment, actor.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit innovation")
	}

	if s.notifications != nil {
		notifyErr := s.notifications.Create(ctx, actor, models.AudienceAssessmentUsers, innovation.ID,
			models.NotificationContextInnovation, innovation.ID, "innovation submitted for assessment", nil)
		if notifyErr != nil {
			s.logger.Warn("submission notification failed",
				zap.String("innovation_id", innovation.ID), zap.Error(notifyErr))
		}
	}
	return nil
}

// GetShares returns the organisation ids the innovation is shared with.
func (s *InnovationService) GetShares(ctx context.Context, actor models.Actor, innovationID string) ([]string, error) {
	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}
	shares, err := s.innovations.GetShareOrganisationIDs(ctx, innovation.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shares")
	}
	return shares, nil
}

// UpdateShares replaces the sharing set. Newly added organisations receive a
// data sharing notification after the change lands.
func (s *InnovationService) UpdateShares(ctx context.Context, actor models.Actor, innovationID string, req models.UpdateSharesRequest) error {
	if actor.Type != models.UserTypeInnovator {
		return appErrors.ErrInvalidUserType
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shares payload")
	}

	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return err
	}
	added, err := s.innovations.ReplaceShares(ctx, innovation.ID, dedupeStrings(req.Organisations))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update shares")
	}

	if len(added) > 0 && s.notifications != nil {
		notifyErr := s.notifications.Create(ctx, actor, models.AudienceQualifyingAccessors, innovation.ID,
			models.NotificationContextDataSharing, innovation.ID, "innovation shared with your organisation", nil)
		if notifyErr != nil {
			s.logger.Warn("data sharing notification failed",
				zap.String("innovation_id", innovation.ID), zap.Error(notifyErr))
		}
	}
	return nil
}

// Archive withdraws the innovation from the platform.
func (s *InnovationService) Archive(ctx context.Context, actor models.Actor, innovationID string) error {
	if actor.Type != models.UserTypeInnovator {
		return appErrors.ErrInvalidUserType
	}
	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return err
	}
	if err := s.innovations.Archive(ctx, innovation.ID, actor.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive innovation")
	}
	return nil
}
