package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
)

type supportRepo interface {
	FindByInnovationAndUnit(ctx context.Context, innovationID, unitID string) (*models.Support, error)
	FindByID(ctx context.Context, supportID string) (*models.Support, error)
	ListByInnovation(ctx context.Context, innovationID string) ([]models.Support, error)
	Create(ctx context.Context, support *models.Support) error
	UpdateStatus(ctx context.Context, support *models.Support) error
}

type supportCommentWriter interface {
	Create(ctx context.Context, comment *models.Comment) error
}

// SupportService manages organisation unit support positions on innovations.
type SupportService struct {
	supports      supportRepo
	comments      supportCommentWriter
	innovations   innovationReader
	notifications notifier
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewSupportService creates a new support service.
func NewSupportService(supports supportRepo, comments supportCommentWriter, innovations innovationReader, notifications notifier, logger *zap.Logger) *SupportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupportService{
		supports:      supports,
		comments:      comments,
		innovations:   innovations,
		notifications: notifications,
		validator:     validator.New(),
		logger:        logger,
	}
}

// Save creates or restates the acting unit's support position. Only
// qualifying accessors change support status. Each unit holds at most one
// support record per innovation, so an existing record is updated in place.
func (s *SupportService) Save(ctx context.Context, actor models.Actor, innovationID string, req models.CreateSupportRequest) (*models.Support, error) {
	if err := ensureAccessorContext(actor); err != nil {
		return nil, err
	}
	if actor.Organisation.Role != models.RoleQualifyingAccessor {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only qualifying accessors manage support status")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid support payload")
	}

	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}

	support, err := s.supports.FindByInnovationAndUnit(ctx, innovation.ID, actor.Organisation.UnitID)
	switch {
	case err == sql.ErrNoRows:
		support = &models.Support{
			InnovationID:       innovation.ID,
			OrganisationUnitID: actor.Organisation.UnitID,
			Status:             req.Status,
			AccessorIDs:        dedupeStrings(req.Accessors),
			CreatedBy:          &actor.ID,
			UpdatedBy:          &actor.ID,
		}
		if err := s.supports.Create(ctx, support); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create support")
		}
	case err != nil:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load support")
	default:
		support.Status = req.Status
		support.AccessorIDs = dedupeStrings(req.Accessors)
		support.UpdatedBy = &actor.ID
		if err := s.supports.UpdateStatus(ctx, support); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "support not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update support")
		}
	}

	if req.Comment != "" {
		comment := &models.Comment{
			InnovationID:       innovation.ID,
			UserID:             actor.ID,
			Message:            req.Comment,
			OrganisationUnitID: &actor.Organisation.UnitID,
			CreatedBy:          &actor.ID,
		}
		if err := s.comments.Create(ctx, comment); err != nil {
			s.logger.Warn("support comment failed",
				zap.String("support_id", support.ID), zap.Error(err))
		}
	}

	s.notifyStatusChange(ctx, actor, innovation, support)

	return support, nil
}

// Find returns one support record.
func (s *SupportService) Find(ctx context.Context, actor models.Actor, innovationID, supportID string) (*models.Support, error) {
	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}
	support, err := s.supports.FindByID(ctx, supportID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "support not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load support")
	}
	if support.InnovationID != innovation.ID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "support not found")
	}
	return support, nil
}

// ListByInnovation returns the support positions of every unit on an innovation.
func (s *SupportService) ListByInnovation(ctx context.Context, actor models.Actor, innovationID string) ([]models.Support, error) {
	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}
	supports, err := s.supports.ListByInnovation(ctx, innovation.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list supports")
	}
	return supports, nil
}

// Status change fan-out: the owner always hears about the change, assigned
// accessors are addressed directly when the unit starts engaging.
func (s *SupportService) notifyStatusChange(ctx context.Context, actor models.Actor, innovation *models.Innovation, support *models.Support) {
	if s.notifications == nil {
		return
	}
	err := s.notifications.Create(ctx, actor, models.AudienceInnovators, innovation.ID,
		models.NotificationContextInnovation, support.ID, "support status updated", nil)
	if err != nil {
		s.logger.Warn("support notification failed",
			zap.String("support_id", support.ID), zap.Error(err))
	}

	if support.Status == models.SupportStatusEngaging && len(support.AccessorIDs) > 0 {
		err := s.notifications.Create(ctx, actor, models.AudienceAccessors, innovation.ID,
			models.NotificationContextInnovation, support.ID, "you have been assigned to an innovation", support.AccessorIDs)
		if err != nil {
			s.logger.Warn("accessor assignment notification failed",
				zap.String("support_id", support.ID), zap.Error(err))
		}
	}
}
