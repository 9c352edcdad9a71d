package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
)

type actionRepo interface {
	CountBySection(ctx context.Context, sectionID string) (int, error)
	Create(ctx context.Context, action *models.Action) error
	FindByID(ctx context.Context, actionID, innovationID string) (*models.Action, error)
	SupportUnitID(ctx context.Context, actionID string) (string, error)
	UpdateStatusWithComment(ctx context.Context, action *models.Action, comment *models.Comment) error
	ListByInnovation(ctx context.Context, innovationID string) ([]models.Action, error)
	ListByCreator(ctx context.Context, creatorID string, filter models.ActionFilter) ([]models.ActionListItem, int, error)
}

type actionSectionRepo interface {
	FindByKey(ctx context.Context, innovationID string, key models.SectionKey) (*models.Section, error)
	Create(ctx context.Context, section *models.Section) error
}

type actionSupportReader interface {
	FindByInnovationAndUnit(ctx context.Context, innovationID, unitID string) (*models.Support, error)
	FindByID(ctx context.Context, supportID string) (*models.Support, error)
}

type actionOrganisationReader interface {
	FindUnit(ctx context.Context, unitID string) (*models.OrganisationUnit, error)
	ListOrganisationsByIDs(ctx context.Context, ids []string) ([]models.Organisation, error)
}

type actionUserReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

type notifier interface {
	Create(ctx context.Context, actor models.Actor, audience models.NotificationAudience, innovationID string, contextType models.NotificationContextType, contextID, message string, explicitTargets []string) error
}

// ActionService handles accessor requests for additional section information.
type ActionService struct {
	actions       actionRepo
	sections      actionSectionRepo
	supports      actionSupportReader
	organisations actionOrganisationReader
	users         actionUserReader
	profiles      profileResolver
	innovations   innovationReader
	notifications notifier
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewActionService creates a new action service.
func NewActionService(actions actionRepo, sections actionSectionRepo, supports actionSupportReader, organisations actionOrganisationReader, users actionUserReader, profiles profileResolver, innovations innovationReader, notifications notifier, logger *zap.Logger) *ActionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActionService{
		actions:       actions,
		sections:      sections,
		supports:      supports,
		organisations: organisations,
		users:         users,
		profiles:      profiles,
		innovations:   innovations,
		notifications: notifications,
		validator:     validator.New(),
		logger:        logger,
	}
}

// Create opens an action against a section. The actor's unit must hold a
// support record on the innovation; the display id is derived from the
// section alias and the count of actions ever raised against that section.
func (s *ActionService) Create(ctx context.Context, actor models.Actor, innovationID string, req models.CreateActionRequest) (*models.Action, error) {
	if err := ensureAccessorContext(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid action payload")
	}
	if !models.ValidSectionKey(req.Section) {
		return nil, appErrors.Clone(appErrors.ErrSectionNotFound, fmt.Sprintf("unknown section %q", req.Section))
	}

	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}

	section, err := s.sections.FindByKey(ctx, innovation.ID, req.Section)
	if err != nil {
		if err != sql.ErrNoRows {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
		}
		section = &models.Section{
			ID:           uuid.NewString(),
			InnovationID: innovation.ID,
			Key:          req.Section,
			Status:       models.SectionStatusNotStarted,
			CreatedBy:    &actor.ID,
			UpdatedBy:    &actor.ID,
		}
		if err := s.sections.Create(ctx, section); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create section")
		}
	}

	support, err := s.supports.FindByInnovationAndUnit(ctx, innovation.ID, actor.Organisation.UnitID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrSupportNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load support")
	}

	count, err := s.actions.CountBySection(ctx, section.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count actions")
	}

	action := &models.Action{
		DisplayID:   fmt.Sprintf("%s%02d", models.SectionAlias(req.Section), count+1),
		SectionID:   section.ID,
		SupportID:   &support.ID,
		Status:      models.ActionStatusRequested,
		Description: req.Description,
		CreatedBy:   &actor.ID,
		UpdatedBy:   &actor.ID,
	}
	if err := s.actions.Create(ctx, action); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create action")
	}
	action.SectionKey = &section.Key
	action.InnovationID = &innovation.ID

	s.notifyOwner(ctx, actor, innovation, action, "action requested")

	return action, nil
}

// UpdateByAccessor transitions an action on behalf of the requesting unit.
// The actor must belong to the unit that raised the action.
func (s *ActionService) UpdateByAccessor(ctx context.Context, actor models.Actor, innovationID, actionID string, req models.UpdateActionRequest) (*models.Action, error) {
	if err := ensureAccessorContext(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid action payload")
	}

	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}
	action, err := s.findAction(ctx, actionID, innovation.ID)
	if err != nil {
		return nil, err
	}

	unitID, err := s.actions.SupportUnitID(ctx, action.ID)
	if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load action unit")
	}
	if unitID != actor.Organisation.UnitID {
		return nil, appErrors.Clone(appErrors.ErrInvalidData, "action belongs to another organisation unit")
	}

	return s.applyUpdate(ctx, actor, innovation, action, req)
}

// UpdateByInnovator lets the record owner respond to an action, typically
// moving it to STARTED, CONTINUE or IN_REVIEW with a comment.
func (s *ActionService) UpdateByInnovator(ctx context.Context, actor models.Actor, innovationID, actionID string, req models.UpdateActionRequest) (*models.Action, error) {
	if actor.Type != models.UserTypeInnovator {
		return nil, appErrors.ErrInvalidUserType
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid action payload")
	}

	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}
	action, err := s.findAction(ctx, actionID, innovation.ID)
	if err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, actor, innovation, action, req)
}

func (s *ActionService) applyUpdate(ctx context.Context, actor models.Actor, innovation *models.Innovation, action *models.Action, req models.UpdateActionRequest) (*models.Action, error) {
	action.Status = req.Status
	action.UpdatedBy = &actor.ID

	var comment *models.Comment
	if req.Comment != "" {
		comment = &models.Comment{
			InnovationID: *action.InnovationID,
			UserID:       actor.ID,
			ActionID:     &action.ID,
			Message:      req.Comment,
			CreatedBy:    &actor.ID,
		}
		if actor.Organisation != nil {
			comment.OrganisationUnitID = &actor.Organisation.UnitID
		}
	}

	if err := s.actions.UpdateStatusWithComment(ctx, action, comment); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "action not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update action")
	}

	s.notifyOnUpdate(ctx, actor, innovation, action)

	return action, nil
}

// Find returns the denormalized detail view of one action.
func (s *ActionService) Find(ctx context.Context, actor models.Actor, innovationID, actionID string) (*models.ActionDetail, error) {
	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}
	action, err := s.findAction(ctx, actionID, innovation.ID)
	if err != nil {
		return nil, err
	}

	detail := &models.ActionDetail{
		ID:          action.ID,
		DisplayID:   action.DisplayID,
		Status:      action.Status,
		Description: action.Description,
		CreatedAt:   action.CreatedAt,
	}
	if action.SectionKey != nil {
		detail.Section = *action.SectionKey
	}

	if action.CreatedBy != nil {
		if name, err := s.resolveUserName(ctx, *action.CreatedBy); err != nil {
			s.logger.Warn("action creator lookup failed", zap.String("action_id", action.ID), zap.Error(err))
		} else {
			detail.CreatedByName = name
		}
	}

	if action.SupportID != nil {
		if err := s.attachUnitNames(ctx, *action.SupportID, detail); err != nil {
			s.logger.Warn("action unit lookup failed", zap.String("action_id", action.ID), zap.Error(err))
		}
	}

	return detail, nil
}

// ListByInnovation returns all actions on an innovation visible to the actor.
func (s *ActionService) ListByInnovation(ctx context.Context, actor models.Actor, innovationID string) ([]models.Action, error) {
	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}
	actions, err := s.actions.ListByInnovation(ctx, innovation.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list actions")
	}
	return actions, nil
}

// ListByCreator returns the actor's action worklist across innovations.
func (s *ActionService) ListByCreator(ctx context.Context, actor models.Actor, filter models.ActionFilter) ([]models.ActionListItem, int, error) {
	if err := ensureAccessorContext(actor); err != nil {
		return nil, 0, err
	}
	filter.Normalize()
	items, total, err := s.actions.ListByCreator(ctx, actor.ID, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list actions")
	}
	return items, total, nil
}

func (s *ActionService) findAction(ctx context.Context, actionID, innovationID string) (*models.Action, error) {
	action, err := s.actions.FindByID(ctx, actionID, innovationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "action not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load action")
	}
	return action, nil
}

func (s *ActionService) resolveUserName(ctx context.Context, userID string) (string, error) {
	users, err := s.users.ListByIDs(ctx, []string{userID})
	if err != nil {
		return "", fmt.Errorf("load user %s: %w", userID, err)
	}
	if len(users) == 0 {
		return "", fmt.Errorf("user %s not found", userID)
	}
	profiles, err := s.profiles.ListProfiles(ctx, []string{users[0].ExternalID})
	if err != nil {
		return "", err
	}
	if profile, ok := profiles[users[0].ExternalID]; ok {
		return profile.DisplayName, nil
	}
	return "", nil
}

func (s *ActionService) attachUnitNames(ctx context.Context, supportID string, detail *models.ActionDetail) error {
	support, err := s.supports.FindByID(ctx, supportID)
	if err != nil {
		return err
	}
	unit, err := s.organisations.FindUnit(ctx, support.OrganisationUnitID)
	if err != nil {
		return err
	}
	detail.UnitName = unit.Name
	orgs, err := s.organisations.ListOrganisationsByIDs(ctx, []string{unit.OrganisationID})
	if err != nil {
		return err
	}
	if len(orgs) > 0 {
		detail.OrganisationName = orgs[0].Name
	}
	return nil
}

// Status change and creation telemetry fan-out. Failures never block the
// operation that triggered them.
func (s *ActionService) notifyOwner(ctx context.Context, actor models.Actor, innovation *models.Innovation, action *models.Action, message string) {
	if s.notifications == nil {
		return
	}
	err := s.notifications.Create(ctx, actor, models.AudienceInnovators, innovation.ID,
		models.NotificationContextAction, action.ID, message, nil)
	if err != nil {
		s.logger.Warn("action notification failed",
			zap.String("action_id", action.ID), zap.Error(err))
	}
}

func (s *ActionService) notifyOnUpdate(ctx context.Context, actor models.Actor, innovation *models.Innovation, action *models.Action) {
	if s.notifications == nil {
		return
	}
	audience := models.AudienceInnovators
	var targets []string
	if actor.Type == models.UserTypeInnovator {
		audience = models.AudienceAccessors
		if action.CreatedBy != nil {
			targets = []string{*action.CreatedBy}
		}
	}
	err := s.notifications.Create(ctx, actor, audience, innovation.ID,
		models.NotificationContextAction, action.ID, fmt.Sprintf("action %s", action.Status), targets)
	if err != nil {
		s.logger.Warn("action notification failed",
			zap.String("action_id", action.ID), zap.Error(err))
	}
}
