package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
)

type sectionRepo interface {
	FindByKey(ctx context.Context, innovationID string, key models.SectionKey) (*models.Section, error)
	ListByInnovation(ctx context.Context, innovationID string) ([]models.Section, error)
	SaveDraft(ctx context.Context, section *models.Section) error
	SubmitBatch(ctx context.Context, innovationID string, keys []models.SectionKey, actorID string) ([]models.SectionKey, error)
	CountOpenActions(ctx context.Context, innovationID string) (map[string]int, error)
}

type sectionActionReader interface {
	ListOpenBySection(ctx context.Context, sectionID string) ([]models.Action, error)
}

// SectionService manages the innovation record sections.
type SectionService struct {
	sections    sectionRepo
	actions     sectionActionReader
	innovations innovationReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSectionService creates a new section service.
func NewSectionService(sections sectionRepo, actions sectionActionReader, innovations innovationReader, logger *zap.Logger) *SectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionService{
		sections:    sections,
		actions:     actions,
		innovations: innovations,
		validator:   validator.New(),
		logger:      logger,
	}
}

// Save stores draft answers for one section. Only the record owner writes
// sections; the row is created lazily on first save.
func (s *SectionService) Save(ctx context.Context, actor models.Actor, innovationID string, key models.SectionKey, req models.SaveSectionRequest) (*models.Section, error) {
	if actor.Type != models.UserTypeInnovator {
		return nil, appErrors.ErrInvalidUserType
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	if !models.ValidSectionKey(key) {
		return nil, appErrors.Clone(appErrors.ErrSectionNotFound, fmt.Sprintf("unknown section %q", key))
	}

	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(req.Data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidData.Code, appErrors.ErrInvalidData.Status, "failed to encode section data")
	}

	section := &models.Section{
		InnovationID: innovation.ID,
		Key:          key,
		Status:       models.SectionStatusDraft,
		Data:         data,
		CreatedBy:    &actor.ID,
		UpdatedBy:    &actor.ID,
	}
	if err := s.sections.SaveDraft(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save section")
	}
	return section, nil
}

// Submit marks a batch of sections as SUBMITTED in one transaction. Every
// key is validated first so an unknown key rejects the whole batch with no
// sections touched. Open actions on the flipped sections close with them.
// Returns the keys this call actually submitted; resubmitting an already
// submitted section is a no-op.
func (s *SectionService) Submit(ctx context.Context, actor models.Actor, innovationID string, req models.SubmitSectionsRequest) ([]models.SectionKey, error) {
	if actor.Type != models.UserTypeInnovator {
		return nil, appErrors.ErrInvalidUserType
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submit payload")
	}
	for _, key := range req.Sections {
		if !models.ValidSectionKey(key) {
			return nil, appErrors.Clone(appErrors.ErrSectionNotFound, fmt.Sprintf("unknown section %q", key))
		}
	}

	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}
	submitted, err := s.sections.SubmitBatch(ctx, innovation.ID, req.Sections, actor.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit sections")
	}
	if submitted == nil {
		submitted = []models.SectionKey{}
	}
	return submitted, nil
}

// FindAll returns one summary row per catalogue entry in catalogue order.
// Sections never touched report NOT_STARTED.
func (s *SectionService) FindAll(ctx context.Context, actor models.Actor, innovationID string) ([]models.SectionSummary, error) {
	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}

	sections, err := s.sections.ListByInnovation(ctx, innovation.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	counts, err := s.sections.CountOpenActions(ctx, innovation.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count section actions")
	}

	byKey := make(map[models.SectionKey]models.Section, len(sections))
	for _, section := range sections {
		byKey[section.Key] = section
	}

	catalogue := models.SectionCatalogue()
	summaries := make([]models.SectionSummary, 0, len(catalogue))
	for _, key := range catalogue {
		summary := models.SectionSummary{Key: key, Status: models.SectionStatusNotStarted}
		if section, ok := byKey[key]; ok {
			summary.Status = section.Status
			summary.ActionCount = counts[section.ID]
			summary.SubmittedAt = section.SubmittedAt
			updatedAt := section.UpdatedAt
			summary.UpdatedAt = &updatedAt
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Find returns one section with its open actions. A catalogue key that has
// never been saved yields an empty NOT_STARTED section.
func (s *SectionService) Find(ctx context.Context, actor models.Actor, innovationID string, key models.SectionKey) (*models.SectionDetail, error) {
	if !models.ValidSectionKey(key) {
		return nil, appErrors.Clone(appErrors.ErrSectionNotFound, fmt.Sprintf("unknown section %q", key))
	}
	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}

	section, err := s.sections.FindByKey(ctx, innovation.ID, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return &models.SectionDetail{Section: models.Section{
				InnovationID: innovation.ID,
				Key:          key,
				Status:       models.SectionStatusNotStarted,
			}}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	actions, err := s.actions.ListOpenBySection(ctx, section.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list section actions")
	}
	return &models.SectionDetail{Section: *section, Actions: actions}, nil
}
