package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
	"github.com/noah-isme/innovation-hub-api/pkg/storage"
)

type evidenceRepo interface {
	FindByID(ctx context.Context, evidenceID, innovationID string) (*models.Evidence, error)
	ListByInnovation(ctx context.Context, innovationID string) ([]models.Evidence, error)
	Save(ctx context.Context, evidence *models.Evidence, fileIDs []string, sectionKey models.SectionKey) error
	Delete(ctx context.Context, evidenceID, innovationID, actorID string, sectionKey models.SectionKey) error
	FindFile(ctx context.Context, fileID, innovationID string) (*models.InnovationFile, error)
	ListFilesByEvidence(ctx context.Context, evidenceIDs []string) (map[string][]models.InnovationFile, error)
}

// EvidenceService manages evidence items of the evidence-of-effectiveness
// section. Any evidence mutation moves that section back to DRAFT.
type EvidenceService struct {
	evidence    evidenceRepo
	innovations innovationReader
	signer      *storage.SignedURLSigner
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEvidenceService creates a new evidence service.
func NewEvidenceService(evidence evidenceRepo, innovations innovationReader, signer *storage.SignedURLSigner, logger *zap.Logger) *EvidenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvidenceService{
		evidence:    evidence,
		innovations: innovations,
		signer:      signer,
		validator:   validator.New(),
		logger:      logger,
	}
}

// Save creates or updates an evidence item and relinks its files. Owner only.
func (s *EvidenceService) Save(ctx context.Context, actor models.Actor, innovationID, evidenceID string, req models.SaveEvidenceRequest) (*models.Evidence, error) {
	if actor.Type != models.UserTypeInnovator {
		return nil, appErrors.ErrInvalidUserType
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evidence payload")
	}

	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}

	evidence := &models.Evidence{
		ID:           evidenceID,
		InnovationID: innovation.ID,
		Type:         req.Type,
		Summary:      req.Summary,
		CreatedBy:    &actor.ID,
		UpdatedBy:    &actor.ID,
	}
	if req.Description != "" {
		evidence.Description = &req.Description
	}

	if err := s.evidence.Save(ctx, evidence, dedupeStrings(req.Files), models.SectionEvidenceOfEffectiveness); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save evidence")
	}
	return evidence, nil
}

// Find returns one evidence item with its files and signed download URLs.
func (s *EvidenceService) Find(ctx context.Context, actor models.Actor, innovationID, evidenceID string) (*models.Evidence, error) {
	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}
	evidence, err := s.evidence.FindByID(ctx, evidenceID, innovation.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evidence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evidence")
	}
	s.attachFiles(ctx, []*models.Evidence{evidence})
	return evidence, nil
}

// ListByInnovation returns every evidence item on an innovation.
func (s *EvidenceService) ListByInnovation(ctx context.Context, actor models.Actor, innovationID string) ([]models.Evidence, error) {
	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}
	items, err := s.evidence.ListByInnovation(ctx, innovation.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evidence")
	}
	refs := make([]*models.Evidence, len(items))
	for i := range items {
		refs[i] = &items[i]
	}
	s.attachFiles(ctx, refs)
	return items, nil
}

// Delete soft-deletes an evidence item and its files. Owner only.
func (s *EvidenceService) Delete(ctx context.Context, actor models.Actor, innovationID, evidenceID string) error {
	if actor.Type != models.UserTypeInnovator {
		return appErrors.ErrInvalidUserType
	}
	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return err
	}
	if err := s.evidence.Delete(ctx, evidenceID, innovation.ID, actor.ID, models.SectionEvidenceOfEffectiveness); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "evidence not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete evidence")
	}
	return nil
}

func (s *EvidenceService) attachFiles(ctx context.Context, items []*models.Evidence) {
	if len(items) == 0 {
		return
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	filesByEvidence, err := s.evidence.ListFilesByEvidence(ctx, ids)
	if err != nil {
		s.logger.Warn("evidence file lookup failed", zap.Error(err))
		return
	}
	for _, item := range items {
		files := filesByEvidence[item.ID]
		for i := range files {
			if s.signer == nil {
				continue
			}
			url, _, err := s.signer.Generate(files[i].ID, files[i].StoragePath)
			if err != nil {
				s.logger.Warn("file url signing failed",
					zap.String("file_id", files[i].ID), zap.Error(err))
				continue
			}
			files[i].URL = url
		}
		item.Files = files
	}
}
