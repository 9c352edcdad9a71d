package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	"github.com/noah-isme/innovation-hub-api/pkg/config"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
	"github.com/noah-isme/innovation-hub-api/pkg/storage"
)

type fileRepo interface {
	CreateFile(ctx context.Context, file *models.InnovationFile) error
	FindFile(ctx context.Context, fileID, innovationID string) (*models.InnovationFile, error)
}

// FileService handles evidence file uploads and signed downloads.
type FileService struct {
	files       fileRepo
	innovations innovationReader
	store       *storage.LocalStorage
	signer      *storage.SignedURLSigner
	maxSize     int64
	allowed     map[string]struct{}
	logger      *zap.Logger
}

// NewFileService creates a new file service.
func NewFileService(files fileRepo, innovations innovationReader, store *storage.LocalStorage, signer *storage.SignedURLSigner, cfg config.EvidenceConfig, logger *zap.Logger) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mime := range cfg.AllowedMIMEs {
		allowed[mime] = struct{}{}
	}
	return &FileService{
		files:       files,
		innovations: innovations,
		store:       store,
		signer:      signer,
		maxSize:     cfg.MaxFileSizeBytes,
		allowed:     allowed,
		logger:      logger,
	}
}

// Upload stores one file for the innovation and returns its metadata with a
// signed download URL. Owner only; size and MIME type are validated before
// anything is written.
func (s *FileService) Upload(ctx context.Context, actor models.Actor, innovationID, displayName, mimeType string, size int64, r io.Reader) (*models.FileUploadResponse, error) {
	if actor.Type != models.UserTypeInnovator {
		return nil, appErrors.ErrInvalidUserType
	}
	if displayName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file name is required")
	}
	if s.maxSize > 0 && size > s.maxSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds the %d byte limit", s.maxSize))
	}
	if len(s.allowed) > 0 {
		if _, ok := s.allowed[mimeType]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file type %q is not accepted", mimeType))
		}
	}

	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}

	file := &models.InnovationFile{
		ID:           uuid.NewString(),
		InnovationID: innovation.ID,
		DisplayName:  displayName,
		MimeType:     mimeType,
		SizeBytes:    size,
	}
	file.StoragePath = path.Join("innovations", innovation.ID, file.ID+path.Ext(displayName))

	limited := io.Reader(r)
	if s.maxSize > 0 {
		limited = io.LimitReader(r, s.maxSize+1)
	}
	if _, err := s.store.SaveStream(file.StoragePath, limited); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}

	if err := s.files.CreateFile(ctx, file); err != nil {
		if cleanupErr := s.store.Delete(file.StoragePath); cleanupErr != nil {
			s.logger.Warn("orphaned upload cleanup failed",
				zap.String("file_id", file.ID), zap.Error(cleanupErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register file")
	}

	url, _, err := s.signer.Generate(file.ID, file.StoragePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign file url")
	}
	file.URL = url
	return &models.FileUploadResponse{File: *file, URL: url}, nil
}

// Download validates a signed token and opens the stored file.
func (s *FileService) Download(ctx context.Context, actor models.Actor, innovationID, token string) (*models.InnovationFile, *os.File, error) {
	fileID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}

	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, nil, err
	}

	file, err := s.files.FindFile(ctx, fileID, innovation.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load file")
	}
	if file.StoragePath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}

	handle, err := s.store.Open(file.StoragePath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	return file, handle, nil
}
