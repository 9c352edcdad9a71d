package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/innovation-hub-api/internal/directory"
	"github.com/noah-isme/innovation-hub-api/internal/models"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
)

type transferRepo interface {
	FindPendingByInnovation(ctx context.Context, innovationID string, expiryWindow time.Duration) (*models.Transfer, error)
	FindByID(ctx context.Context, id string) (*models.Transfer, error)
	Create(ctx context.Context, transfer *models.Transfer) error
	Resolve(ctx context.Context, transfer *models.Transfer, newOwnerID string) error
	ListPendingByEmail(ctx context.Context, email string, expiryWindow time.Duration) ([]models.Transfer, error)
	ListByCreator(ctx context.Context, userID string) ([]models.Transfer, error)
	ExpireOlderThan(ctx context.Context, expiryWindow time.Duration) (int64, error)
}

type transferUserReader interface {
	FindByExternalID(ctx context.Context, externalID string) (*models.User, error)
}

type transferEmailSender interface {
	SendEmail(ctx context.Context, template models.EmailTemplate, recipientIDs []string, params map[string]string) error
	SendEmailToAddresses(ctx context.Context, template models.EmailTemplate, addresses []string, params map[string]string) error
}

type transferDirectory interface {
	GetProfile(ctx context.Context, externalID string) (*directory.Profile, error)
	GetByEmail(ctx context.Context, email string) (*directory.Profile, error)
}

// TransferService runs innovation ownership transfers.
type TransferService struct {
	transfers    transferRepo
	users        transferUserReader
	directory    transferDirectory
	innovations  innovationReader
	emails       transferEmailSender
	expiryWindow time.Duration
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewTransferService creates a new transfer service.
func NewTransferService(transfers transferRepo, users transferUserReader, dir transferDirectory, innovations innovationReader, emails transferEmailSender, expiryWindow time.Duration, logger *zap.Logger) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{
		transfers:    transfers,
		users:        users,
		directory:    dir,
		innovations:  innovations,
		emails:       emails,
		expiryWindow: expiryWindow,
		validator:    validator.New(),
		logger:       logger,
	}
}

// Create invites an email address to take over an innovation. At most one
// transfer per innovation is pending at a time.
func (s *TransferService) Create(ctx context.Context, actor models.Actor, innovationID string, req models.CreateTransferRequest) (*models.Transfer, error) {
	if actor.Type != models.UserTypeInnovator {
		return nil, appErrors.ErrInvalidUserType
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transfer payload")
	}

	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}

	_, err = s.transfers.FindPendingByInnovation(ctx, innovation.ID, s.expiryWindow)
	if err == nil {
		return nil, appErrors.ErrTransferExists
	}
	if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending transfers")
	}

	transfer := &models.Transfer{
		InnovationID: innovation.ID,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Status:       models.TransferStatusPending,
		CreatedBy:    actor.ID,
	}
	if err := s.transfers.Create(ctx, transfer); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create transfer")
	}

	s.sendInvite(ctx, innovation, transfer)

	return transfer, nil
}

// UpdateStatus resolves a pending transfer. The creator may cancel it; only
// the invited user may decline or complete it. Completing flips ownership in
// the same transaction.
func (s *TransferService) UpdateStatus(ctx context.Context, actor models.Actor, transferID string, req models.UpdateTransferRequest) (*models.Transfer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transfer payload")
	}

	transfer, err := s.transfers.FindByID(ctx, transferID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "transfer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transfer")
	}
	if transfer.Status != models.TransferStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "transfer already resolved")
	}
	if time.Since(transfer.CreatedAt) > s.expiryWindow {
		return nil, appErrors.ErrTransferExpired
	}

	var newOwnerID string
	switch req.Status {
	case models.TransferStatusCanceled:
		if transfer.CreatedBy != actor.ID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only the transfer creator cancels it")
		}
	case models.TransferStatusDeclined, models.TransferStatusCompleted:
		if err := s.ensureInvited(ctx, actor, transfer); err != nil {
			return nil, err
		}
		if req.Status == models.TransferStatusCompleted {
			newOwnerID = actor.ID
		}
	}

	transfer.Status = req.Status
	transfer.UpdatedBy = &actor.ID
	if err := s.transfers.Resolve(ctx, transfer, newOwnerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrConflict, "transfer already resolved")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve transfer")
	}
	return transfer, nil
}

// CheckPending reports the transfers pending for an email address. Used
// during first sign-in to route invited users into onboarding.
func (s *TransferService) CheckPending(ctx context.Context, email string) ([]models.Transfer, error) {
	transfers, err := s.transfers.ListPendingByEmail(ctx, strings.ToLower(strings.TrimSpace(email)), s.expiryWindow)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending transfers")
	}
	return transfers, nil
}

// ListByCreator returns the transfers the actor has initiated.
func (s *TransferService) ListByCreator(ctx context.Context, actor models.Actor) ([]models.Transfer, error) {
	transfers, err := s.transfers.ListByCreator(ctx, actor.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list transfers")
	}
	return transfers, nil
}

// ExpireStale marks pending transfers older than the expiry window as
// EXPIRED. Run periodically from the background sweeper.
func (s *TransferService) ExpireStale(ctx context.Context) error {
	expired, err := s.transfers.ExpireOlderThan(ctx, s.expiryWindow)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to expire transfers")
	}
	if expired > 0 {
		s.logger.Info("expired stale transfers", zap.Int64("count", expired))
	}
	return nil
}

// RunExpirySweeper expires stale transfers on the given interval until the
// context is cancelled.
func (s *TransferService) RunExpirySweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.ExpireStale(ctx); err != nil {
				s.logger.Error("transfer expiry sweep failed", zap.Error(err))
			}
		}
	}
}

func (s *TransferService) ensureInvited(ctx context.Context, actor models.Actor, transfer *models.Transfer) error {
	profile, err := s.directory.GetProfile(ctx, actor.ExternalID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve actor profile")
	}
	if profile == nil || !strings.EqualFold(profile.Email, transfer.Email) {
		return appErrors.Clone(appErrors.ErrForbidden, "only the invited user resolves the transfer")
	}
	return nil
}

// Invite email dispatch. The template depends on whether the invited email
// already belongs to a platform account. Failures never block the transfer.
func (s *TransferService) sendInvite(ctx context.Context, innovation *models.Innovation, transfer *models.Transfer) {
	if s.emails == nil {
		return
	}

	template := models.EmailTransferOwnershipNewUser
	var recipientIDs []string
	profile, err := s.directory.GetByEmail(ctx, transfer.Email)
	if err != nil {
		s.logger.Warn("transfer invite lookup failed",
			zap.String("transfer_id", transfer.ID), zap.Error(err))
	}
	if profile != nil {
		if user, err := s.users.FindByExternalID(ctx, profile.ID); err == nil {
			template = models.EmailTransferOwnershipExistingUser
			recipientIDs = []string{user.ID}
		} else if err != sql.ErrNoRows {
			s.logger.Warn("transfer invite user lookup failed",
				zap.String("transfer_id", transfer.ID), zap.Error(err))
		}
	}

	params := map[string]string{
		"innovation_name": innovation.Name,
		"email":           transfer.Email,
		"transfer_id":     transfer.ID,
	}
	if template == models.EmailTransferOwnershipNewUser {
		err = s.emails.SendEmailToAddresses(ctx, template, []string{transfer.Email}, params)
	} else {
		err = s.emails.SendEmail(ctx, template, recipientIDs, params)
	}
	if err != nil {
		s.logger.Warn("transfer invite email failed",
			zap.String("transfer_id", transfer.ID), zap.Error(err))
	}
}
