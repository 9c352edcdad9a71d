package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/innovation-hub-api/internal/directory"
	"github.com/noah-isme/innovation-hub-api/internal/models"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
)

type userRepo interface {
	FindByExternalID(ctx context.Context, externalID string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	CreateWithMembership(ctx context.Context, user *models.User, membership *models.OrganisationMembership) error
}

type membershipReader interface {
	FindMembership(ctx context.Context, userID string) (*models.OrganisationMembership, error)
}

type userDirectory interface {
	GetProfile(ctx context.Context, externalID string) (*directory.Profile, error)
	GetByEmail(ctx context.Context, email string) (*directory.Profile, error)
	CreateUser(ctx context.Context, input directory.CreateUserInput) (*directory.Profile, error)
	UpdateUser(ctx context.Context, externalID string, input directory.UpdateUserInput) error
}

type pendingTransferCounter interface {
	CheckPending(ctx context.Context, email string) ([]models.Transfer, error)
}

// UserService manages platform users and their directory identities.
type UserService struct {
	users       userRepo
	memberships membershipReader
	directory   userDirectory
	transfers   pendingTransferCounter
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewUserService creates a new user service.
func NewUserService(users userRepo, memberships membershipReader, dir userDirectory, transfers pendingTransferCounter, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:       users,
		memberships: memberships,
		directory:   dir,
		transfers:   transfers,
		validator:   validator.New(),
		logger:      logger,
	}
}

// Me assembles the acting user's profile from the directory record, the
// organisation membership and any transfers pending on their address.
func (s *UserService) Me(ctx context.Context, actor models.Actor) (*models.UserProfile, error) {
	profile := &models.UserProfile{
		ID:         actor.ID,
		ExternalID: actor.ExternalID,
		Type:       actor.Type,
	}

	dirProfile, err := s.directory.GetProfile(ctx, actor.ExternalID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load directory profile")
	}
	if dirProfile != nil {
		profile.DisplayName = dirProfile.DisplayName
		profile.Email = dirProfile.Email
		profile.PhoneNumber = dirProfile.PhoneNumber
	}

	if actor.IsAccessor() {
		membership, err := s.memberships.FindMembership(ctx, actor.ID)
		if err != nil && err != sql.ErrNoRows {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load membership")
		}
		if membership != nil {
			org := models.ProfileOrganisation{
				ID:   membership.OrganisationID,
				Role: membership.Role,
			}
			if membership.OrganisationName != nil {
				org.Name = *membership.OrganisationName
			}
			if membership.OrganisationUnitID != nil {
				unit := models.ProfileUnit{ID: *membership.OrganisationUnitID}
				if membership.UnitName != nil {
					unit.Name = *membership.UnitName
				}
				org.Unit = &unit
			}
			profile.Organisations = []models.ProfileOrganisation{org}
		}
	}

	if actor.Type == models.UserTypeInnovator && profile.Email != "" && s.transfers != nil {
		pending, err := s.transfers.CheckPending(ctx, profile.Email)
		if err != nil {
			s.logger.Warn("pending transfer lookup failed",
				zap.String("user_id", actor.ID), zap.Error(err))
		} else {
			profile.PendingTransfers = len(pending)
		}
	}

	return profile, nil
}

// Create provisions a platform user. Admin only. A directory identity is
// created when the email is unknown, otherwise the existing identity is
// linked. Accessor users require an organisation and are created with their
// single membership in one transaction.
func (s *UserService) Create(ctx context.Context, actor models.Actor, req models.CreateUserRequest) (*models.User, error) {
	if actor.Type != models.UserTypeAdmin {
		return nil, appErrors.ErrInvalidUserType
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	if req.Type == models.UserTypeAccessor && (req.OrganisationID == "" || req.Role == "") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "accessor users need an organisation and a role")
	}

	dirProfile, err := s.directory.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up directory identity")
	}
	if dirProfile == nil {
		dirProfile, err = s.directory.CreateUser(ctx, directory.CreateUserInput{
			DisplayName: req.DisplayName,
			Email:       req.Email,
			Password:    req.Password,
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create directory identity")
		}
	}

	if existing, err := s.users.FindByExternalID(ctx, dirProfile.ID); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "user already exists")
	} else if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing user")
	}

	user := &models.User{
		ExternalID: dirProfile.ID,
		Type:       req.Type,
		CreatedBy:  &actor.ID,
		UpdatedBy:  &actor.ID,
	}

	if req.Type != models.UserTypeAccessor {
		if err := s.users.Create(ctx, user); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
		}
		return user, nil
	}

	membership := &models.OrganisationMembership{
		OrganisationID: req.OrganisationID,
		Role:           models.AccessorRole(req.Role),
	}
	if req.OrganisationUnitID != "" {
		membership.OrganisationUnitID = &req.OrganisationUnitID
	}
	if err := s.users.CreateWithMembership(ctx, user, membership); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	return user, nil
}

// Update pushes directory field changes for an existing user. Admin only.
func (s *UserService) Update(ctx context.Context, actor models.Actor, req models.UpdateUserRequest) error {
	if actor.Type != models.UserTypeAdmin {
		return appErrors.ErrInvalidUserType
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	if _, err := s.users.FindByExternalID(ctx, req.ExternalID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	input := directory.UpdateUserInput{
		DisplayName:    req.DisplayName,
		AccountEnabled: req.AccountEnabled,
	}
	if err := s.directory.UpdateUser(ctx, req.ExternalID, input); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update directory identity")
	}
	return nil
}
