package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
)

type commentRepo interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	ListByInnovation(ctx context.Context, innovationID string) ([]models.Comment, error)
}

type unreadResolver interface {
	UnreadByContexts(ctx context.Context, actor models.Actor, contextType models.NotificationContextType, contextIDs []string) (map[string]int, error)
}

type commentUserReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

type commentSupportReader interface {
	EngagingAccessorIDs(ctx context.Context, innovationID string) ([]string, error)
}

// CommentService handles the conversation thread on an innovation.
type CommentService struct {
	comments      commentRepo
	supports      commentSupportReader
	users         commentUserReader
	profiles      profileResolver
	innovations   innovationReader
	notifications notifier
	unread        unreadResolver
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewCommentService creates a new comment service.
func NewCommentService(comments commentRepo, supports commentSupportReader, users commentUserReader, profiles profileResolver, innovations innovationReader, notifications notifier, unread unreadResolver, logger *zap.Logger) *CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{
		comments:      comments,
		supports:      supports,
		users:         users,
		profiles:      profiles,
		innovations:   innovations,
		notifications: notifications,
		unread:        unread,
		validator:     validator.New(),
		logger:        logger,
	}
}

// Create posts a comment or a reply on an innovation. Accessor comments
// carry the unit tag of the acting accessor.
func (s *CommentService) Create(ctx context.Context, actor models.Actor, innovationID string, req models.CreateCommentRequest) (*models.Comment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}
	if actor.Type == models.UserTypeAccessor {
		if err := ensureAccessorContext(actor); err != nil {
			return nil, err
		}
	}

	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		InnovationID: innovation.ID,
		UserID:       actor.ID,
		Message:      req.Comment,
		CreatedBy:    &actor.ID,
	}
	if req.ReplyTo != "" {
		parent, err := s.comments.FindByID(ctx, req.ReplyTo)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "comment not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comment")
		}
		if parent.InnovationID != innovation.ID {
			return nil, appErrors.Clone(appErrors.ErrInvalidData, "reply targets a comment on another innovation")
		}
		comment.ReplyToID = &parent.ID
	}
	if req.ActionID != "" {
		comment.ActionID = &req.ActionID
	}
	if actor.Organisation != nil {
		comment.OrganisationUnitID = &actor.Organisation.UnitID
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create comment")
	}

	s.notifyNewComment(ctx, actor, innovation, comment)

	return comment, nil
}

// ListByInnovation returns the conversation as top level comments with
// replies nested, oldest first, with the actor's unread notification count
// attached per thread.
func (s *CommentService) ListByInnovation(ctx context.Context, actor models.Actor, innovationID string) ([]models.CommentView, error) {
	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByInnovation(ctx, innovation.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list comments")
	}
	if len(comments) == 0 {
		return []models.CommentView{}, nil
	}

	authors, err := s.resolveAuthors(ctx, comments)
	if err != nil {
		return nil, err
	}

	commentIDs := make([]string, 0, len(comments))
	for _, comment := range comments {
		commentIDs = append(commentIDs, comment.ID)
	}
	unread := map[string]int{}
	if s.unread != nil {
		unread, err = s.unread.UnreadByContexts(ctx, actor, models.NotificationContextComment, commentIDs)
		if err != nil {
			s.logger.Warn("comment unread lookup failed",
				zap.String("innovation_id", innovation.ID), zap.Error(err))
			unread = map[string]int{}
		}
	}

	// Comments arrive oldest first, so every parent is indexed before any
	// of its replies and the thread assembles in one pass.
	views := make(map[string]*models.CommentView, len(comments))
	order := make([]string, 0, len(comments))
	for _, comment := range comments {
		view := models.CommentView{
			ID:          comment.ID,
			Message:     comment.Message,
			CreatedAt:   comment.CreatedAt,
			User:        authors[comment.UserID],
			UnreadCount: unread[comment.ID],
		}
		if comment.ReplyToID == nil {
			views[comment.ID] = &view
			order = append(order, comment.ID)
			continue
		}
		if parent, ok := views[*comment.ReplyToID]; ok {
			parent.Replies = append(parent.Replies, view)
		}
	}

	result := make([]models.CommentView, 0, len(order))
	for _, id := range order {
		result = append(result, *views[id])
	}
	return result, nil
}

func (s *CommentService) resolveAuthors(ctx context.Context, comments []models.Comment) (map[string]models.CommentAuthor, error) {
	userIDs := make([]string, 0, len(comments))
	for _, comment := range comments {
		userIDs = append(userIDs, comment.UserID)
	}
	users, err := s.users.ListByIDs(ctx, dedupeStrings(userIDs))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comment authors")
	}

	externalIDs := make([]string, 0, len(users))
	for _, user := range users {
		externalIDs = append(externalIDs, user.ExternalID)
	}
	profiles, err := s.profiles.ListProfiles(ctx, externalIDs)
	if err != nil {
		s.logger.Warn("comment author profile lookup failed", zap.Error(err))
		profiles = nil
	}

	authors := make(map[string]models.CommentAuthor, len(users))
	for _, user := range users {
		author := models.CommentAuthor{ID: user.ID, Type: user.Type}
		if profile, ok := profiles[user.ExternalID]; ok {
			author.Name = profile.DisplayName
		}
		authors[user.ID] = author
	}
	return authors, nil
}

// New comment fan-out: innovator comments reach the engaging accessors,
// accessor comments reach the record owner plus every accessor assigned to
// an engaging support on the innovation, whatever unit they belong to.
func (s *CommentService) notifyNewComment(ctx context.Context, actor models.Actor, innovation *models.Innovation, comment *models.Comment) {
	if s.notifications == nil {
		return
	}
	audience := models.AudienceInnovators
	var targets []string
	if actor.Type == models.UserTypeInnovator {
		audience = models.AudienceAccessors
	} else if actor.Type == models.UserTypeAccessor && s.supports != nil {
		assigned, err := s.supports.EngagingAccessorIDs(ctx, innovation.ID)
		if err != nil {
			s.logger.Warn("assigned accessor lookup failed",
				zap.String("innovation_id", innovation.ID), zap.Error(err))
		} else {
			targets = dedupeStrings(assigned)
		}
	}
	err := s.notifications.Create(ctx, actor, audience, innovation.ID,
		models.NotificationContextComment, comment.ID, "new comment on innovation", targets)
	if err != nil {
		s.logger.Warn("comment notification failed",
			zap.String("comment_id", comment.ID), zap.Error(err))
	}
}
