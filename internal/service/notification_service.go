package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/innovation-hub-api/internal/directory"
	"github.com/noah-isme/innovation-hub-api/internal/models"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
	"github.com/noah-isme/innovation-hub-api/pkg/jobs"
)

type notificationRepo interface {
	CreateWithRecipients(ctx context.Context, notification *models.Notification, recipientIDs []string) error
	Dismiss(ctx context.Context, userID string, contextType models.NotificationContextType, contextID string) error
	MarkAllRead(ctx context.Context, userID string) error
	UnreadCounters(ctx context.Context, userID string) ([]models.NotificationCounter, error)
	UnreadByContexts(ctx context.Context, userID string, contextType models.NotificationContextType, contextIDs []string) (map[string]int, error)
}

type audienceInnovationReader interface {
	FindByID(ctx context.Context, id string) (*models.Innovation, error)
	GetShareOrganisationIDs(ctx context.Context, innovationID string) ([]string, error)
}

type audienceSupportReader interface {
	EngagingAccessorIDs(ctx context.Context, innovationID string) ([]string, error)
}

type audienceOrganisationReader interface {
	QualifyingAccessorsOfOrganisations(ctx context.Context, organisationIDs []string) ([]string, error)
}

type audienceUserReader interface {
	ListByType(ctx context.Context, userType models.UserType) ([]models.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

type profileResolver interface {
	ListProfiles(ctx context.Context, externalIDs []string) (map[string]directory.Profile, error)
}

// EmailSender delivers one templated email batch.
type EmailSender interface {
	Send(ctx context.Context, template models.EmailTemplate, recipients []string, params map[string]string) error
}

// LogEmailSender writes emails to the log instead of delivering them.
// Used in development and test environments.
type LogEmailSender struct {
	Logger *zap.Logger
}

// Send implements EmailSender.
func (s *LogEmailSender) Send(_ context.Context, template models.EmailTemplate, recipients []string, params map[string]string) error {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Sugar().Infow("email (log only)", "template", template, "recipients", recipients, "params", params)
	return nil
}

// NotificationService fans out in-app notifications and outbound email.
type NotificationService struct {
	notifications notificationRepo
	innovations   audienceInnovationReader
	supports      audienceSupportReader
	organisations audienceOrganisationReader
	users         audienceUserReader
	profiles      profileResolver
	sender        EmailSender
	queue         *jobs.Queue
	cache         *redis.Client
	counterTTL    time.Duration
	logger        *zap.Logger
}

// NewNotificationService constructs NotificationService. The dispatch queue
// is wired by the caller with the email handler from EmailJobHandler.
func NewNotificationService(notifications notificationRepo, innovations audienceInnovationReader, supports audienceSupportReader, organisations audienceOrganisationReader, users audienceUserReader, profiles profileResolver, sender EmailSender, cache *redis.Client, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sender == nil {
		sender = &LogEmailSender{Logger: logger}
	}
	return &NotificationService{
		notifications: notifications,
		innovations:   innovations,
		supports:      supports,
		organisations: organisations,
		users:         users,
		profiles:      profiles,
		sender:        sender,
		cache:         cache,
		counterTTL:    5 * time.Minute,
		logger:        logger,
	}
}

// SetCounterTTL overrides the unread counter cache lifetime.
func (s *NotificationService) SetCounterTTL(ttl time.Duration) {
	if ttl > 0 {
		s.counterTTL = ttl
	}
}

// AttachQueue wires the dispatch queue once it has been started.
func (s *NotificationService) AttachQueue(queue *jobs.Queue) {
	s.queue = queue
}

// Create resolves the audience, excludes the actor, and persists the
// notification with its recipient rows in one transaction.
func (s *NotificationService) Create(ctx context.Context, actor models.Actor, audience models.NotificationAudience, innovationID string, contextType models.NotificationContextType, contextID, message string, explicitTargets []string) error {
	recipients, err := s.resolveAudience(ctx, audience, innovationID)
	if err != nil {
		return err
	}
	recipients = append(recipients, explicitTargets...)
	recipients = dedupeStrings(excludeString(recipients, actor.ID))
	if len(recipients) == 0 {
		return nil
	}

	actorID := actor.ID
	notification := &models.Notification{
		InnovationID: innovationID,
		ContextType:  contextType,
		ContextID:    contextID,
		Message:      message,
		CreatedBy:    &actorID,
	}
	if err := s.notifications.CreateWithRecipients(ctx, notification, recipients); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notification")
	}
	s.invalidateCounters(ctx, recipients)
	return nil
}

// SendEmail enqueues a templated email for asynchronous delivery. The queue
// delivers at most once; a failed job is logged and dropped.
func (s *NotificationService) SendEmail(ctx context.Context, template models.EmailTemplate, recipientIDs []string, params map[string]string) error {
	recipientIDs = dedupeStrings(recipientIDs)
	if len(recipientIDs) == 0 {
		return nil
	}
	if s.queue == nil {
		return fmt.Errorf("email queue not attached")
	}
	return s.queue.Enqueue(jobs.Job{
		ID:   uuid.NewString(),
		Type: "email",
		Payload: models.EmailJobPayload{
			Template:     template,
			RecipientIDs: recipientIDs,
			Params:       params,
		},
	})
}

// SendEmailToAddresses enqueues a templated email for raw addresses that
// have no platform account behind them.
func (s *NotificationService) SendEmailToAddresses(ctx context.Context, template models.EmailTemplate, addresses []string, params map[string]string) error {
	addresses = dedupeStrings(addresses)
	if len(addresses) == 0 {
		return nil
	}
	if s.queue == nil {
		return fmt.Errorf("email queue not attached")
	}
	return s.queue.Enqueue(jobs.Job{
		ID:   uuid.NewString(),
		Type: "email",
		Payload: models.EmailJobPayload{
			Template:  template,
			Addresses: addresses,
			Params:    params,
		},
	})
}

// EmailJobHandler resolves recipient addresses through the directory and
// hands the batch to the sender. Meant to run inside the dispatch queue.
func (s *NotificationService) EmailJobHandler(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(models.EmailJobPayload)
	if !ok {
		return fmt.Errorf("unexpected email payload type %T", job.Payload)
	}

	addresses := make([]string, 0, len(payload.RecipientIDs)+len(payload.Addresses))
	if len(payload.RecipientIDs) > 0 {
		users, err := s.users.ListByIDs(ctx, payload.RecipientIDs)
		if err != nil {
			return fmt.Errorf("resolve email recipients: %w", err)
		}
		externalIDs := make([]string, 0, len(users))
		for _, u := range users {
			externalIDs = append(externalIDs, u.ExternalID)
		}
		profiles, err := s.profiles.ListProfiles(ctx, externalIDs)
		if err != nil {
			return fmt.Errorf("resolve recipient profiles: %w", err)
		}
		for _, profile := range profiles {
			if profile.Email != "" {
				addresses = append(addresses, profile.Email)
			}
		}
	}
	addresses = dedupeStrings(append(addresses, payload.Addresses...))
	if len(addresses) == 0 {
		return nil
	}
	return s.sender.Send(ctx, payload.Template, addresses, payload.Params)
}

// Dismiss marks the actor's notifications on a context as read.
func (s *NotificationService) Dismiss(ctx context.Context, actor models.Actor, req models.DismissNotificationsRequest) error {
	if err := s.notifications.Dismiss(ctx, actor.ID, req.ContextType, req.ContextID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to dismiss notifications")
	}
	s.invalidateCounters(ctx, []string{actor.ID})
	return nil
}

// MarkAllRead clears every unread notification of the actor.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor models.Actor) error {
	if err := s.notifications.MarkAllRead(ctx, actor.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	s.invalidateCounters(ctx, []string{actor.ID})
	return nil
}

// Counters returns the actor's unread counts per context type, served from
// the redis cache when warm.
func (s *NotificationService) Counters(ctx context.Context, actor models.Actor) ([]models.NotificationCounter, error) {
	cacheKey := "notifications:counters:" + actor.ID
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var counters []models.NotificationCounter
			if err := json.Unmarshal(raw, &counters); err == nil {
				return counters, nil
			}
		}
	}

	counters, err := s.notifications.UnreadCounters(ctx, actor.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification counters")
	}
	if s.cache != nil {
		if raw, err := json.Marshal(counters); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, s.counterTTL).Err(); err != nil {
				s.logger.Warn("notification counter cache write failed", zap.String("user_id", actor.ID), zap.Error(err))
			}
		}
	}
	return counters, nil
}

// UnreadByContexts returns unread counts keyed by context id.
func (s *NotificationService) UnreadByContexts(ctx context.Context, actor models.Actor, contextType models.NotificationContextType, contextIDs []string) (map[string]int, error) {
	counts, err := s.notifications.UnreadByContexts(ctx, actor.ID, contextType, contextIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unread counts")
	}
	return counts, nil
}

func (s *NotificationService) resolveAudience(ctx context.Context, audience models.NotificationAudience, innovationID string) ([]string, error) {
	switch audience {
	case models.AudienceInnovators:
		innovation, err := s.innovations.FindByID(ctx, innovationID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve innovation owner")
		}
		return []string{innovation.OwnerID}, nil
	case models.AudienceAccessors:
		ids, err := s.supports.EngagingAccessorIDs(ctx, innovationID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve engaging accessors")
		}
		return ids, nil
	case models.AudienceQualifyingAccessors:
		orgIDs, err := s.innovations.GetShareOrganisationIDs(ctx, innovationID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve shared organisations")
		}
		ids, err := s.organisations.QualifyingAccessorsOfOrganisations(ctx, orgIDs)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve qualifying accessors")
		}
		return ids, nil
	case models.AudienceAssessmentUsers:
		users, err := s.users.ListByType(ctx, models.UserTypeAssessment)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve assessment users")
		}
		ids := make([]string, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		return ids, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrInvalidData, "unknown notification audience")
	}
}

func (s *NotificationService) invalidateCounters(ctx context.Context, userIDs []string) {
	if s.cache == nil {
		return
	}
	for _, userID := range userIDs {
		if err := s.cache.Del(ctx, "notifications:counters:"+userID).Err(); err != nil && err != redis.Nil {
			s.logger.Warn("notification counter cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
}
