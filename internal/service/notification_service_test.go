package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/innovation-hub-api/internal/directory"
	"github.com/noah-isme/innovation-hub-api/internal/models"
	"github.com/noah-isme/innovation-hub-api/pkg/jobs"
)

type mockNotificationRepo struct {
	notifications []models.Notification
	recipients    [][]string
	unread        map[string]int
	dismissed     []string
}

func (m *mockNotificationRepo) CreateWithRecipients(ctx context.Context, notification *models.Notification, recipientIDs []string) error {
	notification.ID = "not-new"
	m.notifications = append(m.notifications, *notification)
	m.recipients = append(m.recipients, recipientIDs)
	return nil
}

func (m *mockNotificationRepo) Dismiss(ctx context.Context, userID string, contextType models.NotificationContextType, contextID string) error {
	m.dismissed = append(m.dismissed, contextID)
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	return nil
}

func (m *mockNotificationRepo) UnreadCounters(ctx context.Context, userID string) ([]models.NotificationCounter, error) {
	var counters []models.NotificationCounter
	for contextType, count := range m.unread {
		counters = append(counters, models.NotificationCounter{ContextType: models.NotificationContextType(contextType), Count: count})
	}
	return counters, nil
}

func (m *mockNotificationRepo) UnreadByContexts(ctx context.Context, userID string, contextType models.NotificationContextType, contextIDs []string) (map[string]int, error) {
	return nil, nil
}

type mockAudienceInnovations struct {
	innovation *models.Innovation
	shares     []string
}

func (m *mockAudienceInnovations) FindByID(ctx context.Context, id string) (*models.Innovation, error) {
	return m.innovation, nil
}

func (m *mockAudienceInnovations) GetShareOrganisationIDs(ctx context.Context, innovationID string) ([]string, error) {
	return m.shares, nil
}

type mockEngagingSupports struct {
	accessorIDs []string
}

func (m *mockEngagingSupports) EngagingAccessorIDs(ctx context.Context, innovationID string) ([]string, error) {
	return m.accessorIDs, nil
}

type mockQAOrgs struct {
	qas map[string][]string
}

func (m *mockQAOrgs) QualifyingAccessorsOfOrganisations(ctx context.Context, organisationIDs []string) ([]string, error) {
	var result []string
	for _, id := range organisationIDs {
		result = append(result, m.qas[id]...)
	}
	return result, nil
}

type recordingSender struct {
	templates  []models.EmailTemplate
	recipients [][]string
}

func (s *recordingSender) Send(ctx context.Context, template models.EmailTemplate, recipients []string, params map[string]string) error {
	s.templates = append(s.templates, template)
	s.recipients = append(s.recipients, recipients)
	return nil
}

func newNotificationFixture() (*NotificationService, *mockNotificationRepo, *recordingSender) {
	repo := &mockNotificationRepo{unread: map[string]int{}}
	innovations := &mockAudienceInnovations{
		innovation: &models.Innovation{ID: "inn-1", OwnerID: "inv-1"},
		shares:     []string{"org-1"},
	}
	supports := &mockEngagingSupports{accessorIDs: []string{"acc-1", "acc-2"}}
	organisations := &mockQAOrgs{qas: map[string][]string{"org-1": {"qa-1", "qa-2"}}}
	users := &mockUsers{users: map[string]models.User{
		"acc-1": {ID: "acc-1", ExternalID: "ext-acc-1", Type: models.UserTypeAccessor},
		"na-1":  {ID: "na-1", ExternalID: "ext-na-1", Type: models.UserTypeAssessment},
	}}
	profiles := &mockProfiles{profiles: map[string]directory.Profile{
		"ext-acc-1": {ID: "ext-acc-1", DisplayName: "Alex Reviewer", Email: "alex@example.com"},
	}}
	sender := &recordingSender{}
	svc := NewNotificationService(repo, innovations, supports, organisations, users, profiles, sender, nil, zap.NewNop())
	return svc, repo, sender
}

func TestNotificationCreateExcludesActor(t *testing.T) {
	svc, repo, _ := newNotificationFixture()
	actor := models.Actor{ID: "acc-1", Type: models.UserTypeAccessor}

	err := svc.Create(context.Background(), actor, models.AudienceAccessors, "inn-1",
		models.NotificationContextComment, "com-1", "new comment", nil)
	require.NoError(t, err)
	require.Len(t, repo.recipients, 1)
	assert.Equal(t, []string{"acc-2"}, repo.recipients[0])
}

func TestNotificationCreateNoRecipientsIsNoop(t *testing.T) {
	svc, repo, _ := newNotificationFixture()
	owner := models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}

	// The owner is the whole INNOVATORS audience, so nothing remains.
	err := svc.Create(context.Background(), owner, models.AudienceInnovators, "inn-1",
		models.NotificationContextInnovation, "inn-1", "self echo", nil)
	require.NoError(t, err)
	assert.Empty(t, repo.notifications)
}

func TestNotificationCreateQualifyingAccessorsViaShares(t *testing.T) {
	svc, repo, _ := newNotificationFixture()
	owner := models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}

	err := svc.Create(context.Background(), owner, models.AudienceQualifyingAccessors, "inn-1",
		models.NotificationContextDataSharing, "inn-1", "shared with you", nil)
	require.NoError(t, err)
	require.Len(t, repo.recipients, 1)
	assert.ElementsMatch(t, []string{"qa-1", "qa-2"}, repo.recipients[0])
}

func TestNotificationCreateDeduplicatesExplicitTargets(t *testing.T) {
	svc, repo, _ := newNotificationFixture()
	owner := models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}

	err := svc.Create(context.Background(), owner, models.AudienceAccessors, "inn-1",
		models.NotificationContextAction, "act-1", "action updated", []string{"acc-2", "acc-3", "acc-3"})
	require.NoError(t, err)
	require.Len(t, repo.recipients, 1)
	assert.Equal(t, []string{"acc-1", "acc-2", "acc-3"}, repo.recipients[0])
}

func TestEmailJobHandlerResolvesAddresses(t *testing.T) {
	svc, _, sender := newNotificationFixture()

	err := svc.EmailJobHandler(context.Background(), jobs.Job{
		ID:   "job-1",
		Type: "email",
		Payload: models.EmailJobPayload{
			Template:     models.EmailQAOrganisationSuggested,
			RecipientIDs: []string{"acc-1"},
			Addresses:    []string{"outsider@example.com"},
		},
	})
	require.NoError(t, err)
	require.Len(t, sender.recipients, 1)
	assert.ElementsMatch(t, []string{"alex@example.com", "outsider@example.com"}, sender.recipients[0])
}

func TestEmailJobHandlerRejectsForeignPayload(t *testing.T) {
	svc, _, sender := newNotificationFixture()

	err := svc.EmailJobHandler(context.Background(), jobs.Job{ID: "job-1", Type: "email", Payload: "garbage"})
	assert.Error(t, err)
	assert.Empty(t, sender.recipients)
}
