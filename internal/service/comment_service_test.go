package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/innovation-hub-api/internal/directory"
	"github.com/noah-isme/innovation-hub-api/internal/models"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
)

type mockCommentRepo struct {
	comments []models.Comment
}

func (m *mockCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	comment.ID = uuid.NewString()
	comment.CreatedAt = time.Now().UTC()
	m.comments = append(m.comments, *comment)
	return nil
}

func (m *mockCommentRepo) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	for _, comment := range m.comments {
		if comment.ID == id {
			copied := comment
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockCommentRepo) ListByInnovation(ctx context.Context, innovationID string) ([]models.Comment, error) {
	var result []models.Comment
	for _, comment := range m.comments {
		if comment.InnovationID == innovationID {
			result = append(result, comment)
		}
	}
	return result, nil
}

type mockUnread struct {
	counts map[string]int
}

func (m *mockUnread) UnreadByContexts(ctx context.Context, actor models.Actor, contextType models.NotificationContextType, contextIDs []string) (map[string]int, error) {
	return m.counts, nil
}

type mockAssignedAccessors struct {
	ids map[string][]string
}

func (m *mockAssignedAccessors) EngagingAccessorIDs(ctx context.Context, innovationID string) ([]string, error) {
	return m.ids[innovationID], nil
}

func newCommentFixture() (*CommentService, *mockCommentRepo, *mockNotifier) {
	repo := &mockCommentRepo{}
	supports := &mockAssignedAccessors{ids: map[string][]string{
		"inn-1": {"acc-1", "acc-2"},
	}}
	users := &mockUsers{users: map[string]models.User{
		"inv-1": {ID: "inv-1", ExternalID: "ext-inv-1", Type: models.UserTypeInnovator},
		"acc-1": {ID: "acc-1", ExternalID: "ext-acc-1", Type: models.UserTypeAccessor},
	}}
	profiles := &mockProfiles{profiles: map[string]directory.Profile{
		"ext-inv-1": {ID: "ext-inv-1", DisplayName: "Iris Innovator"},
		"ext-acc-1": {ID: "ext-acc-1", DisplayName: "Alex Reviewer"},
	}}
	innovations := &mockInnovations{
		innovations: map[string]*models.Innovation{"inn-1": {ID: "inn-1", OwnerID: "inv-1"}},
		sharedWith:  map[string][]string{"inn-1": {"org-1"}},
		engaging:    map[string]bool{"inn-1unit-1": true},
	}
	notifier := &mockNotifier{}
	unread := &mockUnread{counts: map[string]int{}}
	svc := NewCommentService(repo, supports, users, profiles, innovations, notifier, unread, zap.NewNop())
	return svc, repo, notifier
}

func TestCommentCreateTagsAccessorUnit(t *testing.T) {
	svc, repo, notifier := newCommentFixture()

	comment, err := svc.Create(context.Background(), accessorActor(models.RoleAccessor), "inn-1", models.CreateCommentRequest{
		Comment: "can you expand on the care pathway",
	})
	require.NoError(t, err)
	require.NotNil(t, comment.OrganisationUnitID)
	assert.Equal(t, "unit-1", *comment.OrganisationUnitID)
	require.Len(t, repo.comments, 1)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, models.AudienceInnovators, notifier.calls[0].audience)
	// Accessor comments additionally target every accessor assigned to an
	// engaging support on the innovation.
	assert.Equal(t, []string{"acc-1", "acc-2"}, notifier.calls[0].targets)
}

func TestCommentByInnovatorCarriesNoExplicitTargets(t *testing.T) {
	svc, _, notifier := newCommentFixture()
	owner := models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}

	_, err := svc.Create(context.Background(), owner, "inn-1", models.CreateCommentRequest{Comment: "progress update"})
	require.NoError(t, err)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, models.AudienceAccessors, notifier.calls[0].audience)
	assert.Empty(t, notifier.calls[0].targets)
}

func TestCommentReplyMustStayOnInnovation(t *testing.T) {
	svc, repo, _ := newCommentFixture()
	foreign := uuid.NewString()
	repo.comments = append(repo.comments, models.Comment{ID: foreign, InnovationID: "inn-other", UserID: "acc-1"})

	owner := models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}
	_, err := svc.Create(context.Background(), owner, "inn-1", models.CreateCommentRequest{
		Comment: "replying",
		ReplyTo: foreign,
	})
	assert.Equal(t, appErrors.ErrInvalidData.Code, appErrors.FromError(err).Code)
}

func TestCommentThreadingRoundTrip(t *testing.T) {
	svc, _, _ := newCommentFixture()
	owner := models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}
	accessor := accessorActor(models.RoleAccessor)

	top, err := svc.Create(context.Background(), accessor, "inn-1", models.CreateCommentRequest{Comment: "first question"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), owner, "inn-1", models.CreateCommentRequest{Comment: "first answer", ReplyTo: top.ID})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), accessor, "inn-1", models.CreateCommentRequest{Comment: "second question"})
	require.NoError(t, err)

	views, err := svc.ListByInnovation(context.Background(), owner, "inn-1")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "first question", views[0].Message)
	assert.Equal(t, "Alex Reviewer", views[0].User.Name)
	require.Len(t, views[0].Replies, 1)
	assert.Equal(t, "first answer", views[0].Replies[0].Message)
	assert.Equal(t, "Iris Innovator", views[0].Replies[0].User.Name)
	assert.Empty(t, views[1].Replies)
}

func TestCommentListAttachesUnreadCounts(t *testing.T) {
	svc, _, _ := newCommentFixture()
	owner := models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}

	top, err := svc.Create(context.Background(), owner, "inn-1", models.CreateCommentRequest{Comment: "hello"})
	require.NoError(t, err)

	unread := &mockUnread{counts: map[string]int{top.ID: 3}}
	svc.unread = unread

	views, err := svc.ListByInnovation(context.Background(), owner, "inn-1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 3, views[0].UnreadCount)
}
