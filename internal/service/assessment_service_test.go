package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/innovation-hub-api/internal/directory"
	"github.com/noah-isme/innovation-hub-api/internal/models"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
)

type assessmentUpdate struct {
	unitIDs      []string
	submittedNow bool
}

type mockAssessmentRepo struct {
	assessments map[string]*models.Assessment
	created     []models.Assessment
	updates     []assessmentUpdate
	suggested   map[string][]string
}

func (m *mockAssessmentRepo) Create(ctx context.Context, assessment *models.Assessment, comment *models.Comment) error {
	assessment.ID = "ass-new"
	m.created = append(m.created, *assessment)
	if m.assessments == nil {
		m.assessments = make(map[string]*models.Assessment)
	}
	m.assessments[assessment.ID] = assessment
	return nil
}

func (m *mockAssessmentRepo) FindByID(ctx context.Context, assessmentID, innovationID string) (*models.Assessment, error) {
	if assessment, ok := m.assessments[assessmentID]; ok && assessment.InnovationID == innovationID {
		copied := *assessment
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAssessmentRepo) FindByInnovation(ctx context.Context, innovationID string) (*models.Assessment, error) {
	for _, assessment := range m.assessments {
		if assessment.InnovationID == innovationID {
			return assessment, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAssessmentRepo) Update(ctx context.Context, assessment *models.Assessment, unitIDs []string, submittedNow bool) error {
	m.updates = append(m.updates, assessmentUpdate{unitIDs: unitIDs, submittedNow: submittedNow})
	if submittedNow {
		now := time.Now().UTC()
		assessment.FinishedAt = &now
	}
	m.assessments[assessment.ID] = assessment
	return nil
}

func (m *mockAssessmentRepo) SuggestedUnitIDs(ctx context.Context, assessmentID string) ([]string, error) {
	return m.suggested[assessmentID], nil
}

type mockShareReader struct {
	shares map[string][]string
}

func (m *mockShareReader) GetShareOrganisationIDs(ctx context.Context, innovationID string) ([]string, error) {
	return m.shares[innovationID], nil
}

// Fixture unit ids are well formed uuids because the update payload
// validates suggested units as such.
const (
	unitDevicesID     = "5f0c1e4a-9b2d-4c3e-8a1f-6e7d8c9b0a12"
	unitDiagnosticsID = "7a2e3f5b-1c4d-4e5f-9b2a-8c0d1e2f3a45"
)

type mockAssessmentOrgs struct {
	units     map[string]models.OrganisationUnit
	orgs      map[string]models.Organisation
	qasByUnit map[string][]string
}

func (m *mockAssessmentOrgs) ListUnits(ctx context.Context, unitIDs []string) ([]models.OrganisationUnit, error) {
	var result []models.OrganisationUnit
	for _, id := range unitIDs {
		if unit, ok := m.units[id]; ok {
			result = append(result, unit)
		}
	}
	return result, nil
}

func (m *mockAssessmentOrgs) ListOrganisationsByIDs(ctx context.Context, ids []string) ([]models.Organisation, error) {
	var result []models.Organisation
	for _, id := range ids {
		if org, ok := m.orgs[id]; ok {
			result = append(result, org)
		}
	}
	return result, nil
}

func (m *mockAssessmentOrgs) QualifyingAccessorsOfUnits(ctx context.Context, unitIDs []string, innovationID string) ([]string, error) {
	var result []string
	for _, id := range unitIDs {
		result = append(result, m.qasByUnit[id]...)
	}
	return result, nil
}

type emailCall struct {
	template  models.EmailTemplate
	ids       []string
	addresses []string
}

type mockEmails struct {
	calls []emailCall
	err   error
}

func (m *mockEmails) SendEmail(ctx context.Context, template models.EmailTemplate, recipientIDs []string, params map[string]string) error {
	m.calls = append(m.calls, emailCall{template: template, ids: recipientIDs})
	return m.err
}

func (m *mockEmails) SendEmailToAddresses(ctx context.Context, template models.EmailTemplate, addresses []string, params map[string]string) error {
	m.calls = append(m.calls, emailCall{template: template, addresses: addresses})
	return m.err
}

func newAssessmentFixture() (*AssessmentService, *mockAssessmentRepo, *mockShareReader, *mockNotifier, *mockEmails, *mockInnovations) {
	repo := &mockAssessmentRepo{assessments: map[string]*models.Assessment{}, suggested: map[string][]string{}}
	shares := &mockShareReader{shares: map[string][]string{"inn-1": {"org-1"}}}
	organisations := &mockAssessmentOrgs{
		units: map[string]models.OrganisationUnit{
			unitDevicesID:     {ID: unitDevicesID, OrganisationID: "org-1", Name: "Devices Unit"},
			unitDiagnosticsID: {ID: unitDiagnosticsID, OrganisationID: "org-2", Name: "Diagnostics Unit"},
		},
		orgs: map[string]models.Organisation{
			"org-1": {ID: "org-1", Name: "Health Devices"},
			"org-2": {ID: "org-2", Name: "Diagnostics"},
		},
		qasByUnit: map[string][]string{
			unitDevicesID:     {"qa-1"},
			unitDiagnosticsID: {"qa-9"},
		},
	}
	users := &mockUsers{users: map[string]models.User{
		"na-1": {ID: "na-1", ExternalID: "ext-na-1", Type: models.UserTypeAssessment},
	}}
	profiles := &mockProfiles{profiles: map[string]directory.Profile{
		"ext-na-1": {ID: "ext-na-1", DisplayName: "Nina Assessor"},
	}}
	innovations := &mockInnovations{innovations: map[string]*models.Innovation{
		"inn-1": {ID: "inn-1", Name: "Thermo Patch", OwnerID: "inv-1", Status: models.InnovationStatusWaitingNeedsAssessment},
	}}
	notifier := &mockNotifier{}
	emails := &mockEmails{}
	svc := NewAssessmentService(repo, shares, organisations, users, profiles, innovations, notifier, emails, zap.NewNop())
	return svc, repo, shares, notifier, emails, innovations
}

func assessmentActor() models.Actor {
	return models.Actor{ID: "na-1", ExternalID: "ext-na-1", Type: models.UserTypeAssessment}
}

func TestAssessmentCreateRequiresWaitingInnovation(t *testing.T) {
	svc, repo, _, _, _, innovations := newAssessmentFixture()
	innovations.innovations["inn-1"].Status = models.InnovationStatusCreated

	_, err := svc.Create(context.Background(), assessmentActor(), "inn-1", models.CreateAssessmentRequest{Description: "initial triage"})
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestAssessmentCreate(t *testing.T) {
	svc, repo, _, notifier, _, _ := newAssessmentFixture()

	assessment, err := svc.Create(context.Background(), assessmentActor(), "inn-1", models.CreateAssessmentRequest{Description: "initial triage"})
	require.NoError(t, err)
	assert.Equal(t, "na-1", assessment.AssignedToID)
	require.Len(t, repo.created, 1)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, models.AudienceInnovators, notifier.calls[0].audience)
}

func TestAssessmentSubmissionStampsOnlyOnce(t *testing.T) {
	svc, repo, _, _, _, _ := newAssessmentFixture()
	repo.assessments["ass-1"] = &models.Assessment{ID: "ass-1", InnovationID: "inn-1", AssignedToID: "na-1"}

	_, err := svc.Update(context.Background(), assessmentActor(), "inn-1", "ass-1", models.UpdateAssessmentRequest{
		Summary:      "ready for support",
		IsSubmission: true,
	})
	require.NoError(t, err)
	require.Len(t, repo.updates, 1)
	assert.True(t, repo.updates[0].submittedNow)

	// A resubmission of an already finished assessment never re-stamps.
	_, err = svc.Update(context.Background(), assessmentActor(), "inn-1", "ass-1", models.UpdateAssessmentRequest{
		Summary:      "amended wording",
		IsSubmission: true,
	})
	require.NoError(t, err)
	require.Len(t, repo.updates, 2)
	assert.False(t, repo.updates[1].submittedNow)
}

func TestAssessmentSubmissionSuggestionFanOut(t *testing.T) {
	svc, repo, _, notifier, emails, _ := newAssessmentFixture()
	repo.assessments["ass-1"] = &models.Assessment{ID: "ass-1", InnovationID: "inn-1", AssignedToID: "na-1"}

	// The devices unit belongs to an already shared organisation, the
	// diagnostics unit does not.
	_, err := svc.Update(context.Background(), assessmentActor(), "inn-1", "ass-1", models.UpdateAssessmentRequest{
		IsSubmission:      true,
		OrganisationUnits: []string{unitDevicesID, unitDiagnosticsID},
	})
	require.NoError(t, err)

	require.Len(t, notifier.calls, 3)
	assert.Equal(t, models.AudienceQualifyingAccessors, notifier.calls[0].audience)
	assert.Equal(t, models.NotificationContextInnovation, notifier.calls[0].contextType)
	assert.Equal(t, "inn-1", notifier.calls[0].contextID)
	assert.Equal(t, models.AudienceInnovators, notifier.calls[1].audience)
	assert.Equal(t, models.NotificationContextDataSharing, notifier.calls[1].contextType)
	// The extra innovator notification fires because diagnostics is not
	// covered by the existing shares.
	assert.Equal(t, models.AudienceInnovators, notifier.calls[2].audience)
	assert.Equal(t, models.NotificationContextDataSharing, notifier.calls[2].contextType)

	require.Len(t, emails.calls, 1)
	assert.Equal(t, models.EmailQAOrganisationSuggested, emails.calls[0].template)
	assert.Equal(t, []string{"qa-1", "qa-9"}, emails.calls[0].ids)
}

func TestAssessmentSubmissionCoveredSharesSkipExtraNotification(t *testing.T) {
	svc, repo, _, notifier, emails, _ := newAssessmentFixture()
	repo.assessments["ass-1"] = &models.Assessment{ID: "ass-1", InnovationID: "inn-1", AssignedToID: "na-1"}

	_, err := svc.Update(context.Background(), assessmentActor(), "inn-1", "ass-1", models.UpdateAssessmentRequest{
		IsSubmission:      true,
		OrganisationUnits: []string{unitDevicesID},
	})
	require.NoError(t, err)

	// Only the two unconditional notifications: the devices organisation is
	// already in the sharing set.
	require.Len(t, notifier.calls, 2)
	assert.Equal(t, models.AudienceQualifyingAccessors, notifier.calls[0].audience)
	assert.Equal(t, models.AudienceInnovators, notifier.calls[1].audience)
	require.Len(t, emails.calls, 1)
	assert.Equal(t, []string{"qa-1"}, emails.calls[0].ids)
}

func TestAssessmentFanOutFailuresDoNotBlockSubmission(t *testing.T) {
	svc, repo, _, notifier, emails, _ := newAssessmentFixture()
	repo.assessments["ass-1"] = &models.Assessment{ID: "ass-1", InnovationID: "inn-1", AssignedToID: "na-1"}
	notifier.err = assert.AnError
	emails.err = assert.AnError

	_, err := svc.Update(context.Background(), assessmentActor(), "inn-1", "ass-1", models.UpdateAssessmentRequest{
		IsSubmission:      true,
		OrganisationUnits: []string{unitDiagnosticsID},
	})
	require.NoError(t, err)
	// Every fan-out step still ran despite the earlier ones failing.
	assert.Len(t, notifier.calls, 3)
	assert.Len(t, emails.calls, 1)
}

func TestAssessmentFindGroupsSuggestedUnits(t *testing.T) {
	svc, repo, _, _, _, _ := newAssessmentFixture()
	repo.assessments["ass-1"] = &models.Assessment{ID: "ass-1", InnovationID: "inn-1", AssignedToID: "na-1"}
	repo.suggested["ass-1"] = []string{unitDevicesID, unitDiagnosticsID}

	detail, err := svc.Find(context.Background(), assessmentActor(), "inn-1", "ass-1")
	require.NoError(t, err)
	assert.Equal(t, "Nina Assessor", detail.AssignedToName)
	require.Len(t, detail.Organisations, 2)
	for _, org := range detail.Organisations {
		require.Len(t, org.Units, 1)
	}
}
