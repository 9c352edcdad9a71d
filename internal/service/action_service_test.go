package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/innovation-hub-api/internal/directory"
	"github.com/noah-isme/innovation-hub-api/internal/models"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
)

type mockActionRepo struct {
	counts   map[string]int
	actions  map[string]*models.Action
	unitByID map[string]string
	created  []models.Action
	updated  []models.Action
	comments []models.Comment
}

func (m *mockActionRepo) CountBySection(ctx context.Context, sectionID string) (int, error) {
	return m.counts[sectionID], nil
}

func (m *mockActionRepo) Create(ctx context.Context, action *models.Action) error {
	action.ID = "act-new"
	m.created = append(m.created, *action)
	return nil
}

func (m *mockActionRepo) FindByID(ctx context.Context, actionID, innovationID string) (*models.Action, error) {
	if action, ok := m.actions[actionID]; ok && action.InnovationID != nil && *action.InnovationID == innovationID {
		copied := *action
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockActionRepo) SupportUnitID(ctx context.Context, actionID string) (string, error) {
	if unitID, ok := m.unitByID[actionID]; ok {
		return unitID, nil
	}
	return "", sql.ErrNoRows
}

func (m *mockActionRepo) UpdateStatusWithComment(ctx context.Context, action *models.Action, comment *models.Comment) error {
	m.updated = append(m.updated, *action)
	if comment != nil {
		m.comments = append(m.comments, *comment)
	}
	return nil
}

func (m *mockActionRepo) ListByInnovation(ctx context.Context, innovationID string) ([]models.Action, error) {
	var result []models.Action
	for _, action := range m.actions {
		if action.InnovationID != nil && *action.InnovationID == innovationID {
			result = append(result, *action)
		}
	}
	return result, nil
}

func (m *mockActionRepo) ListByCreator(ctx context.Context, creatorID string, filter models.ActionFilter) ([]models.ActionListItem, int, error) {
	return nil, 0, nil
}

type mockSections struct {
	sections map[models.SectionKey]*models.Section
	created  []models.Section
}

func (m *mockSections) FindByKey(ctx context.Context, innovationID string, key models.SectionKey) (*models.Section, error) {
	if section, ok := m.sections[key]; ok {
		return section, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSections) Create(ctx context.Context, section *models.Section) error {
	m.created = append(m.created, *section)
	if m.sections == nil {
		m.sections = make(map[models.SectionKey]*models.Section)
	}
	m.sections[section.Key] = section
	return nil
}

type mockSupports struct {
	supports map[string]*models.Support
}

func (m *mockSupports) FindByInnovationAndUnit(ctx context.Context, innovationID, unitID string) (*models.Support, error) {
	if support, ok := m.supports[innovationID+unitID]; ok {
		return support, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSupports) FindByID(ctx context.Context, supportID string) (*models.Support, error) {
	for _, support := range m.supports {
		if support.ID == supportID {
			return support, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockOrganisations struct {
	units map[string]*models.OrganisationUnit
	orgs  map[string]models.Organisation
}

func (m *mockOrganisations) FindUnit(ctx context.Context, unitID string) (*models.OrganisationUnit, error) {
	if unit, ok := m.units[unitID]; ok {
		return unit, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockOrganisations) ListOrganisationsByIDs(ctx context.Context, ids []string) ([]models.Organisation, error) {
	var result []models.Organisation
	for _, id := range ids {
		if org, ok := m.orgs[id]; ok {
			result = append(result, org)
		}
	}
	return result, nil
}

type mockUsers struct {
	users map[string]models.User
}

func (m *mockUsers) ListByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var result []models.User
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			result = append(result, user)
		}
	}
	return result, nil
}

func (m *mockUsers) ListByType(ctx context.Context, userType models.UserType) ([]models.User, error) {
	var result []models.User
	for _, user := range m.users {
		if user.Type == userType {
			result = append(result, user)
		}
	}
	return result, nil
}

func (m *mockUsers) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	for _, user := range m.users {
		if user.ExternalID == externalID {
			copied := user
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockProfiles struct {
	profiles map[string]directory.Profile
}

func (m *mockProfiles) ListProfiles(ctx context.Context, externalIDs []string) (map[string]directory.Profile, error) {
	result := make(map[string]directory.Profile)
	for _, id := range externalIDs {
		if profile, ok := m.profiles[id]; ok {
			result[id] = profile
		}
	}
	return result, nil
}

type notifyCall struct {
	audience    models.NotificationAudience
	contextType models.NotificationContextType
	contextID   string
	targets     []string
}

type mockNotifier struct {
	calls []notifyCall
	err   error
}

func (m *mockNotifier) Create(ctx context.Context, actor models.Actor, audience models.NotificationAudience, innovationID string, contextType models.NotificationContextType, contextID, message string, explicitTargets []string) error {
	m.calls = append(m.calls, notifyCall{
		audience:    audience,
		contextType: contextType,
		contextID:   contextID,
		targets:     explicitTargets,
	})
	return m.err
}

func newActionFixture() (*ActionService, *mockActionRepo, *mockSections, *mockSupports, *mockNotifier) {
	actions := &mockActionRepo{counts: map[string]int{}, actions: map[string]*models.Action{}, unitByID: map[string]string{}}
	sections := &mockSections{sections: map[models.SectionKey]*models.Section{}}
	supports := &mockSupports{supports: map[string]*models.Support{}}
	organisations := &mockOrganisations{
		units: map[string]*models.OrganisationUnit{"unit-1": {ID: "unit-1", OrganisationID: "org-1", Name: "Devices Unit"}},
		orgs:  map[string]models.Organisation{"org-1": {ID: "org-1", Name: "Health Devices"}},
	}
	users := &mockUsers{users: map[string]models.User{
		"acc-1": {ID: "acc-1", ExternalID: "ext-acc-1", Type: models.UserTypeAccessor},
	}}
	profiles := &mockProfiles{profiles: map[string]directory.Profile{
		"ext-acc-1": {ID: "ext-acc-1", DisplayName: "Alex Reviewer", Email: "alex@example.com"},
	}}
	innovations := &mockInnovations{
		innovations: map[string]*models.Innovation{"inn-1": {ID: "inn-1", Name: "Thermo Patch", OwnerID: "inv-1"}},
		sharedWith:  map[string][]string{"inn-1": {"org-1"}},
		engaging:    map[string]bool{"inn-1unit-1": true},
	}
	notifier := &mockNotifier{}
	svc := NewActionService(actions, sections, supports, organisations, users, profiles, innovations, notifier, zap.NewNop())
	return svc, actions, sections, supports, notifier
}

func TestActionCreateDerivesDisplayID(t *testing.T) {
	svc, actions, sections, supports, notifier := newActionFixture()
	sections.sections[models.SectionEvidenceOfEffectiveness] = &models.Section{ID: "sec-1", InnovationID: "inn-1", Key: models.SectionEvidenceOfEffectiveness, Status: models.SectionStatusSubmitted}
	supports.supports["inn-1unit-1"] = &models.Support{ID: "sup-1", InnovationID: "inn-1", OrganisationUnitID: "unit-1", Status: models.SupportStatusEngaging}
	actions.counts["sec-1"] = 2

	action, err := svc.Create(context.Background(), accessorActor(models.RoleAccessor), "inn-1", models.CreateActionRequest{
		Section:     models.SectionEvidenceOfEffectiveness,
		Description: "please attach the trial results",
	})
	require.NoError(t, err)
	assert.Equal(t, "EE03", action.DisplayID)
	assert.Equal(t, models.ActionStatusRequested, action.Status)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, models.AudienceInnovators, notifier.calls[0].audience)
}

func TestActionCreateLazilyCreatesSection(t *testing.T) {
	svc, actions, sections, supports, _ := newActionFixture()
	supports.supports["inn-1unit-1"] = &models.Support{ID: "sup-1", InnovationID: "inn-1", OrganisationUnitID: "unit-1"}

	action, err := svc.Create(context.Background(), accessorActor(models.RoleQualifyingAccessor), "inn-1", models.CreateActionRequest{
		Section:     models.SectionMarketResearch,
		Description: "who are the competitors",
	})
	require.NoError(t, err)
	require.Len(t, sections.created, 1)
	assert.Equal(t, models.SectionStatusNotStarted, sections.created[0].Status)
	assert.Equal(t, "MR01", action.DisplayID)
	require.Len(t, actions.created, 1)
}

func TestActionCreateWithoutSupport(t *testing.T) {
	svc, actions, _, _, _ := newActionFixture()

	_, err := svc.Create(context.Background(), accessorActor(models.RoleQualifyingAccessor), "inn-1", models.CreateActionRequest{
		Section:     models.SectionMarketResearch,
		Description: "who are the competitors",
	})
	assert.Equal(t, appErrors.ErrSupportNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, actions.created)
}

func TestActionCreateRequiresUnitBeforeAnyWrite(t *testing.T) {
	svc, actions, sections, _, _ := newActionFixture()
	actor := accessorActor(models.RoleAccessor)
	actor.Organisation.UnitID = ""

	_, err := svc.Create(context.Background(), actor, "inn-1", models.CreateActionRequest{
		Section:     models.SectionMarketResearch,
		Description: "who are the competitors",
	})
	assert.Equal(t, appErrors.ErrMissingOrganisationUnit, err)
	assert.Empty(t, actions.created)
	assert.Empty(t, sections.created)
}

func TestActionUpdateByAccessorRejectsForeignUnit(t *testing.T) {
	svc, actions, _, _, _ := newActionFixture()
	innovationID := "inn-1"
	sectionKey := models.SectionMarketResearch
	actions.actions["act-1"] = &models.Action{ID: "act-1", Status: models.ActionStatusRequested, SectionKey: &sectionKey, InnovationID: &innovationID}
	actions.unitByID["act-1"] = "unit-other"

	_, err := svc.UpdateByAccessor(context.Background(), accessorActor(models.RoleAccessor), "inn-1", "act-1", models.UpdateActionRequest{
		Status: models.ActionStatusCompleted,
	})
	assert.Equal(t, appErrors.ErrInvalidData.Code, appErrors.FromError(err).Code)
	assert.Empty(t, actions.updated)
}

func TestActionUpdateByInnovatorWritesCommentWithStatus(t *testing.T) {
	svc, actions, _, _, notifier := newActionFixture()
	innovationID := "inn-1"
	creator := "acc-1"
	sectionKey := models.SectionMarketResearch
	actions.actions["act-1"] = &models.Action{ID: "act-1", Status: models.ActionStatusRequested, SectionKey: &sectionKey, InnovationID: &innovationID, CreatedBy: &creator}

	owner := models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}
	action, err := svc.UpdateByInnovator(context.Background(), owner, "inn-1", "act-1", models.UpdateActionRequest{
		Status:  models.ActionStatusInReview,
		Comment: "uploaded the study, please review",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActionStatusInReview, action.Status)
	require.Len(t, actions.comments, 1)
	assert.Equal(t, "inv-1", actions.comments[0].UserID)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, models.AudienceAccessors, notifier.calls[0].audience)
	assert.Equal(t, []string{"acc-1"}, notifier.calls[0].targets)
}

func TestActionResolveUnknownUserNameFails(t *testing.T) {
	svc, _, _, _, _ := newActionFixture()

	_, err := svc.resolveUserName(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, "user ghost not found", err.Error())
}

func TestActionFindResolvesNames(t *testing.T) {
	svc, actions, _, supports, _ := newActionFixture()
	innovationID := "inn-1"
	creator := "acc-1"
	supportID := "sup-1"
	sectionKey := models.SectionEvidenceOfEffectiveness
	supports.supports["inn-1unit-1"] = &models.Support{ID: supportID, InnovationID: "inn-1", OrganisationUnitID: "unit-1"}
	actions.actions["act-1"] = &models.Action{
		ID: "act-1", DisplayID: "EE01", Status: models.ActionStatusRequested,
		SectionKey: &sectionKey, InnovationID: &innovationID, CreatedBy: &creator, SupportID: &supportID,
	}

	detail, err := svc.Find(context.Background(), models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}, "inn-1", "act-1")
	require.NoError(t, err)
	assert.Equal(t, "Alex Reviewer", detail.CreatedByName)
	assert.Equal(t, "Devices Unit", detail.UnitName)
	assert.Equal(t, "Health Devices", detail.OrganisationName)
}
