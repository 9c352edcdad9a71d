package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
)

type mockSectionRepo struct {
	sections    map[models.SectionKey]*models.Section
	counts      map[string]int
	drafts      []models.Section
	submitted   [][]models.SectionKey
	openBySecID map[string][]models.Action
}

func (m *mockSectionRepo) FindByKey(ctx context.Context, innovationID string, key models.SectionKey) (*models.Section, error) {
	if section, ok := m.sections[key]; ok {
		return section, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSectionRepo) ListByInnovation(ctx context.Context, innovationID string) ([]models.Section, error) {
	var result []models.Section
	for _, section := range m.sections {
		result = append(result, *section)
	}
	return result, nil
}

func (m *mockSectionRepo) SaveDraft(ctx context.Context, section *models.Section) error {
	section.ID = "sec-new"
	section.Status = models.SectionStatusDraft
	m.drafts = append(m.drafts, *section)
	return nil
}

func (m *mockSectionRepo) SubmitBatch(ctx context.Context, innovationID string, keys []models.SectionKey, actorID string) ([]models.SectionKey, error) {
	m.submitted = append(m.submitted, keys)
	var flipped []models.SectionKey
	for _, key := range keys {
		if section, ok := m.sections[key]; ok && section.Status == models.SectionStatusSubmitted {
			continue
		}
		flipped = append(flipped, key)
	}
	return flipped, nil
}

func (m *mockSectionRepo) CountOpenActions(ctx context.Context, innovationID string) (map[string]int, error) {
	return m.counts, nil
}

func (m *mockSectionRepo) ListOpenBySection(ctx context.Context, sectionID string) ([]models.Action, error) {
	return m.openBySecID[sectionID], nil
}

func newSectionFixture() (*SectionService, *mockSectionRepo) {
	repo := &mockSectionRepo{
		sections:    map[models.SectionKey]*models.Section{},
		counts:      map[string]int{},
		openBySecID: map[string][]models.Action{},
	}
	innovations := &mockInnovations{
		innovations: map[string]*models.Innovation{"inn-1": {ID: "inn-1", OwnerID: "inv-1"}},
		sharedWith:  map[string][]string{"inn-1": {"org-1"}},
	}
	svc := NewSectionService(repo, repo, innovations, zap.NewNop())
	return svc, repo
}

func TestSectionSaveCreatesDraft(t *testing.T) {
	svc, repo := newSectionFixture()
	owner := models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}

	section, err := svc.Save(context.Background(), owner, "inn-1", models.SectionValueProposition, models.SaveSectionRequest{
		Data: map[string]interface{}{"headline": "cuts triage time in half"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.SectionStatusDraft, section.Status)
	require.Len(t, repo.drafts, 1)
	assert.JSONEq(t, `{"headline":"cuts triage time in half"}`, string(repo.drafts[0].Data))
}

func TestSectionSaveOwnerOnly(t *testing.T) {
	svc, repo := newSectionFixture()

	_, err := svc.Save(context.Background(), accessorActor(models.RoleQualifyingAccessor), "inn-1", models.SectionValueProposition, models.SaveSectionRequest{
		Data: map[string]interface{}{"headline": "x"},
	})
	assert.Equal(t, appErrors.ErrInvalidUserType, err)
	assert.Empty(t, repo.drafts)
}

func TestSectionSubmitRejectsUnknownKeyWithoutTouchingOthers(t *testing.T) {
	svc, repo := newSectionFixture()
	owner := models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}

	_, err := svc.Submit(context.Background(), owner, "inn-1", models.SubmitSectionsRequest{
		Sections: []models.SectionKey{models.SectionValueProposition, "NOT_A_SECTION"},
	})
	assert.Equal(t, appErrors.ErrSectionNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.submitted)
}

func TestSectionSubmitBatch(t *testing.T) {
	svc, repo := newSectionFixture()
	owner := models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}

	submitted, err := svc.Submit(context.Background(), owner, "inn-1", models.SubmitSectionsRequest{
		Sections: []models.SectionKey{models.SectionValueProposition, models.SectionMarketResearch},
	})
	require.NoError(t, err)
	require.Len(t, repo.submitted, 1)
	assert.Len(t, repo.submitted[0], 2)
	assert.Equal(t, []models.SectionKey{models.SectionValueProposition, models.SectionMarketResearch}, submitted)
}

func TestSectionSubmitReportsOnlyNewlySubmitted(t *testing.T) {
	svc, repo := newSectionFixture()
	repo.sections[models.SectionValueProposition] = &models.Section{ID: "sec-1", Key: models.SectionValueProposition, Status: models.SectionStatusSubmitted}
	owner := models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}

	submitted, err := svc.Submit(context.Background(), owner, "inn-1", models.SubmitSectionsRequest{
		Sections: []models.SectionKey{models.SectionValueProposition, models.SectionMarketResearch},
	})
	require.NoError(t, err)
	assert.Equal(t, []models.SectionKey{models.SectionMarketResearch}, submitted)
}

func TestSectionFindAllCoversFullCatalogue(t *testing.T) {
	svc, repo := newSectionFixture()
	repo.sections[models.SectionValueProposition] = &models.Section{ID: "sec-1", Key: models.SectionValueProposition, Status: models.SectionStatusDraft}
	repo.counts["sec-1"] = 2
	owner := models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}

	summaries, err := svc.FindAll(context.Background(), owner, "inn-1")
	require.NoError(t, err)
	require.Len(t, summaries, len(models.SectionCatalogue()))
	assert.Equal(t, models.SectionInnovationDescription, summaries[0].Key)
	assert.Equal(t, models.SectionStatusNotStarted, summaries[0].Status)
	assert.Equal(t, models.SectionStatusDraft, summaries[1].Status)
	assert.Equal(t, 2, summaries[1].ActionCount)
}

func TestSectionFindUnknownSectionYieldsNotStarted(t *testing.T) {
	svc, _ := newSectionFixture()
	owner := models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}

	detail, err := svc.Find(context.Background(), owner, "inn-1", models.SectionRevenueModel)
	require.NoError(t, err)
	assert.Equal(t, models.SectionStatusNotStarted, detail.Status)
	assert.Empty(t, detail.Actions)
}
