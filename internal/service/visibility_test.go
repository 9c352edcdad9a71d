package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
)

type mockInnovations struct {
	innovations map[string]*models.Innovation
	sharedWith  map[string][]string
	engaging    map[string]bool
}

func (m *mockInnovations) FindByID(ctx context.Context, id string) (*models.Innovation, error) {
	if innovation, ok := m.innovations[id]; ok {
		return innovation, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockInnovations) FindForOwner(ctx context.Context, id, ownerID string) (*models.Innovation, error) {
	if innovation, ok := m.innovations[id]; ok && innovation.OwnerID == ownerID {
		return innovation, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockInnovations) FindSharedWithOrganisation(ctx context.Context, id, organisationID, unitID string, requireEngaging bool) (*models.Innovation, error) {
	innovation, ok := m.innovations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	for _, orgID := range m.sharedWith[id] {
		if orgID != organisationID {
			continue
		}
		if requireEngaging && !m.engaging[id+unitID] {
			return nil, sql.ErrNoRows
		}
		return innovation, nil
	}
	return nil, sql.ErrNoRows
}

func accessorActor(role models.AccessorRole) models.Actor {
	return models.Actor{
		ID:         "acc-1",
		ExternalID: "ext-acc-1",
		Type:       models.UserTypeAccessor,
		Organisation: &models.OrganisationContext{
			MembershipID:   "mem-1",
			Role:           role,
			OrganisationID: "org-1",
			UnitID:         "unit-1",
		},
	}
}

func TestEnsureAccessorContext(t *testing.T) {
	err := ensureAccessorContext(models.Actor{ID: "u1", Type: models.UserTypeInnovator})
	assert.Equal(t, appErrors.ErrInvalidUserType, err)

	err = ensureAccessorContext(models.Actor{ID: "u1", Type: models.UserTypeAccessor})
	assert.Equal(t, appErrors.ErrMissingOrganisation, err)

	err = ensureAccessorContext(models.Actor{
		ID:           "u1",
		Type:         models.UserTypeAccessor,
		Organisation: &models.OrganisationContext{OrganisationID: "org-1"},
	})
	assert.Equal(t, appErrors.ErrMissingOrganisationUnit, err)

	err = ensureAccessorContext(accessorActor(models.RoleAccessor))
	assert.NoError(t, err)
}

func TestResolveInnovationOwnerScope(t *testing.T) {
	innovations := &mockInnovations{innovations: map[string]*models.Innovation{
		"inn-1": {ID: "inn-1", Name: "Thermo Patch", OwnerID: "inv-1"},
	}}

	owner := models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}
	innovation, err := resolveInnovationForActor(context.Background(), innovations, owner, "inn-1")
	require.NoError(t, err)
	assert.Equal(t, "inn-1", innovation.ID)

	stranger := models.Actor{ID: "inv-2", Type: models.UserTypeInnovator}
	_, err = resolveInnovationForActor(context.Background(), innovations, stranger, "inn-1")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestResolveInnovationAccessorNeedsEngagingSupport(t *testing.T) {
	innovations := &mockInnovations{
		innovations: map[string]*models.Innovation{"inn-1": {ID: "inn-1", OwnerID: "inv-1"}},
		sharedWith:  map[string][]string{"inn-1": {"org-1"}},
		engaging:    map[string]bool{},
	}

	// Qualifying accessors see every shared innovation.
	innovation, err := resolveInnovationForActor(context.Background(), innovations, accessorActor(models.RoleQualifyingAccessor), "inn-1")
	require.NoError(t, err)
	assert.Equal(t, "inn-1", innovation.ID)

	// Plain accessors additionally need an engaging support from their unit.
	_, err = resolveInnovationForActor(context.Background(), innovations, accessorActor(models.RoleAccessor), "inn-1")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	innovations.engaging["inn-1unit-1"] = true
	innovation, err = resolveInnovationForActor(context.Background(), innovations, accessorActor(models.RoleAccessor), "inn-1")
	require.NoError(t, err)
	assert.Equal(t, "inn-1", innovation.ID)
}

func TestResolveInnovationAssessmentSeesEverything(t *testing.T) {
	innovations := &mockInnovations{innovations: map[string]*models.Innovation{
		"inn-1": {ID: "inn-1", OwnerID: "inv-1"},
	}}
	actor := models.Actor{ID: "na-1", Type: models.UserTypeAssessment}
	innovation, err := resolveInnovationForActor(context.Background(), innovations, actor, "inn-1")
	require.NoError(t, err)
	assert.Equal(t, "inn-1", innovation.ID)
}
