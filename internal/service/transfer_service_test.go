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

type transferResolution struct {
	status     models.TransferStatus
	newOwnerID string
}

type mockTransferRepo struct {
	transfers   map[string]*models.Transfer
	resolutions []transferResolution
	created     []models.Transfer
}

func (m *mockTransferRepo) FindPendingByInnovation(ctx context.Context, innovationID string, expiryWindow time.Duration) (*models.Transfer, error) {
	for _, transfer := range m.transfers {
		if transfer.InnovationID == innovationID && transfer.Status == models.TransferStatusPending &&
			time.Since(transfer.CreatedAt) <= expiryWindow {
			return transfer, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockTransferRepo) FindByID(ctx context.Context, id string) (*models.Transfer, error) {
	if transfer, ok := m.transfers[id]; ok {
		copied := *transfer
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTransferRepo) Create(ctx context.Context, transfer *models.Transfer) error {
	transfer.ID = "tr-new"
	transfer.CreatedAt = time.Now().UTC()
	m.created = append(m.created, *transfer)
	if m.transfers == nil {
		m.transfers = make(map[string]*models.Transfer)
	}
	m.transfers[transfer.ID] = transfer
	return nil
}

func (m *mockTransferRepo) Resolve(ctx context.Context, transfer *models.Transfer, newOwnerID string) error {
	m.resolutions = append(m.resolutions, transferResolution{status: transfer.Status, newOwnerID: newOwnerID})
	m.transfers[transfer.ID] = transfer
	return nil
}

func (m *mockTransferRepo) ListPendingByEmail(ctx context.Context, email string, expiryWindow time.Duration) ([]models.Transfer, error) {
	var result []models.Transfer
	for _, transfer := range m.transfers {
		if transfer.Email == email && transfer.Status == models.TransferStatusPending {
			result = append(result, *transfer)
		}
	}
	return result, nil
}

func (m *mockTransferRepo) ListByCreator(ctx context.Context, userID string) ([]models.Transfer, error) {
	var result []models.Transfer
	for _, transfer := range m.transfers {
		if transfer.CreatedBy == userID {
			result = append(result, *transfer)
		}
	}
	return result, nil
}

func (m *mockTransferRepo) ExpireOlderThan(ctx context.Context, expiryWindow time.Duration) (int64, error) {
	var expired int64
	for _, transfer := range m.transfers {
		if transfer.Status == models.TransferStatusPending && time.Since(transfer.CreatedAt) > expiryWindow {
			transfer.Status = models.TransferStatusExpired
			expired++
		}
	}
	return expired, nil
}

type mockDirectory struct {
	byExternalID map[string]*directory.Profile
	byEmail      map[string]*directory.Profile
}

func (m *mockDirectory) GetProfile(ctx context.Context, externalID string) (*directory.Profile, error) {
	return m.byExternalID[externalID], nil
}

func (m *mockDirectory) GetByEmail(ctx context.Context, email string) (*directory.Profile, error) {
	return m.byEmail[email], nil
}

func newTransferFixture() (*TransferService, *mockTransferRepo, *mockDirectory, *mockEmails) {
	repo := &mockTransferRepo{transfers: map[string]*models.Transfer{}}
	users := &mockUsers{users: map[string]models.User{
		"inv-2": {ID: "inv-2", ExternalID: "ext-inv-2", Type: models.UserTypeInnovator},
	}}
	dir := &mockDirectory{
		byExternalID: map[string]*directory.Profile{
			"ext-inv-2": {ID: "ext-inv-2", Email: "next@example.com"},
		},
		byEmail: map[string]*directory.Profile{
			"next@example.com": {ID: "ext-inv-2", Email: "next@example.com"},
		},
	}
	innovations := &mockInnovations{innovations: map[string]*models.Innovation{
		"inn-1": {ID: "inn-1", Name: "Thermo Patch", OwnerID: "inv-1"},
	}}
	emails := &mockEmails{}
	svc := NewTransferService(repo, users, dir, innovations, emails, 744*time.Hour, zap.NewNop())
	return svc, repo, dir, emails
}

func TestTransferCreateRejectsSecondPending(t *testing.T) {
	svc, repo, _, _ := newTransferFixture()
	owner := models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}

	first, err := svc.Create(context.Background(), owner, "inn-1", models.CreateTransferRequest{Email: "next@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusPending, first.Status)

	_, err = svc.Create(context.Background(), owner, "inn-1", models.CreateTransferRequest{Email: "other@example.com"})
	assert.Equal(t, appErrors.ErrTransferExists.Code, appErrors.FromError(err).Code)
	assert.Len(t, repo.created, 1)
}

func TestTransferCreateUsesExistingUserTemplate(t *testing.T) {
	svc, _, _, emails := newTransferFixture()
	owner := models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}

	_, err := svc.Create(context.Background(), owner, "inn-1", models.CreateTransferRequest{Email: "Next@Example.com"})
	require.NoError(t, err)
	require.Len(t, emails.calls, 1)
	assert.Equal(t, models.EmailTransferOwnershipExistingUser, emails.calls[0].template)
	assert.Equal(t, []string{"inv-2"}, emails.calls[0].ids)
}

func TestTransferCreateInvitesUnknownEmailByAddress(t *testing.T) {
	svc, _, _, emails := newTransferFixture()
	owner := models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}

	_, err := svc.Create(context.Background(), owner, "inn-1", models.CreateTransferRequest{Email: "new.person@example.com"})
	require.NoError(t, err)
	require.Len(t, emails.calls, 1)
	assert.Equal(t, models.EmailTransferOwnershipNewUser, emails.calls[0].template)
	assert.Equal(t, []string{"new.person@example.com"}, emails.calls[0].addresses)
}

func TestTransferCancelOnlyByCreator(t *testing.T) {
	svc, repo, _, _ := newTransferFixture()
	repo.transfers["tr-1"] = &models.Transfer{ID: "tr-1", InnovationID: "inn-1", Email: "next@example.com", Status: models.TransferStatusPending, CreatedAt: time.Now().UTC(), CreatedBy: "inv-1"}

	_, err := svc.UpdateStatus(context.Background(), models.Actor{ID: "someone-else", Type: models.UserTypeInnovator}, "tr-1", models.UpdateTransferRequest{Status: models.TransferStatusCanceled})
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	resolved, err := svc.UpdateStatus(context.Background(), models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}, "tr-1", models.UpdateTransferRequest{Status: models.TransferStatusCanceled})
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusCanceled, resolved.Status)
}

func TestTransferCompleteByInvitedUserFlipsOwner(t *testing.T) {
	svc, repo, _, _ := newTransferFixture()
	repo.transfers["tr-1"] = &models.Transfer{ID: "tr-1", InnovationID: "inn-1", Email: "next@example.com", Status: models.TransferStatusPending, CreatedAt: time.Now().UTC(), CreatedBy: "inv-1"}

	invited := models.Actor{ID: "inv-2", ExternalID: "ext-inv-2", Type: models.UserTypeInnovator}
	resolved, err := svc.UpdateStatus(context.Background(), invited, "tr-1", models.UpdateTransferRequest{Status: models.TransferStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusCompleted, resolved.Status)
	require.Len(t, repo.resolutions, 1)
	assert.Equal(t, "inv-2", repo.resolutions[0].newOwnerID)
}

func TestTransferDeclineRejectsImpostor(t *testing.T) {
	svc, repo, dir, _ := newTransferFixture()
	repo.transfers["tr-1"] = &models.Transfer{ID: "tr-1", InnovationID: "inn-1", Email: "next@example.com", Status: models.TransferStatusPending, CreatedAt: time.Now().UTC(), CreatedBy: "inv-1"}
	dir.byExternalID["ext-imp"] = &directory.Profile{ID: "ext-imp", Email: "impostor@example.com"}

	impostor := models.Actor{ID: "imp-1", ExternalID: "ext-imp", Type: models.UserTypeInnovator}
	_, err := svc.UpdateStatus(context.Background(), impostor, "tr-1", models.UpdateTransferRequest{Status: models.TransferStatusDeclined})
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.resolutions)
}

func TestTransferResolveExpiredWindow(t *testing.T) {
	svc, repo, _, _ := newTransferFixture()
	repo.transfers["tr-1"] = &models.Transfer{ID: "tr-1", InnovationID: "inn-1", Email: "next@example.com", Status: models.TransferStatusPending, CreatedAt: time.Now().UTC().Add(-800 * time.Hour), CreatedBy: "inv-1"}

	_, err := svc.UpdateStatus(context.Background(), models.Actor{ID: "inv-1", Type: models.UserTypeInnovator}, "tr-1", models.UpdateTransferRequest{Status: models.TransferStatusCanceled})
	assert.Equal(t, appErrors.ErrTransferExpired.Code, appErrors.FromError(err).Code)
}

func TestTransferExpireStale(t *testing.T) {
	svc, repo, _, _ := newTransferFixture()
	repo.transfers["tr-1"] = &models.Transfer{ID: "tr-1", InnovationID: "inn-1", Email: "next@example.com", Status: models.TransferStatusPending, CreatedAt: time.Now().UTC().Add(-800 * time.Hour)}

	err := svc.ExpireStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusExpired, repo.transfers["tr-1"].Status)
}
