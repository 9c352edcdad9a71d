package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/innovation-hub-api/internal/models"
)

func TestSubmitBatchCreatesMissingAndFlipsExisting(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectBegin()
	// first key has no row yet: created directly as SUBMITTED
	mock.ExpectQuery("SELECT id, status FROM innovation_sections").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO innovation_sections").WillReturnResult(sqlmock.NewResult(1, 1))
	// second key exists as DRAFT: flipped
	mock.ExpectQuery("SELECT id, status FROM innovation_sections").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow("sec-2", models.SectionStatusDraft))
	mock.ExpectExec("UPDATE innovation_sections SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	// open actions on the flipped section close with it
	mock.ExpectExec("UPDATE innovation_actions SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	keys := []models.SectionKey{models.SectionValueProposition, models.SectionMarketResearch}
	submitted, err := repo.SubmitBatch(context.Background(), "inn-1", keys, "u1")
	require.NoError(t, err)
	assert.Equal(t, keys, submitted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitBatchSkipsAlreadySubmitted(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, status FROM innovation_sections").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow("sec-1", models.SectionStatusSubmitted))
	// no section update, no action close
	mock.ExpectCommit()

	submitted, err := repo.SubmitBatch(context.Background(), "inn-1", []models.SectionKey{models.SectionValueProposition}, "u1")
	require.NoError(t, err)
	assert.Empty(t, submitted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitBatchRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, status FROM innovation_sections").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow("sec-1", models.SectionStatusDraft))
	mock.ExpectExec("UPDATE innovation_sections SET status").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := repo.SubmitBatch(context.Background(), "inn-1", []models.SectionKey{models.SectionRevenueModel}, "u1")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDraftAssignsIDAndStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectExec("INSERT INTO innovation_sections").WillReturnResult(sqlmock.NewResult(1, 1))

	section := &models.Section{
		InnovationID: "inn-1",
		Key:          models.SectionCurrentCarePathway,
		Data:         []byte(`{"summary":"draft"}`),
	}
	err := repo.SaveDraft(context.Background(), section)
	require.NoError(t, err)
	assert.NotEmpty(t, section.ID)
	assert.Equal(t, models.SectionStatusDraft, section.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
