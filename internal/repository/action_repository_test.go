package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/innovation-hub-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestCountBySection(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActionRepository(db)

	rows := sqlmock.NewRows([]string{"count"}).AddRow(4)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM innovation_actions WHERE section_id = \$1`).
		WithArgs("sec-1").
		WillReturnRows(rows)

	count, err := repo.CountBySection(context.Background(), "sec-1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActionRepository(db)

	mock.ExpectExec("INSERT INTO innovation_actions").WillReturnResult(sqlmock.NewResult(1, 1))

	creator := "acc-1"
	action := &models.Action{
		DisplayID:   "MR05",
		SectionID:   "sec-1",
		Status:      models.ActionStatusRequested,
		Description: "please add market research numbers",
		CreatedBy:   &creator,
	}
	err := repo.Create(context.Background(), action)
	require.NoError(t, err)
	assert.NotEmpty(t, action.ID)
	assert.False(t, action.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusWithCommentCommitsBoth(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO innovation_comments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE innovation_actions SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	action := &models.Action{ID: "act-1", Status: models.ActionStatusDeclined}
	comment := &models.Comment{InnovationID: "inn-1", UserID: "u1", Message: "not applicable"}
	err := repo.UpdateStatusWithComment(context.Background(), action, comment)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusWithCommentRollsBackOnCommentFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO innovation_comments").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	action := &models.Action{ID: "act-1", Status: models.ActionStatusDeclined}
	comment := &models.Comment{InnovationID: "inn-1", UserID: "u1", Message: "broken"}
	err := repo.UpdateStatusWithComment(context.Background(), action, comment)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusWithoutComment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE innovation_actions SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	action := &models.Action{ID: "act-1", Status: models.ActionStatusCompleted}
	err := repo.UpdateStatusWithComment(context.Background(), action, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByCreatorOpenOnly(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActionRepository(db)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM innovation_actions a`).WillReturnRows(countRows)

	now := time.Now()
	listRows := sqlmock.NewRows([]string{"id", "display_id", "status", "section_key", "created_at", "updated_at", "innovation_id", "innovation_name"}).
		AddRow("act-1", "ID01", string(models.ActionStatusRequested), string(models.SectionInnovationDescription), now, now, "inn-1", "Smart Bandage")
	mock.ExpectQuery(`SELECT a\.id, a\.display_id, a\.status, s\.section_key`).WillReturnRows(listRows)

	filter := models.ActionFilter{OpenOnly: true}
	filter.Normalize()
	items, total, err := repo.ListByCreator(context.Background(), "acc-1", filter)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "ID01", items[0].DisplayID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
