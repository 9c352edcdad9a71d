package repository

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/innovation-hub-api/internal/models"
)

// timestampArg matches a non-null time bind argument.
type timestampArg struct{}

func (timestampArg) Match(v driver.Value) bool {
	_, ok := v.(time.Time)
	return ok
}

func TestAssessmentUpdateStampsFinishedAtOnSubmission(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssessmentRepository(db)

	mock.ExpectBegin()
	// finished_at is the 11th bind of the update statement and must carry a
	// real timestamp on first submission, never NULL.
	mock.ExpectExec("UPDATE innovation_assessments SET").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			timestampArg{}, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM assessment_suggested_units").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO assessment_suggested_units").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE innovations SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assessment := &models.Assessment{ID: "ass-1", InnovationID: "inn-1"}
	err := repo.Update(context.Background(), assessment, []string{"unit-1"}, true)
	require.NoError(t, err)
	require.NotNil(t, assessment.FinishedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentUpdateKeepsFinishedAtOnResubmission(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssessmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE innovation_assessments SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM assessment_suggested_units").WillReturnResult(sqlmock.NewResult(0, 0))
	// no innovation status flip on a resubmission
	mock.ExpectCommit()

	finished := time.Date(2026, 5, 12, 9, 30, 0, 0, time.UTC)
	assessment := &models.Assessment{ID: "ass-1", InnovationID: "inn-1", FinishedAt: &finished}
	err := repo.Update(context.Background(), assessment, nil, false)
	require.NoError(t, err)
	require.NotNil(t, assessment.FinishedAt)
	assert.True(t, assessment.FinishedAt.Equal(finished))
	assert.NoError(t, mock.ExpectationsWereMet())
}
