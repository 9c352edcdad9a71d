package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/innovation-hub-api/internal/models"
)

func TestCreateWithRecipients(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO notifications").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO notification_users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO notification_users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	notification := &models.Notification{
		InnovationID: "inn-1",
		ContextType:  models.NotificationContextInnovation,
		ContextID:    "inn-1",
		Message:      "innovation submitted",
	}
	err := repo.CreateWithRecipients(context.Background(), notification, []string{"u1", "u2"})
	require.NoError(t, err)
	assert.NotEmpty(t, notification.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithRecipientsRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO notifications").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO notification_users").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	notification := &models.Notification{
		InnovationID: "inn-1",
		ContextType:  models.NotificationContextAction,
		ContextID:    "act-1",
		Message:      "action requested",
	}
	err := repo.CreateWithRecipients(context.Background(), notification, []string{"u1"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnreadCounters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	rows := sqlmock.NewRows([]string{"context_type", "count"}).
		AddRow(string(models.NotificationContextAction), 3).
		AddRow(string(models.NotificationContextComment), 1)
	mock.ExpectQuery(`SELECT n\.context_type, COUNT\(\*\) AS count`).
		WithArgs("u1").
		WillReturnRows(rows)

	counters, err := repo.UnreadCounters(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, counters, 2)
	assert.Equal(t, models.NotificationContextAction, counters[0].ContextType)
	assert.Equal(t, 3, counters[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDismiss(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec("UPDATE notification_users nu SET read_at").
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.Dismiss(context.Background(), "u1", models.NotificationContextComment, "com-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
