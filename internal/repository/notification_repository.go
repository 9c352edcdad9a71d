package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/innovation-hub-api/internal/models"
)

// NotificationRepository handles in-app notification persistence.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateWithRecipients inserts the notification head and one row per
// recipient atomically.
func (r *NotificationRepository) CreateWithRecipients(ctx context.Context, notification *models.Notification, recipientIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	notification.CreatedAt = now
	const query = `INSERT INTO notifications (id, innovation_id, context_type, context_id, message, created_at, created_by)
        VALUES (:id, :innovation_id, :context_type, :context_id, :message, :created_at, :created_by)`
	if _, err := tx.NamedExecContext(ctx, query, notification); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("create notification: %w", err)
	}
	for _, userID := range recipientIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO notification_users (notification_id, user_id, created_at) VALUES ($1, $2, $3)`,
			notification.ID, userID, now); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("create notification recipient: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit notification: %w", err)
	}
	return nil
}

// Dismiss marks a user's notifications on a context as read.
func (r *NotificationRepository) Dismiss(ctx context.Context, userID string, contextType models.NotificationContextType, contextID string) error {
	const query = `UPDATE notification_users nu SET read_at = $4
        FROM notifications n
        WHERE n.id = nu.notification_id AND nu.user_id = $1
          AND n.context_type = $2 AND n.context_id = $3 AND nu.read_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, userID, contextType, contextID, time.Now().UTC()); err != nil {
		return fmt.Errorf("dismiss notifications: %w", err)
	}
	return nil
}

// MarkAllRead marks every unread notification of a user as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	const query = `UPDATE notification_users SET read_at = $2 WHERE user_id = $1 AND read_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

// UnreadCounters aggregates unread notifications per context type.
func (r *NotificationRepository) UnreadCounters(ctx context.Context, userID string) ([]models.NotificationCounter, error) {
	const query = `SELECT n.context_type, COUNT(*) AS count
        FROM notification_users nu
        JOIN notifications n ON n.id = nu.notification_id
        WHERE nu.user_id = $1 AND nu.read_at IS NULL
        GROUP BY n.context_type`
	var counters []models.NotificationCounter
	if err := r.db.SelectContext(ctx, &counters, query, userID); err != nil {
		return nil, fmt.Errorf("count unread notifications: %w", err)
	}
	return counters, nil
}

// UnreadByContexts returns unread counts keyed by context id for a user.
func (r *NotificationRepository) UnreadByContexts(ctx context.Context, userID string, contextType models.NotificationContextType, contextIDs []string) (map[string]int, error) {
	if len(contextIDs) == 0 {
		return map[string]int{}, nil
	}
	query, args, err := sqlx.In(`SELECT n.context_id, COUNT(*) AS count
        FROM notification_users nu
        JOIN notifications n ON n.id = nu.notification_id
        WHERE nu.user_id = ? AND nu.read_at IS NULL AND n.context_type = ? AND n.context_id IN (?)
        GROUP BY n.context_id`, userID, contextType, contextIDs)
	if err != nil {
		return nil, fmt.Errorf("build unread query: %w", err)
	}
	query = r.db.Rebind(query)
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count unread by context: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int, len(contextIDs))
	for rows.Next() {
		var contextID string
		var count int
		if err := rows.Scan(&contextID, &count); err != nil {
			return nil, fmt.Errorf("scan unread count: %w", err)
		}
		counts[contextID] = count
	}
	return counts, nil
}
