package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/innovation-hub-api/internal/models"
)

// CommentRepository handles innovation comment persistence.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentColumns = `id, innovation_id, user_id, message, reply_to_id, action_id, organisation_unit_id, created_at, updated_at, deleted_at, created_by, updated_by`

// Create inserts a comment row.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	const query = `INSERT INTO innovation_comments (id, innovation_id, user_id, message, reply_to_id, action_id, organisation_unit_id, created_at, updated_at, created_by, updated_by)
        VALUES (:id, :innovation_id, :user_id, :message, :reply_to_id, :action_id, :organisation_unit_id, :created_at, :updated_at, :created_by, :updated_by)`
	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// FindByID returns one comment.
func (r *CommentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	query := fmt.Sprintf(`SELECT %s FROM innovation_comments WHERE id = $1 AND deleted_at IS NULL LIMIT 1`, commentColumns)
	var comment models.Comment
	if err := r.db.GetContext(ctx, &comment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return &comment, nil
}

// ListByInnovation returns all comments of an innovation, oldest first so
// threading can be assembled in one pass.
func (r *CommentRepository) ListByInnovation(ctx context.Context, innovationID string) ([]models.Comment, error) {
	query := fmt.Sprintf(`SELECT %s FROM innovation_comments
        WHERE innovation_id = $1 AND deleted_at IS NULL
        ORDER BY created_at ASC`, commentColumns)
	var comments []models.Comment
	if err := r.db.SelectContext(ctx, &comments, query, innovationID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
