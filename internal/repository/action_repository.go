package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/innovation-hub-api/internal/models"
)

// ActionRepository handles action persistence.
type ActionRepository struct {
	db *sqlx.DB
}

// NewActionRepository creates a new action repository.
func NewActionRepository(db *sqlx.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

// CountBySection returns how many actions were ever raised on a section.
// Soft-deleted rows still count so display ids never repeat.
func (r *ActionRepository) CountBySection(ctx context.Context, sectionID string) (int, error) {
	const query = `SELECT COUNT(*) FROM innovation_actions WHERE section_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, sectionID); err != nil {
		return 0, fmt.Errorf("count section actions: %w", err)
	}
	return count, nil
}

// Create inserts an action row.
func (r *ActionRepository) Create(ctx context.Context, action *models.Action) error {
	if action.ID == "" {
		action.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	action.CreatedAt = now
	action.UpdatedAt = now
	const query = `INSERT INTO innovation_actions (id, display_id, section_id, support_id, status, description, created_at, updated_at, created_by, updated_by)
        VALUES (:id, :display_id, :section_id, :support_id, :status, :description, :created_at, :updated_at, :created_by, :updated_by)`
	if _, err := r.db.NamedExecContext(ctx, query, action); err != nil {
		return fmt.Errorf("create action: %w", err)
	}
	return nil
}

// FindByID returns one action joined with its section context.
func (r *ActionRepository) FindByID(ctx context.Context, actionID, innovationID string) (*models.Action, error) {
	const query = `SELECT a.id, a.display_id, a.section_id, a.support_id, a.status, a.description,
            a.created_at, a.updated_at, a.deleted_at, a.created_by, a.updated_by,
            s.section_key, s.innovation_id
        FROM innovation_actions a
        JOIN innovation_sections s ON s.id = a.section_id
        WHERE a.id = $1 AND s.innovation_id = $2 AND a.deleted_at IS NULL LIMIT 1`
	var action models.Action
	if err := r.db.GetContext(ctx, &action, query, actionID, innovationID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find action: %w", err)
	}
	return &action, nil
}

// SupportUnitID returns the organisation unit owning the action's support.
func (r *ActionRepository) SupportUnitID(ctx context.Context, actionID string) (string, error) {
	const query = `SELECT sp.organisation_unit_id
        FROM innovation_actions a
        JOIN innovation_supports sp ON sp.id = a.support_id
        WHERE a.id = $1 LIMIT 1`
	var unitID string
	if err := r.db.GetContext(ctx, &unitID, query, actionID); err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("find action support unit: %w", err)
	}
	return unitID, nil
}

// UpdateStatusWithComment transitions the action and optionally writes the
// accompanying comment in the same transaction.
func (r *ActionRepository) UpdateStatusWithComment(ctx context.Context, action *models.Action, comment *models.Comment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if comment != nil {
		if comment.ID == "" {
			comment.ID = uuid.NewString()
		}
		comment.CreatedAt = now
		comment.UpdatedAt = now
		const commentQuery = `INSERT INTO innovation_comments (id, innovation_id, user_id, message, reply_to_id, action_id, organisation_unit_id, created_at, updated_at, created_by, updated_by)
            VALUES (:id, :innovation_id, :user_id, :message, :reply_to_id, :action_id, :organisation_unit_id, :created_at, :updated_at, :created_by, :updated_by)`
		if _, err := tx.NamedExecContext(ctx, commentQuery, comment); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("create action comment: %w", err)
		}
	}
	action.UpdatedAt = now
	const actionQuery = `UPDATE innovation_actions SET status = :status, updated_by = :updated_by, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, actionQuery, action); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("update action: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit action update: %w", err)
	}
	return nil
}

// ListByInnovation returns the actions of an innovation, newest first.
func (r *ActionRepository) ListByInnovation(ctx context.Context, innovationID string) ([]models.Action, error) {
	const query = `SELECT a.id, a.display_id, a.section_id, a.support_id, a.status, a.description,
            a.created_at, a.updated_at, a.deleted_at, a.created_by, a.updated_by,
            s.section_key, s.innovation_id
        FROM innovation_actions a
        JOIN innovation_sections s ON s.id = a.section_id
        WHERE s.innovation_id = $1 AND a.deleted_at IS NULL
        ORDER BY a.created_at DESC`
	var actions []models.Action
	if err := r.db.SelectContext(ctx, &actions, query, innovationID); err != nil {
		return nil, fmt.Errorf("list innovation actions: %w", err)
	}
	return actions, nil
}

// ListOpenBySection returns outstanding actions of one section.
func (r *ActionRepository) ListOpenBySection(ctx context.Context, sectionID string) ([]models.Action, error) {
	query, args, err := sqlx.In(`SELECT id, display_id, section_id, support_id, status, description, created_at, updated_at, deleted_at, created_by, updated_by
        FROM innovation_actions
        WHERE section_id = ? AND status IN (?) AND deleted_at IS NULL
        ORDER BY created_at DESC`, sectionID, models.OpenActionStatuses)
	if err != nil {
		return nil, fmt.Errorf("build open actions query: %w", err)
	}
	query = r.db.Rebind(query)
	var actions []models.Action
	if err := r.db.SelectContext(ctx, &actions, query, args...); err != nil {
		return nil, fmt.Errorf("list open actions: %w", err)
	}
	return actions, nil
}

// ListByCreator returns the accessor worklist with paging and sorting.
func (r *ActionRepository) ListByCreator(ctx context.Context, creatorID string, filter models.ActionFilter) ([]models.ActionListItem, int, error) {
	where := `FROM innovation_actions a
        JOIN innovation_sections s ON s.id = a.section_id
        JOIN innovations i ON i.id = s.innovation_id AND i.deleted_at IS NULL
        WHERE a.created_by = $1 AND a.deleted_at IS NULL`
	args := []interface{}{creatorID}

	statuses := filter.Statuses
	if filter.OpenOnly {
		statuses = models.OpenActionStatuses
	}
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		where += fmt.Sprintf(" AND a.status IN (%s)", strings.Join(placeholders, ","))
	}
	if filter.InnovationID != "" {
		args = append(args, filter.InnovationID)
		where += fmt.Sprintf(" AND i.id = $%d", len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count actions: %w", err)
	}

	sortColumn := "a.created_at"
	switch filter.SortBy {
	case "display_id":
		sortColumn = "a.display_id"
	case "status":
		sortColumn = "a.status"
	case "innovation":
		sortColumn = "i.name"
	case "updated_at":
		sortColumn = "a.updated_at"
	}
	order := "DESC"
	if filter.SortOrder == "asc" {
		order = "ASC"
	}

	args = append(args, filter.PageSize, filter.Offset())
	query := fmt.Sprintf(`SELECT a.id, a.display_id, a.status, s.section_key, a.created_at, a.updated_at,
            i.id AS innovation_id, i.name AS innovation_name %s
        ORDER BY %s %s LIMIT $%d OFFSET $%d`, where, sortColumn, order, len(args)-1, len(args))
	var items []models.ActionListItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list actions: %w", err)
	}
	return items, total, nil
}
