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

// InnovationRepository handles innovation persistence and data sharing rows.
type InnovationRepository struct {
	db *sqlx.DB
}

// NewInnovationRepository creates a new innovation repository.
func NewInnovationRepository(db *sqlx.DB) *InnovationRepository {
	return &InnovationRepository{db: db}
}

// Create inserts an innovation and its initial share set atomically.
func (r *InnovationRepository) Create(ctx context.Context, innovation *models.Innovation, organisationIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if innovation.ID == "" {
		innovation.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	innovation.CreatedAt = now
	innovation.UpdatedAt = now
	const query = `INSERT INTO innovations (id, name, description, country_name, postcode, status, owner_id, created_at, updated_at, created_by, updated_by)
        VALUES (:id, :name, :description, :country_name, :postcode, :status, :owner_id, :created_at, :updated_at, :created_by, :updated_by)`
	if _, err := tx.NamedExecContext(ctx, query, innovation); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("create innovation: %w", err)
	}
	for _, orgID := range organisationIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO innovation_shares (innovation_id, organisation_id, created_at) VALUES ($1, $2, $3)`,
			innovation.ID, orgID, now); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("create innovation share: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit innovation: %w", err)
	}
	return nil
}

// FindByID returns one innovation.
func (r *InnovationRepository) FindByID(ctx context.Context, id string) (*models.Innovation, error) {
	const query = `SELECT id, name, description, country_name, postcode, status, owner_id, submitted_at, created_at, updated_at, deleted_at, created_by, updated_by
        FROM innovations WHERE id = $1 AND deleted_at IS NULL LIMIT 1`
	var innovation models.Innovation
	if err := r.db.GetContext(ctx, &innovation, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find innovation: %w", err)
	}
	return &innovation, nil
}

// FindForOwner returns the innovation only when owned by the given user.
func (r *InnovationRepository) FindForOwner(ctx context.Context, id, ownerID string) (*models.Innovation, error) {
	const query = `SELECT id, name, description, country_name, postcode, status, owner_id, submitted_at, created_at, updated_at, deleted_at, created_by, updated_by
        FROM innovations WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL LIMIT 1`
	var innovation models.Innovation
	if err := r.db.GetContext(ctx, &innovation, query, id, ownerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find innovation for owner: %w", err)
	}
	return &innovation, nil
}

// FindSharedWithOrganisation returns the innovation only when shared with
// the organisation. When requireEngaging is true an additional engaging
// support for the given unit must exist.
func (r *InnovationRepository) FindSharedWithOrganisation(ctx context.Context, id, organisationID, unitID string, requireEngaging bool) (*models.Innovation, error) {
	query := `SELECT i.id, i.name, i.description, i.country_name, i.postcode, i.status, i.owner_id, i.submitted_at, i.created_at, i.updated_at, i.deleted_at, i.created_by, i.updated_by
        FROM innovations i
        JOIN innovation_shares s ON s.innovation_id = i.id AND s.organisation_id = $2
        WHERE i.id = $1 AND i.deleted_at IS NULL`
	args := []interface{}{id, organisationID}
	if requireEngaging {
		query += ` AND EXISTS (
            SELECT 1 FROM innovation_supports sp
            WHERE sp.innovation_id = i.id AND sp.organisation_unit_id = $3
              AND sp.status = $4 AND sp.deleted_at IS NULL)`
		args = append(args, unitID, models.SupportStatusEngaging)
	}
	query += " LIMIT 1"
	var innovation models.Innovation
	if err := r.db.GetContext(ctx, &innovation, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find shared innovation: %w", err)
	}
	return &innovation, nil
}

// ListByOwner returns the owner's innovations with paging.
func (r *InnovationRepository) ListByOwner(ctx context.Context, ownerID string, opts models.ListOptions) ([]models.InnovationListItem, int, error) {
	const countQuery = `SELECT COUNT(*) FROM innovations WHERE owner_id = $1 AND deleted_at IS NULL`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, ownerID); err != nil {
		return nil, 0, fmt.Errorf("count innovations: %w", err)
	}
	const query = `SELECT id, name, status, submitted_at, country_name, postcode, owner_id
        FROM innovations WHERE owner_id = $1 AND deleted_at IS NULL
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	var items []models.InnovationListItem
	if err := r.db.SelectContext(ctx, &items, query, ownerID, opts.PageSize, opts.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list innovations: %w", err)
	}
	return items, total, nil
}

// ListSharedWithOrganisation returns innovations shared with an organisation,
// optionally filtered by status, with paging.
func (r *InnovationRepository) ListSharedWithOrganisation(ctx context.Context, organisationID string, filter models.InnovationFilter) ([]models.InnovationListItem, int, error) {
	where := `FROM innovations i
        JOIN innovation_shares s ON s.innovation_id = i.id
        WHERE s.organisation_id = $1 AND i.deleted_at IS NULL`
	args := []interface{}{organisationID}
	if len(filter.Status) > 0 {
		placeholders := ""
		for _, status := range filter.Status {
			if placeholders != "" {
				placeholders += ","
			}
			args = append(args, status)
			placeholders += fmt.Sprintf("$%d", len(args))
		}
		where += fmt.Sprintf(" AND i.status IN (%s)", placeholders)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count shared innovations: %w", err)
	}

	args = append(args, filter.PageSize, filter.Offset())
	query := fmt.Sprintf(`SELECT i.id, i.name, i.status, i.submitted_at, i.country_name, i.postcode, i.owner_id %s
        ORDER BY i.submitted_at DESC NULLS LAST LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))
	var items []models.InnovationListItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list shared innovations: %w", err)
	}
	return items, total, nil
}

// ListAll returns innovations regardless of scope, for assessment users.
func (r *InnovationRepository) ListAll(ctx context.Context, filter models.InnovationFilter) ([]models.InnovationListItem, int, error) {
	where := `FROM innovations i LEFT JOIN innovation_assessments a ON a.innovation_id = i.id AND a.deleted_at IS NULL
        WHERE i.deleted_at IS NULL`
	args := []interface{}{}
	if len(filter.Status) > 0 {
		placeholders := ""
		for _, status := range filter.Status {
			if placeholders != "" {
				placeholders += ","
			}
			args = append(args, status)
			placeholders += fmt.Sprintf("$%d", len(args))
		}
		where += fmt.Sprintf(" AND i.status IN (%s)", placeholders)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count innovations: %w", err)
	}

	args = append(args, filter.PageSize, filter.Offset())
	query := fmt.Sprintf(`SELECT i.id, i.name, i.status, i.submitted_at, i.country_name, i.postcode, i.owner_id, a.id AS assessment_id %s
        ORDER BY i.submitted_at DESC NULLS LAST LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))
	var items []models.InnovationListItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list innovations: %w", err)
	}
	return items, total, nil
}

// UpdateStatus transitions the innovation status and stamps the actor.
func (r *InnovationRepository) UpdateStatus(ctx context.Context, id string, status models.InnovationStatus, updatedBy string) error {
	query := `UPDATE innovations SET status = $2, updated_by = $3, updated_at = $4 WHERE id = $1 AND deleted_at IS NULL`
	args := []interface{}{id, status, updatedBy, time.Now().UTC()}
	if status == models.InnovationStatusWaitingNeedsAssessment {
		query = `UPDATE innovations SET status = $2, updated_by = $3, updated_at = $4, submitted_at = $4 WHERE id = $1 AND deleted_at IS NULL`
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update innovation status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetShareOrganisationIDs returns the organisation ids an innovation is shared with.
func (r *InnovationRepository) GetShareOrganisationIDs(ctx context.Context, innovationID string) ([]string, error) {
	const query = `SELECT organisation_id FROM innovation_shares WHERE innovation_id = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, innovationID); err != nil {
		return nil, fmt.Errorf("list innovation shares: %w", err)
	}
	return ids, nil
}

// ReplaceShares swaps the share set atomically and returns the added ids.
func (r *InnovationRepository) ReplaceShares(ctx context.Context, innovationID string, organisationIDs []string) ([]string, error) {
	existing, err := r.GetShareOrganisationIDs(ctx, innovationID)
	if err != nil {
		return nil, err
	}
	existingSet := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		existingSet[id] = struct{}{}
	}
	var added []string
	for _, id := range organisationIDs {
		if _, ok := existingSet[id]; !ok {
			added = append(added, id)
		}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM innovation_shares WHERE innovation_id = $1`, innovationID); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("clear innovation shares: %w", err)
	}
	now := time.Now().UTC()
	for _, orgID := range organisationIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO innovation_shares (innovation_id, organisation_id, created_at) VALUES ($1, $2, $3)`,
			innovationID, orgID, now); err != nil {
			tx.Rollback() //nolint:errcheck
			return nil, fmt.Errorf("insert innovation share: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit innovation shares: %w", err)
	}
	return added, nil
}

// Archive soft deletes the innovation.
func (r *InnovationRepository) Archive(ctx context.Context, id, updatedBy string) error {
	now := time.Now().UTC()
	const query = `UPDATE innovations SET status = $2, deleted_at = $3, updated_by = $4, updated_at = $3
        WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, models.InnovationStatusArchived, now, updatedBy)
	if err != nil {
		return fmt.Errorf("archive innovation: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TransferOwnership flips the innovation owner.
func (r *InnovationRepository) TransferOwnership(ctx context.Context, tx *sqlx.Tx, id, newOwnerID, updatedBy string) error {
	const query = `UPDATE innovations SET owner_id = $2, updated_by = $3, updated_at = $4 WHERE id = $1 AND deleted_at IS NULL`
	if _, err := tx.ExecContext(ctx, query, id, newOwnerID, updatedBy, time.Now().UTC()); err != nil {
		return fmt.Errorf("transfer innovation ownership: %w", err)
	}
	return nil
}
