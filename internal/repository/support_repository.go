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

// SupportRepository handles innovation support persistence.
type SupportRepository struct {
	db *sqlx.DB
}

// NewSupportRepository creates a new support repository.
func NewSupportRepository(db *sqlx.DB) *SupportRepository {
	return &SupportRepository{db: db}
}

// FindByInnovationAndUnit returns the support record of one unit on an innovation.
func (r *SupportRepository) FindByInnovationAndUnit(ctx context.Context, innovationID, unitID string) (*models.Support, error) {
	const query = `SELECT id, innovation_id, organisation_unit_id, status, accessor_ids, created_at, updated_at, deleted_at, created_by, updated_by
        FROM innovation_supports
        WHERE innovation_id = $1 AND organisation_unit_id = $2 AND deleted_at IS NULL LIMIT 1`
	var support models.Support
	if err := r.db.GetContext(ctx, &support, query, innovationID, unitID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find support: %w", err)
	}
	return &support, nil
}

// FindByID returns one support record.
func (r *SupportRepository) FindByID(ctx context.Context, supportID string) (*models.Support, error) {
	const query = `SELECT id, innovation_id, organisation_unit_id, status, accessor_ids, created_at, updated_at, deleted_at, created_by, updated_by
        FROM innovation_supports WHERE id = $1 AND deleted_at IS NULL LIMIT 1`
	var support models.Support
	if err := r.db.GetContext(ctx, &support, query, supportID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find support by id: %w", err)
	}
	return &support, nil
}

// ListByInnovation returns supports of an innovation joined with unit/org names.
func (r *SupportRepository) ListByInnovation(ctx context.Context, innovationID string) ([]models.Support, error) {
	const query = `SELECT sp.id, sp.innovation_id, sp.organisation_unit_id, sp.status, sp.accessor_ids,
            sp.created_at, sp.updated_at, sp.deleted_at, sp.created_by, sp.updated_by,
            u.name AS unit_name, o.id AS organisation_id, o.name AS organisation_name
        FROM innovation_supports sp
        JOIN organisation_units u ON u.id = sp.organisation_unit_id
        JOIN organisations o ON o.id = u.organisation_id
        WHERE sp.innovation_id = $1 AND sp.deleted_at IS NULL
        ORDER BY sp.created_at ASC`
	var supports []models.Support
	if err := r.db.SelectContext(ctx, &supports, query, innovationID); err != nil {
		return nil, fmt.Errorf("list supports: %w", err)
	}
	return supports, nil
}

// Create inserts a support record.
func (r *SupportRepository) Create(ctx context.Context, support *models.Support) error {
	if support.ID == "" {
		support.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	support.CreatedAt = now
	support.UpdatedAt = now
	const query = `INSERT INTO innovation_supports (id, innovation_id, organisation_unit_id, status, accessor_ids, created_at, updated_at, created_by, updated_by)
        VALUES (:id, :innovation_id, :organisation_unit_id, :status, :accessor_ids, :created_at, :updated_at, :created_by, :updated_by)`
	if _, err := r.db.NamedExecContext(ctx, query, support); err != nil {
		return fmt.Errorf("create support: %w", err)
	}
	return nil
}

// UpdateStatus transitions a support record and replaces its assigned accessors.
func (r *SupportRepository) UpdateStatus(ctx context.Context, support *models.Support) error {
	support.UpdatedAt = time.Now().UTC()
	const query = `UPDATE innovation_supports SET status = :status, accessor_ids = :accessor_ids, updated_by = :updated_by, updated_at = :updated_at
        WHERE id = :id AND deleted_at IS NULL`
	res, err := r.db.NamedExecContext(ctx, query, support)
	if err != nil {
		return fmt.Errorf("update support: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// EngagingAccessorIDs returns the accessor ids assigned to engaging supports
// of an innovation, deduplicated.
func (r *SupportRepository) EngagingAccessorIDs(ctx context.Context, innovationID string) ([]string, error) {
	const query = `SELECT DISTINCT unnest(accessor_ids) FROM innovation_supports
        WHERE innovation_id = $1 AND status = $2 AND deleted_at IS NULL`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, innovationID, models.SupportStatusEngaging); err != nil {
		return nil, fmt.Errorf("list engaging accessors: %w", err)
	}
	return ids, nil
}
