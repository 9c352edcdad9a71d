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

// SectionRepository handles innovation record section persistence.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository creates a new section repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

const sectionColumns = `id, innovation_id, section_key, status, data, submitted_at, created_at, updated_at, created_by, updated_by`

// FindByKey returns the section row for one catalogue key.
func (r *SectionRepository) FindByKey(ctx context.Context, innovationID string, key models.SectionKey) (*models.Section, error) {
	query := fmt.Sprintf(`SELECT %s FROM innovation_sections WHERE innovation_id = $1 AND section_key = $2 LIMIT 1`, sectionColumns)
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, innovationID, key); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find section: %w", err)
	}
	return &section, nil
}

// ListByInnovation returns all persisted sections of an innovation.
func (r *SectionRepository) ListByInnovation(ctx context.Context, innovationID string) ([]models.Section, error) {
	query := fmt.Sprintf(`SELECT %s FROM innovation_sections WHERE innovation_id = $1`, sectionColumns)
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, innovationID); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// Create inserts a section row.
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	section.CreatedAt = now
	section.UpdatedAt = now
	const query = `INSERT INTO innovation_sections (id, innovation_id, section_key, status, data, submitted_at, created_at, updated_at, created_by, updated_by)
        VALUES (:id, :innovation_id, :section_key, :status, :data, :submitted_at, :created_at, :updated_at, :created_by, :updated_by)`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}

// SaveDraft upserts section answers and moves the section to DRAFT.
func (r *SectionRepository) SaveDraft(ctx context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if section.CreatedAt.IsZero() {
		section.CreatedAt = now
	}
	section.UpdatedAt = now
	section.Status = models.SectionStatusDraft
	const query = `INSERT INTO innovation_sections (id, innovation_id, section_key, status, data, submitted_at, created_at, updated_at, created_by, updated_by)
        VALUES (:id, :innovation_id, :section_key, :status, :data, :submitted_at, :created_at, :updated_at, :created_by, :updated_by)
        ON CONFLICT (innovation_id, section_key)
        DO UPDATE SET status = EXCLUDED.status, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at, updated_by = EXCLUDED.updated_by`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("save section draft: %w", err)
	}
	return nil
}

// MarkDraft forces an existing section back to DRAFT.
func (r *SectionRepository) MarkDraft(ctx context.Context, innovationID string, key models.SectionKey, updatedBy string) error {
	const query = `UPDATE innovation_sections SET status = $3, updated_by = $4, updated_at = $5
        WHERE innovation_id = $1 AND section_key = $2`
	if _, err := r.db.ExecContext(ctx, query, innovationID, key, models.SectionStatusDraft, updatedBy, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark section draft: %w", err)
	}
	return nil
}

// SubmitBatch atomically submits the given catalogue keys: existing rows are
// flipped to SUBMITTED, missing rows are created directly as SUBMITTED and
// already submitted rows stay untouched. Open actions on the flipped sections
// close in the same transaction. Returns the keys submitted by this call.
func (r *SectionRepository) SubmitBatch(ctx context.Context, innovationID string, keys []models.SectionKey, actorID string) ([]models.SectionKey, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	var submitted []models.SectionKey
	var flippedIDs []string
	for _, key := range keys {
		var row struct {
			ID     string               `db:"id"`
			Status models.SectionStatus `db:"status"`
		}
		err := tx.GetContext(ctx, &row,
			`SELECT id, status FROM innovation_sections WHERE innovation_id = $1 AND section_key = $2 LIMIT 1`,
			innovationID, key)
		switch {
		case err == sql.ErrNoRows:
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO innovation_sections (id, innovation_id, section_key, status, submitted_at, created_at, updated_at, created_by, updated_by)
                VALUES ($1, $2, $3, $4, $5, $5, $5, $6, $6)`,
				uuid.NewString(), innovationID, key, models.SectionStatusSubmitted, now, actorID); err != nil {
				tx.Rollback() //nolint:errcheck
				return nil, fmt.Errorf("create submitted section: %w", err)
			}
			submitted = append(submitted, key)
		case err != nil:
			tx.Rollback() //nolint:errcheck
			return nil, fmt.Errorf("lookup section: %w", err)
		case row.Status == models.SectionStatusSubmitted:
			// Resubmitting a submitted section is a no-op.
		default:
			if _, err := tx.ExecContext(ctx,
				`UPDATE innovation_sections SET status = $2, submitted_at = $3, updated_by = $4, updated_at = $3 WHERE id = $1`,
				row.ID, models.SectionStatusSubmitted, now, actorID); err != nil {
				tx.Rollback() //nolint:errcheck
				return nil, fmt.Errorf("submit section: %w", err)
			}
			submitted = append(submitted, key)
			flippedIDs = append(flippedIDs, row.ID)
		}
	}
	if len(flippedIDs) > 0 {
		query, args, err := sqlx.In(`UPDATE innovation_actions SET status = ?, updated_by = ?, updated_at = ?
            WHERE section_id IN (?) AND status IN (?) AND deleted_at IS NULL`,
			models.ActionStatusCompleted, actorID, now, flippedIDs, models.OpenActionStatuses)
		if err != nil {
			tx.Rollback() //nolint:errcheck
			return nil, fmt.Errorf("build action close query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			tx.Rollback() //nolint:errcheck
			return nil, fmt.Errorf("close section actions: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit section submission: %w", err)
	}
	return submitted, nil
}

// CountOpenActions returns open action counts keyed by section id.
func (r *SectionRepository) CountOpenActions(ctx context.Context, innovationID string) (map[string]int, error) {
	query, args, err := sqlx.In(`SELECT s.id AS section_id, COUNT(a.id) AS action_count
        FROM innovation_sections s
        JOIN innovation_actions a ON a.section_id = s.id AND a.deleted_at IS NULL AND a.status IN (?)
        WHERE s.innovation_id = ?
        GROUP BY s.id`, models.OpenActionStatuses, innovationID)
	if err != nil {
		return nil, fmt.Errorf("build action count query: %w", err)
	}
	query = r.db.Rebind(query)
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count section actions: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var sectionID string
		var count int
		if err := rows.Scan(&sectionID, &count); err != nil {
			return nil, fmt.Errorf("scan action count: %w", err)
		}
		counts[sectionID] = count
	}
	return counts, nil
}
