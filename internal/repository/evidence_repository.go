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

// EvidenceRepository handles evidence items and their uploaded files.
type EvidenceRepository struct {
	db *sqlx.DB
}

// NewEvidenceRepository creates a new evidence repository.
func NewEvidenceRepository(db *sqlx.DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

const evidenceColumns = `id, innovation_id, evidence_type, summary, description, created_at, updated_at, deleted_at, created_by, updated_by`

// FindByID returns one evidence item scoped to its innovation.
func (r *EvidenceRepository) FindByID(ctx context.Context, evidenceID, innovationID string) (*models.Evidence, error) {
	query := fmt.Sprintf(`SELECT %s FROM innovation_evidence
        WHERE id = $1 AND innovation_id = $2 AND deleted_at IS NULL LIMIT 1`, evidenceColumns)
	var evidence models.Evidence
	if err := r.db.GetContext(ctx, &evidence, query, evidenceID, innovationID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find evidence: %w", err)
	}
	return &evidence, nil
}

// ListByInnovation returns the evidence items of an innovation.
func (r *EvidenceRepository) ListByInnovation(ctx context.Context, innovationID string) ([]models.Evidence, error) {
	query := fmt.Sprintf(`SELECT %s FROM innovation_evidence
        WHERE innovation_id = $1 AND deleted_at IS NULL ORDER BY created_at ASC`, evidenceColumns)
	var items []models.Evidence
	if err := r.db.SelectContext(ctx, &items, query, innovationID); err != nil {
		return nil, fmt.Errorf("list evidence: %w", err)
	}
	return items, nil
}

// Save inserts or updates an evidence item, relinks its files, and forces the
// evidence section back to DRAFT, all in one transaction.
func (r *EvidenceRepository) Save(ctx context.Context, evidence *models.Evidence, fileIDs []string, sectionKey models.SectionKey) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if evidence.ID == "" {
		evidence.ID = uuid.NewString()
		evidence.CreatedAt = now
	}
	evidence.UpdatedAt = now
	const query = `INSERT INTO innovation_evidence (id, innovation_id, evidence_type, summary, description, created_at, updated_at, created_by, updated_by)
        VALUES (:id, :innovation_id, :evidence_type, :summary, :description, :created_at, :updated_at, :created_by, :updated_by)
        ON CONFLICT (id) DO UPDATE SET evidence_type = EXCLUDED.evidence_type, summary = EXCLUDED.summary,
            description = EXCLUDED.description, updated_at = EXCLUDED.updated_at, updated_by = EXCLUDED.updated_by`
	if _, err := tx.NamedExecContext(ctx, query, evidence); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("save evidence: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE innovation_files SET evidence_id = NULL WHERE evidence_id = $1`, evidence.ID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("unlink evidence files: %w", err)
	}
	for _, fileID := range fileIDs {
		if _, err := tx.ExecContext(ctx,
			`UPDATE innovation_files SET evidence_id = $1 WHERE id = $2 AND innovation_id = $3 AND deleted_at IS NULL`,
			evidence.ID, fileID, evidence.InnovationID); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("link evidence file: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE innovation_sections SET status = $3, updated_by = $4, updated_at = $5
        WHERE innovation_id = $1 AND section_key = $2`,
		evidence.InnovationID, sectionKey, models.SectionStatusDraft, evidence.UpdatedBy, now); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("draft evidence section: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit evidence: %w", err)
	}
	return nil
}

// Delete soft deletes an evidence item and drafts the owning section.
func (r *EvidenceRepository) Delete(ctx context.Context, evidenceID, innovationID, actorID string, sectionKey models.SectionKey) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE innovation_evidence SET deleted_at = $3, updated_by = $4, updated_at = $3
        WHERE id = $1 AND innovation_id = $2 AND deleted_at IS NULL`,
		evidenceID, innovationID, now, actorID)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete evidence: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		tx.Rollback() //nolint:errcheck
		return sql.ErrNoRows
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE innovation_files SET deleted_at = $2 WHERE evidence_id = $1 AND deleted_at IS NULL`,
		evidenceID, now); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete evidence files: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE innovation_sections SET status = $3, updated_by = $4, updated_at = $5
        WHERE innovation_id = $1 AND section_key = $2`,
		innovationID, sectionKey, models.SectionStatusDraft, actorID, now); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("draft evidence section: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit evidence delete: %w", err)
	}
	return nil
}

// CreateFile registers an uploaded file.
func (r *EvidenceRepository) CreateFile(ctx context.Context, file *models.InnovationFile) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	file.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO innovation_files (id, innovation_id, evidence_id, display_name, storage_path, mime_type, size_bytes, created_at)
        VALUES (:id, :innovation_id, :evidence_id, :display_name, :storage_path, :mime_type, :size_bytes, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, file); err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

// FindFile returns one uploaded file scoped to its innovation.
func (r *EvidenceRepository) FindFile(ctx context.Context, fileID, innovationID string) (*models.InnovationFile, error) {
	const query = `SELECT id, innovation_id, evidence_id, display_name, storage_path, mime_type, size_bytes, created_at, deleted_at
        FROM innovation_files WHERE id = $1 AND innovation_id = $2 AND deleted_at IS NULL LIMIT 1`
	var file models.InnovationFile
	if err := r.db.GetContext(ctx, &file, query, fileID, innovationID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find file: %w", err)
	}
	return &file, nil
}

// ListFilesByEvidence returns the files linked to a set of evidence items.
func (r *EvidenceRepository) ListFilesByEvidence(ctx context.Context, evidenceIDs []string) (map[string][]models.InnovationFile, error) {
	if len(evidenceIDs) == 0 {
		return map[string][]models.InnovationFile{}, nil
	}
	query, args, err := sqlx.In(`SELECT id, innovation_id, evidence_id, display_name, storage_path, mime_type, size_bytes, created_at, deleted_at
        FROM innovation_files WHERE evidence_id IN (?) AND deleted_at IS NULL`, evidenceIDs)
	if err != nil {
		return nil, fmt.Errorf("build files query: %w", err)
	}
	query = r.db.Rebind(query)
	var files []models.InnovationFile
	if err := r.db.SelectContext(ctx, &files, query, args...); err != nil {
		return nil, fmt.Errorf("list evidence files: %w", err)
	}
	result := make(map[string][]models.InnovationFile, len(evidenceIDs))
	for _, file := range files {
		if file.EvidenceID != nil {
			result[*file.EvidenceID] = append(result[*file.EvidenceID], file)
		}
	}
	return result, nil
}
