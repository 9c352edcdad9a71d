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

// AssessmentRepository handles needs assessment persistence.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository creates a new assessment repository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

const assessmentColumns = `id, innovation_id, assigned_to_id, summary, description, maturity_level,
    has_regulatory_approvals, has_evidence, has_validation, has_proposition,
    has_competition_knowledge, has_implementation_plan, has_scale_resource,
    finished_at, created_at, updated_at, deleted_at, created_by, updated_by`

// Create inserts the assessment, an optional starting comment, and flips the
// innovation to NEEDS_ASSESSMENT, all in one transaction.
func (r *AssessmentRepository) Create(ctx context.Context, assessment *models.Assessment, comment *models.Comment) error {
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
			return fmt.Errorf("create assessment comment: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE innovations SET status = $2, updated_by = $3, updated_at = $4 WHERE id = $1 AND deleted_at IS NULL`,
		assessment.InnovationID, models.InnovationStatusNeedsAssessment, assessment.AssignedToID, now); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("update innovation status: %w", err)
	}
	if assessment.ID == "" {
		assessment.ID = uuid.NewString()
	}
	assessment.CreatedAt = now
	assessment.UpdatedAt = now
	const query = `INSERT INTO innovation_assessments (id, innovation_id, assigned_to_id, summary, description, maturity_level,
            has_regulatory_approvals, has_evidence, has_validation, has_proposition,
            has_competition_knowledge, has_implementation_plan, has_scale_resource,
            finished_at, created_at, updated_at, created_by, updated_by)
        VALUES (:id, :innovation_id, :assigned_to_id, :summary, :description, :maturity_level,
            :has_regulatory_approvals, :has_evidence, :has_validation, :has_proposition,
            :has_competition_knowledge, :has_implementation_plan, :has_scale_resource,
            :finished_at, :created_at, :updated_at, :created_by, :updated_by)`
	if _, err := tx.NamedExecContext(ctx, query, assessment); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("create assessment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assessment: %w", err)
	}
	return nil
}

// FindByID returns one assessment scoped to its innovation.
func (r *AssessmentRepository) FindByID(ctx context.Context, assessmentID, innovationID string) (*models.Assessment, error) {
	query := fmt.Sprintf(`SELECT %s FROM innovation_assessments
        WHERE id = $1 AND innovation_id = $2 AND deleted_at IS NULL LIMIT 1`, assessmentColumns)
	var assessment models.Assessment
	if err := r.db.GetContext(ctx, &assessment, query, assessmentID, innovationID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assessment: %w", err)
	}
	return &assessment, nil
}

// Update persists assessment edits and the suggested unit set. On submission
// (submittedNow true) it stamps finished_at and flips the innovation to
// IN_PROGRESS in the same transaction; a resubmission never re-stamps.
func (r *AssessmentRepository) Update(ctx context.Context, assessment *models.Assessment, unitIDs []string, submittedNow bool) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	assessment.UpdatedAt = now
	if submittedNow && assessment.FinishedAt == nil {
		assessment.FinishedAt = &now
	}
	const query = `UPDATE innovation_assessments SET summary = :summary, description = :description, maturity_level = :maturity_level,
            has_regulatory_approvals = :has_regulatory_approvals, has_evidence = :has_evidence, has_validation = :has_validation,
            has_proposition = :has_proposition, has_competition_knowledge = :has_competition_knowledge,
            has_implementation_plan = :has_implementation_plan, has_scale_resource = :has_scale_resource,
            finished_at = :finished_at, updated_by = :updated_by, updated_at = :updated_at
        WHERE id = :id AND deleted_at IS NULL`
	if _, err := tx.NamedExecContext(ctx, query, assessment); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("update assessment: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM assessment_suggested_units WHERE assessment_id = $1`, assessment.ID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("clear suggested units: %w", err)
	}
	for _, unitID := range unitIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO assessment_suggested_units (assessment_id, organisation_unit_id) VALUES ($1, $2)`,
			assessment.ID, unitID); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert suggested unit: %w", err)
		}
	}

	if submittedNow {
		if _, err := tx.ExecContext(ctx,
			`UPDATE innovations SET status = $2, updated_by = $3, updated_at = $4 WHERE id = $1 AND deleted_at IS NULL`,
			assessment.InnovationID, models.InnovationStatusInProgress, assessment.UpdatedBy, now); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("update innovation status: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assessment update: %w", err)
	}
	return nil
}

// SuggestedUnitIDs returns the suggested organisation units of an assessment.
func (r *AssessmentRepository) SuggestedUnitIDs(ctx context.Context, assessmentID string) ([]string, error) {
	const query = `SELECT organisation_unit_id FROM assessment_suggested_units WHERE assessment_id = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, assessmentID); err != nil {
		return nil, fmt.Errorf("list suggested units: %w", err)
	}
	return ids, nil
}

// FindByInnovation returns the (single) assessment of an innovation.
func (r *AssessmentRepository) FindByInnovation(ctx context.Context, innovationID string) (*models.Assessment, error) {
	query := fmt.Sprintf(`SELECT %s FROM innovation_assessments
        WHERE innovation_id = $1 AND deleted_at IS NULL
        ORDER BY created_at DESC LIMIT 1`, assessmentColumns)
	var assessment models.Assessment
	if err := r.db.GetContext(ctx, &assessment, query, innovationID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find innovation assessment: %w", err)
	}
	return &assessment, nil
}
