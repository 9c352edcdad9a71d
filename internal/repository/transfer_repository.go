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

// TransferRepository handles innovation ownership transfer persistence.
type TransferRepository struct {
	db *sqlx.DB
}

// NewTransferRepository creates a new transfer repository.
func NewTransferRepository(db *sqlx.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

const transferColumns = `t.id, t.innovation_id, t.email, t.status, t.finished_at, t.created_at, t.updated_at, t.created_by, t.updated_by`

// FindPendingByInnovation returns a live PENDING transfer for an innovation.
// Transfers past the expiry cutoff do not count.
func (r *TransferRepository) FindPendingByInnovation(ctx context.Context, innovationID string, expiryWindow time.Duration) (*models.Transfer, error) {
	query := fmt.Sprintf(`SELECT %s FROM innovation_transfers t
        WHERE t.innovation_id = $1 AND t.status = $2 AND t.created_at > $3 LIMIT 1`, transferColumns)
	cutoff := time.Now().UTC().Add(-expiryWindow)
	var transfer models.Transfer
	if err := r.db.GetContext(ctx, &transfer, query, innovationID, models.TransferStatusPending, cutoff); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find pending transfer: %w", err)
	}
	return &transfer, nil
}

// FindByID returns one transfer.
func (r *TransferRepository) FindByID(ctx context.Context, id string) (*models.Transfer, error) {
	query := fmt.Sprintf(`SELECT %s, i.name AS innovation_name FROM innovation_transfers t
        JOIN innovations i ON i.id = t.innovation_id
        WHERE t.id = $1 LIMIT 1`, transferColumns)
	var transfer models.Transfer
	if err := r.db.GetContext(ctx, &transfer, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find transfer: %w", err)
	}
	return &transfer, nil
}

// Create inserts a transfer row.
func (r *TransferRepository) Create(ctx context.Context, transfer *models.Transfer) error {
	if transfer.ID == "" {
		transfer.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	transfer.CreatedAt = now
	transfer.UpdatedAt = now
	const query = `INSERT INTO innovation_transfers (id, innovation_id, email, status, created_at, updated_at, created_by, updated_by)
        VALUES (:id, :innovation_id, :email, :status, :created_at, :updated_at, :created_by, :updated_by)`
	if _, err := r.db.NamedExecContext(ctx, query, transfer); err != nil {
		return fmt.Errorf("create transfer: %w", err)
	}
	return nil
}

// Resolve finalises a pending transfer. A COMPLETED resolution flips the
// innovation owner in the same transaction.
func (r *TransferRepository) Resolve(ctx context.Context, transfer *models.Transfer, newOwnerID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	transfer.UpdatedAt = now
	transfer.FinishedAt = &now
	const query = `UPDATE innovation_transfers SET status = :status, finished_at = :finished_at, updated_by = :updated_by, updated_at = :updated_at
        WHERE id = :id AND status = 'PENDING'`
	res, err := tx.NamedExecContext(ctx, query, transfer)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("resolve transfer: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		tx.Rollback() //nolint:errcheck
		return sql.ErrNoRows
	}
	if transfer.Status == models.TransferStatusCompleted && newOwnerID != "" {
		if _, err := tx.ExecContext(ctx,
			`UPDATE innovations SET owner_id = $2, updated_by = $3, updated_at = $4 WHERE id = $1 AND deleted_at IS NULL`,
			transfer.InnovationID, newOwnerID, newOwnerID, now); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("transfer innovation ownership: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transfer: %w", err)
	}
	return nil
}

// ListPendingByEmail returns live pending transfers addressed to an email.
func (r *TransferRepository) ListPendingByEmail(ctx context.Context, email string, expiryWindow time.Duration) ([]models.Transfer, error) {
	query := fmt.Sprintf(`SELECT %s, i.name AS innovation_name FROM innovation_transfers t
        JOIN innovations i ON i.id = t.innovation_id
        WHERE t.email = $1 AND t.status = $2 AND t.created_at > $3
        ORDER BY t.created_at DESC`, transferColumns)
	cutoff := time.Now().UTC().Add(-expiryWindow)
	var transfers []models.Transfer
	if err := r.db.SelectContext(ctx, &transfers, query, email, models.TransferStatusPending, cutoff); err != nil {
		return nil, fmt.Errorf("list pending transfers: %w", err)
	}
	return transfers, nil
}

// ListByCreator returns transfers raised by a user.
func (r *TransferRepository) ListByCreator(ctx context.Context, userID string) ([]models.Transfer, error) {
	query := fmt.Sprintf(`SELECT %s, i.name AS innovation_name FROM innovation_transfers t
        JOIN innovations i ON i.id = t.innovation_id
        WHERE t.created_by = $1
        ORDER BY t.created_at DESC`, transferColumns)
	var transfers []models.Transfer
	if err := r.db.SelectContext(ctx, &transfers, query, userID); err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	return transfers, nil
}

// ExpireOlderThan marks stale pending transfers as EXPIRED and returns the count.
func (r *TransferRepository) ExpireOlderThan(ctx context.Context, expiryWindow time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-expiryWindow)
	const query = `UPDATE innovation_transfers SET status = $1, updated_at = $2
        WHERE status = $3 AND created_at <= $4`
	res, err := r.db.ExecContext(ctx, query, models.TransferStatusExpired, time.Now().UTC(), models.TransferStatusPending, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire transfers: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}
