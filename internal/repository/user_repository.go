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

// UserRepository handles platform user persistence.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByExternalID returns a user by their directory identity.
func (r *UserRepository) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	const query = `SELECT id, external_id, type, created_at, updated_at, deleted_at, created_by, updated_by
        FROM users WHERE external_id = $1 AND deleted_at IS NULL LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, externalID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by external id: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, external_id, type, created_at, updated_at, deleted_at, created_by, updated_by
        FROM users WHERE id = $1 AND deleted_at IS NULL LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// Create inserts a platform user row.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	const query = `INSERT INTO users (id, external_id, type, created_at, updated_at, created_by, updated_by)
        VALUES (:id, :external_id, :type, :created_at, :updated_at, :created_by, :updated_by)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// CreateWithMembership inserts a user and an organisation membership atomically.
func (r *UserRepository) CreateWithMembership(ctx context.Context, user *models.User, membership *models.OrganisationMembership) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	const userQuery = `INSERT INTO users (id, external_id, type, created_at, updated_at, created_by, updated_by)
        VALUES (:id, :external_id, :type, :created_at, :updated_at, :created_by, :updated_by)`
	if _, err := tx.NamedExecContext(ctx, userQuery, user); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("create user: %w", err)
	}
	if membership != nil {
		if membership.ID == "" {
			membership.ID = uuid.NewString()
		}
		membership.UserID = user.ID
		membership.CreatedAt = now
		const memberQuery = `INSERT INTO organisation_memberships (id, user_id, organisation_id, organisation_unit_id, role, created_at)
            VALUES (:id, :user_id, :organisation_id, :organisation_unit_id, :role, :created_at)`
		if _, err := tx.NamedExecContext(ctx, memberQuery, membership); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("create membership: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit user: %w", err)
	}
	return nil
}

// ListByIDs fetches users for a set of ids.
func (r *UserRepository) ListByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, external_id, type, created_at, updated_at, deleted_at, created_by, updated_by
        FROM users WHERE id IN (?) AND deleted_at IS NULL`, ids)
	if err != nil {
		return nil, fmt.Errorf("build user query: %w", err)
	}
	query = r.db.Rebind(query)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ListByType returns all users of a given population.
func (r *UserRepository) ListByType(ctx context.Context, userType models.UserType) ([]models.User, error) {
	const query = `SELECT id, external_id, type, created_at, updated_at, deleted_at, created_by, updated_by
        FROM users WHERE type = $1 AND deleted_at IS NULL`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, userType); err != nil {
		return nil, fmt.Errorf("list users by type: %w", err)
	}
	return users, nil
}
