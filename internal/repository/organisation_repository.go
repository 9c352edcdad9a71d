package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/innovation-hub-api/internal/models"
)

// OrganisationRepository handles organisations, units and memberships.
type OrganisationRepository struct {
	db *sqlx.DB
}

// NewOrganisationRepository creates a new organisation repository.
func NewOrganisationRepository(db *sqlx.DB) *OrganisationRepository {
	return &OrganisationRepository{db: db}
}

// List returns all onboarded organisations with their units.
func (r *OrganisationRepository) List(ctx context.Context) ([]models.OrganisationWithUnits, error) {
	const orgQuery = `SELECT id, name, acronym, is_shadow, created_at, updated_at, deleted_at
        FROM organisations WHERE deleted_at IS NULL AND is_shadow = false ORDER BY name ASC`
	var orgs []models.Organisation
	if err := r.db.SelectContext(ctx, &orgs, orgQuery); err != nil {
		return nil, fmt.Errorf("list organisations: %w", err)
	}
	if len(orgs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(orgs))
	for i, org := range orgs {
		ids[i] = org.ID
	}
	unitQuery, args, err := sqlx.In(`SELECT id, organisation_id, name, acronym, created_at, updated_at, deleted_at
        FROM organisation_units WHERE organisation_id IN (?) AND deleted_at IS NULL ORDER BY name ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("build unit query: %w", err)
	}
	unitQuery = r.db.Rebind(unitQuery)
	var units []models.OrganisationUnit
	if err := r.db.SelectContext(ctx, &units, unitQuery, args...); err != nil {
		return nil, fmt.Errorf("list organisation units: %w", err)
	}

	unitsByOrg := make(map[string][]models.OrganisationUnit, len(orgs))
	for _, unit := range units {
		unitsByOrg[unit.OrganisationID] = append(unitsByOrg[unit.OrganisationID], unit)
	}
	result := make([]models.OrganisationWithUnits, len(orgs))
	for i, org := range orgs {
		result[i] = models.OrganisationWithUnits{Organisation: org, Units: unitsByOrg[org.ID]}
	}
	return result, nil
}

// FindUnit returns one organisation unit.
func (r *OrganisationRepository) FindUnit(ctx context.Context, unitID string) (*models.OrganisationUnit, error) {
	const query = `SELECT id, organisation_id, name, acronym, created_at, updated_at, deleted_at
        FROM organisation_units WHERE id = $1 AND deleted_at IS NULL LIMIT 1`
	var unit models.OrganisationUnit
	if err := r.db.GetContext(ctx, &unit, query, unitID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find organisation unit: %w", err)
	}
	return &unit, nil
}

// ListUnits fetches units with their parent organisations for a set of ids.
func (r *OrganisationRepository) ListUnits(ctx context.Context, unitIDs []string) ([]models.OrganisationUnit, error) {
	if len(unitIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, organisation_id, name, acronym, created_at, updated_at, deleted_at
        FROM organisation_units WHERE id IN (?) AND deleted_at IS NULL`, unitIDs)
	if err != nil {
		return nil, fmt.Errorf("build units query: %w", err)
	}
	query = r.db.Rebind(query)
	var units []models.OrganisationUnit
	if err := r.db.SelectContext(ctx, &units, query, args...); err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return units, nil
}

// ListOrganisationsByIDs fetches organisations by id.
func (r *OrganisationRepository) ListOrganisationsByIDs(ctx context.Context, ids []string) ([]models.Organisation, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, name, acronym, is_shadow, created_at, updated_at, deleted_at
        FROM organisations WHERE id IN (?) AND deleted_at IS NULL`, ids)
	if err != nil {
		return nil, fmt.Errorf("build organisations query: %w", err)
	}
	query = r.db.Rebind(query)
	var orgs []models.Organisation
	if err := r.db.SelectContext(ctx, &orgs, query, args...); err != nil {
		return nil, fmt.Errorf("list organisations by ids: %w", err)
	}
	return orgs, nil
}

// FindMembership returns the single membership row of a user, joined with
// organisation and unit names. Accessors hold exactly one row; the oldest
// row wins if data drift ever produces more.
func (r *OrganisationRepository) FindMembership(ctx context.Context, userID string) (*models.OrganisationMembership, error) {
	const query = `SELECT m.id, m.user_id, m.organisation_id, m.organisation_unit_id, m.role, m.created_at, m.deleted_at,
            o.name AS organisation_name, u.name AS unit_name
        FROM organisation_memberships m
        JOIN organisations o ON o.id = m.organisation_id
        LEFT JOIN organisation_units u ON u.id = m.organisation_unit_id
        WHERE m.user_id = $1 AND m.deleted_at IS NULL
        ORDER BY m.created_at ASC LIMIT 1`
	var membership models.OrganisationMembership
	if err := r.db.GetContext(ctx, &membership, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find membership: %w", err)
	}
	return &membership, nil
}

// ListMembershipsByUsers fetches memberships for a set of users.
func (r *OrganisationRepository) ListMembershipsByUsers(ctx context.Context, userIDs []string) ([]models.OrganisationMembership, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT m.id, m.user_id, m.organisation_id, m.organisation_unit_id, m.role, m.created_at, m.deleted_at,
            o.name AS organisation_name, u.name AS unit_name
        FROM organisation_memberships m
        JOIN organisations o ON o.id = m.organisation_id
        LEFT JOIN organisation_units u ON u.id = m.organisation_unit_id
        WHERE m.user_id IN (?) AND m.deleted_at IS NULL`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("build memberships query: %w", err)
	}
	query = r.db.Rebind(query)
	var memberships []models.OrganisationMembership
	if err := r.db.SelectContext(ctx, &memberships, query, args...); err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return memberships, nil
}

// QualifyingAccessorsOfUnits returns the user ids of qualifying accessors
// belonging to any of the provided units, deduplicated. Only units whose
// organisation shares the innovation qualify.
func (r *OrganisationRepository) QualifyingAccessorsOfUnits(ctx context.Context, unitIDs []string, innovationID string) ([]string, error) {
	if len(unitIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT DISTINCT m.user_id
        FROM organisation_memberships m
        JOIN users us ON us.id = m.user_id AND us.deleted_at IS NULL
        JOIN innovation_shares sh ON sh.organisation_id = m.organisation_id AND sh.innovation_id = ?
        WHERE m.organisation_unit_id IN (?) AND m.role = ? AND m.deleted_at IS NULL`,
		innovationID, unitIDs, models.RoleQualifyingAccessor)
	if err != nil {
		return nil, fmt.Errorf("build qualifying accessors query: %w", err)
	}
	query = r.db.Rebind(query)
	var userIDs []string
	if err := r.db.SelectContext(ctx, &userIDs, query, args...); err != nil {
		return nil, fmt.Errorf("list qualifying accessors: %w", err)
	}
	return userIDs, nil
}

// QualifyingAccessorsOfOrganisations returns qualifying accessor user ids
// for organisations an innovation is shared with.
func (r *OrganisationRepository) QualifyingAccessorsOfOrganisations(ctx context.Context, organisationIDs []string) ([]string, error) {
	if len(organisationIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT DISTINCT m.user_id
        FROM organisation_memberships m
        JOIN users us ON us.id = m.user_id AND us.deleted_at IS NULL
        WHERE m.organisation_id IN (?) AND m.role = ? AND m.deleted_at IS NULL`,
		organisationIDs, models.RoleQualifyingAccessor)
	if err != nil {
		return nil, fmt.Errorf("build qualifying accessors query: %w", err)
	}
	query = r.db.Rebind(query)
	var userIDs []string
	if err := r.db.SelectContext(ctx, &userIDs, query, args...); err != nil {
		return nil, fmt.Errorf("list qualifying accessors: %w", err)
	}
	return userIDs, nil
}

// ListUnitUsers returns accessor users of one organisation unit.
func (r *OrganisationRepository) ListUnitUsers(ctx context.Context, unitID string) ([]models.UnitUser, error) {
	const query = `SELECT m.user_id, us.external_id, m.organisation_unit_id, m.role
        FROM organisation_memberships m
        JOIN users us ON us.id = m.user_id AND us.deleted_at IS NULL
        WHERE m.organisation_unit_id = $1 AND m.deleted_at IS NULL`
	var users []models.UnitUser
	if err := r.db.SelectContext(ctx, &users, query, unitID); err != nil {
		return nil, fmt.Errorf("list unit users: %w", err)
	}
	return users, nil
}
