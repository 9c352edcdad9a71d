package models

import "time"

// AccessorRole is the role an accessor holds inside their organisation.
type AccessorRole string

const (
	RoleQualifyingAccessor AccessorRole = "QUALIFYING_ACCESSOR"
	RoleAccessor           AccessorRole = "ACCESSOR"
)

// Organisation is a support organisation onboarded to the platform.
type Organisation struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Acronym   *string    `db:"acronym" json:"acronym,omitempty"`
	IsShadow  bool       `db:"is_shadow" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
}

// OrganisationUnit is a sub-division of an organisation that carries supports.
type OrganisationUnit struct {
	ID             string     `db:"id" json:"id"`
	OrganisationID string     `db:"organisation_id" json:"organisation_id"`
	Name           string     `db:"name" json:"name"`
	Acronym        *string    `db:"acronym" json:"acronym,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at" json:"-"`
}

// OrganisationMembership ties a user to an organisation and unit with a role.
// Each accessor holds exactly one membership row.
type OrganisationMembership struct {
	ID                 string       `db:"id" json:"id"`
	UserID             string       `db:"user_id" json:"user_id"`
	OrganisationID     string       `db:"organisation_id" json:"organisation_id"`
	OrganisationUnitID *string      `db:"organisation_unit_id" json:"organisation_unit_id,omitempty"`
	Role               AccessorRole `db:"role" json:"role"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
	DeletedAt          *time.Time   `db:"deleted_at" json:"-"`

	OrganisationName *string `db:"organisation_name" json:"organisation_name,omitempty"`
	UnitName         *string `db:"unit_name" json:"unit_name,omitempty"`
}

// OrganisationWithUnits is the list view of an organisation.
type OrganisationWithUnits struct {
	Organisation
	Units []OrganisationUnit `json:"units,omitempty"`
}

// UnitUser pairs a unit member with their role for listing endpoints.
type UnitUser struct {
	UserID             string       `db:"user_id" json:"user_id"`
	ExternalID         string       `db:"external_id" json:"external_id"`
	OrganisationUnitID string       `db:"organisation_unit_id" json:"organisation_unit_id"`
	Role               AccessorRole `db:"role" json:"role"`
	DisplayName        string       `db:"-" json:"display_name,omitempty"`
}
