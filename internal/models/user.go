package models

import "time"

// UserType distinguishes the four actor populations of the platform.
type UserType string

const (
	UserTypeInnovator  UserType = "INNOVATOR"
	UserTypeAccessor   UserType = "ACCESSOR"
	UserTypeAssessment UserType = "ASSESSMENT"
	UserTypeAdmin      UserType = "ADMIN"
)

// User links a directory identity to the platform.
type User struct {
	ID         string     `db:"id" json:"id"`
	ExternalID string     `db:"external_id" json:"external_id"`
	Type       UserType   `db:"type" json:"type"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt  *time.Time `db:"deleted_at" json:"-"`
	CreatedBy  *string    `db:"created_by" json:"-"`
	UpdatedBy  *string    `db:"updated_by" json:"-"`
}

// UserProfile is the directory-enriched view of a user.
type UserProfile struct {
	ID               string                `json:"id"`
	ExternalID       string                `json:"external_id"`
	DisplayName      string                `json:"display_name"`
	Email            string                `json:"email,omitempty"`
	PhoneNumber      string                `json:"phone_number,omitempty"`
	Type             UserType              `json:"type"`
	Organisations    []ProfileOrganisation `json:"organisations,omitempty"`
	PendingTransfers int                   `json:"pending_transfers,omitempty"`
}

// ProfileOrganisation summarises one membership on a profile.
type ProfileOrganisation struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Role AccessorRole `json:"role,omitempty"`
	Unit *ProfileUnit `json:"unit,omitempty"`
}

// ProfileUnit names a unit on a profile.
type ProfileUnit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateUserRequest provisions a platform user backed by a directory identity.
type CreateUserRequest struct {
	DisplayName        string   `json:"display_name" validate:"required"`
	Email              string   `json:"email" validate:"required,email"`
	Password           string   `json:"password,omitempty"`
	Type               UserType `json:"type" validate:"required,oneof=INNOVATOR ACCESSOR ASSESSMENT ADMIN"`
	Role               string   `json:"role,omitempty" validate:"omitempty,oneof=QUALIFYING_ACCESSOR ACCESSOR"`
	OrganisationID     string   `json:"organisation_id,omitempty"`
	OrganisationUnitID string   `json:"organisation_unit_id,omitempty"`
}

// UpdateUserRequest adjusts directory fields of an existing user.
type UpdateUserRequest struct {
	ExternalID     string `json:"external_id" validate:"required"`
	DisplayName    string `json:"display_name,omitempty"`
	AccountEnabled *bool  `json:"account_enabled,omitempty"`
}
