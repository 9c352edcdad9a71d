package models

import "time"

// InnovationStatus tracks an innovation through the assessment pipeline.
type InnovationStatus string

const (
	InnovationStatusCreated                InnovationStatus = "CREATED"
	InnovationStatusWaitingNeedsAssessment InnovationStatus = "WAITING_NEEDS_ASSESSMENT"
	InnovationStatusNeedsAssessment        InnovationStatus = "NEEDS_ASSESSMENT"
	InnovationStatusInProgress             InnovationStatus = "IN_PROGRESS"
	InnovationStatusArchived               InnovationStatus = "ARCHIVED"
	InnovationStatusComplete               InnovationStatus = "COMPLETE"
)

// Innovation is the central record an innovator submits for support.
type Innovation struct {
	ID          string           `db:"id" json:"id"`
	Name        string           `db:"name" json:"name"`
	Description *string          `db:"description" json:"description,omitempty"`
	CountryName string           `db:"country_name" json:"country_name"`
	Postcode    *string          `db:"postcode" json:"postcode,omitempty"`
	Status      InnovationStatus `db:"status" json:"status"`
	OwnerID     string           `db:"owner_id" json:"owner_id"`
	SubmittedAt *time.Time       `db:"submitted_at" json:"submitted_at,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time       `db:"deleted_at" json:"-"`
	CreatedBy   *string          `db:"created_by" json:"-"`
	UpdatedBy   *string          `db:"updated_by" json:"-"`
}

// InnovationShare records that an innovation is shared with an organisation.
type InnovationShare struct {
	InnovationID   string    `db:"innovation_id" json:"innovation_id"`
	OrganisationID string    `db:"organisation_id" json:"organisation_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// CreateInnovationRequest registers a new innovation for the acting innovator.
type CreateInnovationRequest struct {
	Name          string   `json:"name" validate:"required,max=100"`
	Description   string   `json:"description,omitempty"`
	CountryName   string   `json:"country_name" validate:"required"`
	Postcode      string   `json:"postcode,omitempty"`
	Organisations []string `json:"organisations,omitempty" validate:"omitempty,dive,uuid4"`
}

// UpdateSharesRequest replaces the data sharing organisation set.
type UpdateSharesRequest struct {
	Organisations []string `json:"organisations" validate:"required,dive,uuid4"`
}

// InnovationFilter scopes innovation listing queries.
type InnovationFilter struct {
	Status []InnovationStatus
	ListOptions
}

// InnovationListItem is the denormalized row for list endpoints.
type InnovationListItem struct {
	ID          string           `db:"id" json:"id"`
	Name        string           `db:"name" json:"name"`
	Status      InnovationStatus `db:"status" json:"status"`
	SubmittedAt *time.Time       `db:"submitted_at" json:"submitted_at,omitempty"`
	CountryName string           `db:"country_name" json:"country_name"`
	Postcode    *string          `db:"postcode" json:"postcode,omitempty"`
	OwnerID     string           `db:"owner_id" json:"owner_id"`

	AssessmentID *string `db:"assessment_id" json:"assessment_id,omitempty"`
}
