package models

import (
	"time"

	"github.com/lib/pq"
)

// SupportStatus reflects an organisation unit's position on an innovation.
type SupportStatus string

const (
	SupportStatusUnassigned          SupportStatus = "UNASSIGNED"
	SupportStatusEngaging            SupportStatus = "ENGAGING"
	SupportStatusFurtherInfoRequired SupportStatus = "FURTHER_INFO_REQUIRED"
	SupportStatusWaiting             SupportStatus = "WAITING"
	SupportStatusNotYet              SupportStatus = "NOT_YET"
	SupportStatusUnsuitable          SupportStatus = "UNSUITABLE"
	SupportStatusWithdrawn           SupportStatus = "WITHDRAWN"
	SupportStatusComplete            SupportStatus = "COMPLETE"
)

// Support binds an organisation unit to an innovation it is engaging with.
type Support struct {
	ID                 string         `db:"id" json:"id"`
	InnovationID       string         `db:"innovation_id" json:"innovation_id"`
	OrganisationUnitID string         `db:"organisation_unit_id" json:"organisation_unit_id"`
	Status             SupportStatus  `db:"status" json:"status"`
	AccessorIDs        pq.StringArray `db:"accessor_ids" json:"accessors,omitempty"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
	DeletedAt          *time.Time     `db:"deleted_at" json:"-"`
	CreatedBy          *string        `db:"created_by" json:"-"`
	UpdatedBy          *string        `db:"updated_by" json:"-"`

	UnitName         *string `db:"unit_name" json:"unit_name,omitempty"`
	OrganisationID   *string `db:"organisation_id" json:"organisation_id,omitempty"`
	OrganisationName *string `db:"organisation_name" json:"organisation_name,omitempty"`
}

// CreateSupportRequest opens or restates a unit's support position.
type CreateSupportRequest struct {
	Status    SupportStatus `json:"status" validate:"required,oneof=UNASSIGNED ENGAGING FURTHER_INFO_REQUIRED WAITING NOT_YET UNSUITABLE WITHDRAWN COMPLETE"`
	Accessors []string      `json:"accessors,omitempty" validate:"omitempty,dive,uuid4"`
	Comment   string        `json:"comment,omitempty"`
}
