package models

import "time"

// ActionStatus is the lifecycle state of an action requested on a section.
type ActionStatus string

const (
	ActionStatusRequested ActionStatus = "REQUESTED"
	ActionStatusStarted   ActionStatus = "STARTED"
	ActionStatusContinue  ActionStatus = "CONTINUE"
	ActionStatusInReview  ActionStatus = "IN_REVIEW"
	ActionStatusDeclined  ActionStatus = "DECLINED"
	ActionStatusCompleted ActionStatus = "COMPLETED"
	ActionStatusDeleted   ActionStatus = "DELETED"
)

// OpenActionStatuses are the states an action counts as outstanding in.
var OpenActionStatuses = []ActionStatus{
	ActionStatusRequested,
	ActionStatusStarted,
	ActionStatusContinue,
	ActionStatusInReview,
}

// Action is a request from an accessor for additional section information.
type Action struct {
	ID          string       `db:"id" json:"id"`
	DisplayID   string       `db:"display_id" json:"display_id"`
	SectionID   string       `db:"section_id" json:"-"`
	SupportID   *string      `db:"support_id" json:"-"`
	Status      ActionStatus `db:"status" json:"status"`
	Description string       `db:"description" json:"description"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time   `db:"deleted_at" json:"-"`
	CreatedBy   *string      `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy   *string      `db:"updated_by" json:"-"`

	SectionKey   *SectionKey `db:"section_key" json:"section,omitempty"`
	InnovationID *string     `db:"innovation_id" json:"innovation_id,omitempty"`
}

// ActionDetail is the denormalized single-action view.
type ActionDetail struct {
	ID               string       `json:"id"`
	DisplayID        string       `json:"display_id"`
	Status           ActionStatus `json:"status"`
	Description      string       `json:"description"`
	Section          SectionKey   `json:"section"`
	CreatedAt        time.Time    `json:"created_at"`
	CreatedByName    string       `json:"created_by_name,omitempty"`
	OrganisationName string       `json:"organisation_name,omitempty"`
	UnitName         string       `json:"unit_name,omitempty"`
}

// ActionListItem is the accessor worklist row.
type ActionListItem struct {
	ID             string       `db:"id" json:"id"`
	DisplayID      string       `db:"display_id" json:"display_id"`
	Status         ActionStatus `db:"status" json:"status"`
	Section        SectionKey   `db:"section_key" json:"section"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`
	InnovationID   string       `db:"innovation_id" json:"innovation_id"`
	InnovationName string       `db:"innovation_name" json:"innovation_name"`
}

// CreateActionRequest opens an action against a section.
type CreateActionRequest struct {
	Section     SectionKey `json:"section" validate:"required"`
	Description string     `json:"description" validate:"required"`
}

// UpdateActionRequest transitions an action, optionally attaching a comment.
type UpdateActionRequest struct {
	Status  ActionStatus `json:"status" validate:"required,oneof=REQUESTED STARTED CONTINUE IN_REVIEW DECLINED COMPLETED DELETED"`
	Comment string       `json:"comment,omitempty"`
}

// ActionFilter scopes accessor worklist queries.
type ActionFilter struct {
	OpenOnly     bool
	Statuses     []ActionStatus
	InnovationID string
	ListOptions
}
