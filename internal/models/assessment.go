package models

import "time"

// MaturityLevel grades a dimension of an innovation during assessment.
type MaturityLevel string

const (
	MaturityLevelDiscovery MaturityLevel = "DISCOVERY"
	MaturityLevelAdvanced  MaturityLevel = "ADVANCED"
	MaturityLevelReady     MaturityLevel = "READY"
)

// YesPartialNo is the three-state answer used by assessment checklists.
type YesPartialNo string

const (
	AnswerYes       YesPartialNo = "YES"
	AnswerPartially YesPartialNo = "PARTIALLY"
	AnswerNo        YesPartialNo = "NO"
)

// Assessment captures the needs assessment performed on an innovation.
type Assessment struct {
	ID                      string         `db:"id" json:"id"`
	InnovationID            string         `db:"innovation_id" json:"innovation_id"`
	AssignedToID            string         `db:"assigned_to_id" json:"assigned_to_id"`
	Summary                 *string        `db:"summary" json:"summary,omitempty"`
	Description             *string        `db:"description" json:"description,omitempty"`
	MaturityLevel           *MaturityLevel `db:"maturity_level" json:"maturity_level,omitempty"`
	HasRegulatoryApprovals  *YesPartialNo  `db:"has_regulatory_approvals" json:"has_regulatory_approvals,omitempty"`
	HasEvidence             *YesPartialNo  `db:"has_evidence" json:"has_evidence,omitempty"`
	HasValidation           *YesPartialNo  `db:"has_validation" json:"has_validation,omitempty"`
	HasProposition          *YesPartialNo  `db:"has_proposition" json:"has_proposition,omitempty"`
	HasCompetitionKnowledge *YesPartialNo  `db:"has_competition_knowledge" json:"has_competition_knowledge,omitempty"`
	HasImplementationPlan   *YesPartialNo  `db:"has_implementation_plan" json:"has_implementation_plan,omitempty"`
	HasScaleResource        *YesPartialNo  `db:"has_scale_resource" json:"has_scale_resource,omitempty"`
	FinishedAt              *time.Time     `db:"finished_at" json:"finished_at,omitempty"`
	CreatedAt               time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time      `db:"updated_at" json:"updated_at"`
	DeletedAt               *time.Time     `db:"deleted_at" json:"-"`
	CreatedBy               *string        `db:"created_by" json:"-"`
	UpdatedBy               *string        `db:"updated_by" json:"-"`
}

// AssessmentSuggestedUnit links an assessment to a suggested organisation unit.
type AssessmentSuggestedUnit struct {
	AssessmentID       string `db:"assessment_id" json:"assessment_id"`
	OrganisationUnitID string `db:"organisation_unit_id" json:"organisation_unit_id"`
}

// CreateAssessmentRequest starts an assessment on a submitted innovation.
type CreateAssessmentRequest struct {
	Description string `json:"description" validate:"required"`
	Comment     string `json:"comment,omitempty"`
}

// UpdateAssessmentRequest edits assessment fields, optionally submitting.
type UpdateAssessmentRequest struct {
	Summary                 string   `json:"summary,omitempty"`
	Description             string   `json:"description,omitempty"`
	MaturityLevel           string   `json:"maturity_level,omitempty" validate:"omitempty,oneof=DISCOVERY ADVANCED READY"`
	HasRegulatoryApprovals  string   `json:"has_regulatory_approvals,omitempty" validate:"omitempty,oneof=YES PARTIALLY NO"`
	HasEvidence             string   `json:"has_evidence,omitempty" validate:"omitempty,oneof=YES PARTIALLY NO"`
	HasValidation           string   `json:"has_validation,omitempty" validate:"omitempty,oneof=YES PARTIALLY NO"`
	HasProposition          string   `json:"has_proposition,omitempty" validate:"omitempty,oneof=YES PARTIALLY NO"`
	HasCompetitionKnowledge string   `json:"has_competition_knowledge,omitempty" validate:"omitempty,oneof=YES PARTIALLY NO"`
	HasImplementationPlan   string   `json:"has_implementation_plan,omitempty" validate:"omitempty,oneof=YES PARTIALLY NO"`
	HasScaleResource        string   `json:"has_scale_resource,omitempty" validate:"omitempty,oneof=YES PARTIALLY NO"`
	IsSubmission            bool     `json:"is_submission"`
	OrganisationUnits       []string `json:"organisation_units,omitempty" validate:"omitempty,dive,uuid4"`
}

// AssessmentDetail is the resolved single-assessment view.
type AssessmentDetail struct {
	Assessment
	AssignedToName string                  `json:"assigned_to_name,omitempty"`
	Organisations  []SuggestedOrganisation `json:"suggested_organisations,omitempty"`
}

// SuggestedOrganisation groups suggested units under their organisation.
type SuggestedOrganisation struct {
	ID    string             `json:"id"`
	Name  string             `json:"name"`
	Units []OrganisationUnit `json:"units"`
}
