package models

import "time"

// EvidenceType classifies the kind of evidence attached to a section.
type EvidenceType string

const (
	EvidenceTypeClinical EvidenceType = "CLINICAL"
	EvidenceTypeEconomic EvidenceType = "ECONOMIC"
	EvidenceTypeOther    EvidenceType = "OTHER"
)

// Evidence is a supporting item of the evidence-of-effectiveness section.
type Evidence struct {
	ID           string       `db:"id" json:"id"`
	InnovationID string       `db:"innovation_id" json:"innovation_id"`
	Type         EvidenceType `db:"evidence_type" json:"evidence_type"`
	Summary      string       `db:"summary" json:"summary"`
	Description  *string      `db:"description" json:"description,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
	DeletedAt    *time.Time   `db:"deleted_at" json:"-"`
	CreatedBy    *string      `db:"created_by" json:"-"`
	UpdatedBy    *string      `db:"updated_by" json:"-"`

	Files []InnovationFile `json:"files,omitempty"`
}

// InnovationFile is an uploaded file linked to evidence.
type InnovationFile struct {
	ID           string     `db:"id" json:"id"`
	InnovationID string     `db:"innovation_id" json:"innovation_id"`
	EvidenceID   *string    `db:"evidence_id" json:"evidence_id,omitempty"`
	DisplayName  string     `db:"display_name" json:"display_name"`
	StoragePath  string     `db:"storage_path" json:"-"`
	MimeType     string     `db:"mime_type" json:"mime_type"`
	SizeBytes    int64      `db:"size_bytes" json:"size_bytes"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	DeletedAt    *time.Time `db:"deleted_at" json:"-"`

	URL string `db:"-" json:"url,omitempty"`
}

// SaveEvidenceRequest creates or updates an evidence item.
type SaveEvidenceRequest struct {
	Type        EvidenceType `json:"evidence_type" validate:"required,oneof=CLINICAL ECONOMIC OTHER"`
	Summary     string       `json:"summary" validate:"required"`
	Description string       `json:"description,omitempty"`
	Files       []string     `json:"files,omitempty" validate:"omitempty,dive,uuid4"`
}

// FileUploadResponse returns the stored file metadata plus a signed URL.
type FileUploadResponse struct {
	File InnovationFile `json:"file"`
	URL  string         `json:"url"`
}
