package models

import "time"

// TransferStatus is the lifecycle state of an ownership transfer.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusCanceled  TransferStatus = "CANCELED"
	TransferStatusDeclined  TransferStatus = "DECLINED"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusExpired   TransferStatus = "EXPIRED"
)

// Transfer invites an email address to take ownership of an innovation.
type Transfer struct {
	ID           string         `db:"id" json:"id"`
	InnovationID string         `db:"innovation_id" json:"innovation_id"`
	Email        string         `db:"email" json:"email"`
	Status       TransferStatus `db:"status" json:"status"`
	FinishedAt   *time.Time     `db:"finished_at" json:"finished_at,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
	CreatedBy    string         `db:"created_by" json:"created_by"`
	UpdatedBy    *string        `db:"updated_by" json:"-"`

	InnovationName *string `db:"innovation_name" json:"innovation_name,omitempty"`
}

// CreateTransferRequest invites an email to take over an innovation.
type CreateTransferRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UpdateTransferRequest resolves a pending transfer.
type UpdateTransferRequest struct {
	Status TransferStatus `json:"status" validate:"required,oneof=CANCELED DECLINED COMPLETED"`
}
