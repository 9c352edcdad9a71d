package models

import "time"

// NotificationContextType classifies what a notification points at.
type NotificationContextType string

const (
	NotificationContextInnovation  NotificationContextType = "INNOVATION"
	NotificationContextAction      NotificationContextType = "ACTION"
	NotificationContextComment     NotificationContextType = "COMMENT"
	NotificationContextDataSharing NotificationContextType = "DATA_SHARING"
)

// NotificationAudience selects the recipient population for a fan-out.
type NotificationAudience string

const (
	AudienceInnovators          NotificationAudience = "INNOVATORS"
	AudienceAccessors           NotificationAudience = "ACCESSORS"
	AudienceQualifyingAccessors NotificationAudience = "QUALIFYING_ACCESSORS"
	AudienceAssessmentUsers     NotificationAudience = "ASSESSMENT_USERS"
)

// EmailTemplate identifies an outbound email template.
type EmailTemplate string

const (
	EmailQAOrganisationSuggested       EmailTemplate = "QA_ORGANISATION_SUGGESTED"
	EmailTransferOwnershipExistingUser EmailTemplate = "TRANSFER_OWNERSHIP_EXISTING_USER"
	EmailTransferOwnershipNewUser      EmailTemplate = "TRANSFER_OWNERSHIP_NEW_USER"
	EmailCommentReceived               EmailTemplate = "COMMENT_RECEIVED"
)

// Notification is the shared head record of a fan-out.
type Notification struct {
	ID           string                  `db:"id" json:"id"`
	InnovationID string                  `db:"innovation_id" json:"innovation_id"`
	ContextType  NotificationContextType `db:"context_type" json:"context_type"`
	ContextID    string                  `db:"context_id" json:"context_id"`
	Message      string                  `db:"message" json:"message"`
	CreatedAt    time.Time               `db:"created_at" json:"created_at"`
	CreatedBy    *string                 `db:"created_by" json:"-"`
}

// NotificationUser is one recipient row of a notification.
type NotificationUser struct {
	NotificationID string     `db:"notification_id" json:"notification_id"`
	UserID         string     `db:"user_id" json:"user_id"`
	ReadAt         *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// NotificationCounter aggregates unread notifications per context type.
type NotificationCounter struct {
	ContextType NotificationContextType `db:"context_type" json:"context_type"`
	Count       int                     `db:"count" json:"count"`
}

// DismissNotificationsRequest marks a context's notifications as read.
type DismissNotificationsRequest struct {
	ContextType NotificationContextType `json:"context_type" validate:"required,oneof=INNOVATION ACTION COMMENT DATA_SHARING"`
	ContextID   string                  `json:"context_id" validate:"required,uuid4"`
}

// EmailJobPayload is the dispatch queue payload for outbound email.
// RecipientIDs are platform user ids resolved to addresses at delivery
// time; Addresses carry raw emails for recipients without an account.
type EmailJobPayload struct {
	Template     EmailTemplate     `json:"template"`
	RecipientIDs []string          `json:"recipient_ids,omitempty"`
	Addresses    []string          `json:"addresses,omitempty"`
	Params       map[string]string `json:"params,omitempty"`
}
