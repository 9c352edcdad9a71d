package models

import "time"

// Comment is a message exchanged on an innovation, optionally threaded.
type Comment struct {
	ID                 string     `db:"id" json:"id"`
	InnovationID       string     `db:"innovation_id" json:"innovation_id"`
	UserID             string     `db:"user_id" json:"user_id"`
	Message            string     `db:"message" json:"message"`
	ReplyToID          *string    `db:"reply_to_id" json:"reply_to_id,omitempty"`
	ActionID           *string    `db:"action_id" json:"action_id,omitempty"`
	OrganisationUnitID *string    `db:"organisation_unit_id" json:"organisation_unit_id,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt          *time.Time `db:"deleted_at" json:"-"`
	CreatedBy          *string    `db:"created_by" json:"-"`
	UpdatedBy          *string    `db:"updated_by" json:"-"`
}

// CreateCommentRequest posts a comment or a reply.
type CreateCommentRequest struct {
	Comment  string `json:"comment" validate:"required"`
	ReplyTo  string `json:"reply_to,omitempty" validate:"omitempty,uuid4"`
	ActionID string `json:"action_id,omitempty" validate:"omitempty,uuid4"`
}

// CommentView is one comment resolved for display, with replies nested.
type CommentView struct {
	ID          string        `json:"id"`
	Message     string        `json:"message"`
	CreatedAt   time.Time     `json:"created_at"`
	User        CommentAuthor `json:"user"`
	UnreadCount int           `json:"unread_notifications,omitempty"`
	Replies     []CommentView `json:"replies,omitempty"`
}

// CommentAuthor names the author of a comment.
type CommentAuthor struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Type UserType `json:"type"`
}
