package domain

import (
	"encoding/json"
	"time"
)

// Moderation actions accepted by moderate_review / moderate_comment
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// ModerationDecision is the body of a moderate_review / moderate_comment call
type ModerationDecision struct {
	ReviewID  int64  `json:"review_id,omitempty"`
	CommentID int64  `json:"comment_id,omitempty"`
	Action    string `json:"action"`
	Reason    string `json:"reason,omitempty"`
}

// ModerationStatistics is the moderator dashboard summary. The backend
// returns nested counters, so it is kept as raw JSON per section.
type ModerationStatistics map[string]json.RawMessage

// Report is a user report against a review or comment
type Report struct {
	ID          int64     `json:"id"`
	Reporter    *int64    `json:"reporter,omitempty"`
	ContentType string    `json:"content_type"`
	ObjectID    int64     `json:"object_id"`
	Reason      string    `json:"reason"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	HandledBy   *int64    `json:"handled_by,omitempty"`
	HandleNote  string    `json:"handle_note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	HandledAt   time.Time `json:"handled_at,omitempty"`
}

// ReportInput is the create body for a report
type ReportInput struct {
	ContentType string `json:"content_type"`
	ObjectID    int64  `json:"object_id"`
	Reason      string `json:"reason"`
	Description string `json:"description,omitempty"`
}

// ReportResolution is the body of a report handle call
type ReportResolution struct {
	Status     string `json:"status"`
	HandleNote string `json:"handle_note,omitempty"`
}
