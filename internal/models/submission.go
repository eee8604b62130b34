package models

import "encoding/json"

// SubmissionType distinguishes proposals for new mosques from edits.
type SubmissionType string

const (
	SubmissionTypeNewMosque  SubmissionType = "new_mosque"
	SubmissionTypeEditMosque SubmissionType = "edit_mosque"
)

// SubmissionStatus is the moderation state machine: pending is the single
// initial state, approved and rejected are terminal.
type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

// Submission is a user-proposed mosque creation or edit awaiting review.
type Submission struct {
	ID              string           `json:"id"`
	Type            SubmissionType   `json:"type"`
	MosqueID        string           `json:"mosque_id,omitempty"`
	Data            json.RawMessage  `json:"data"`
	Status          SubmissionStatus `json:"status"`
	SubmittedBy     string           `json:"submitted_by"`
	SubmittedAt     Timestamp        `json:"submitted_at"`
	ReviewedBy      string           `json:"reviewed_by,omitempty"`
	ReviewedAt      *Timestamp       `json:"reviewed_at,omitempty"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
}

// SubmissionFilter constrains the review queue listing.
type SubmissionFilter struct {
	Status SubmissionStatus
	Limit  int
}
