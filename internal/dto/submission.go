package dto

import (
	"encoding/json"

	"github.com/lepakmasjid/directory-api/internal/models"
)

// CreateSubmissionRequest proposes a new mosque or an edit for moderation.
type CreateSubmissionRequest struct {
	Type     models.SubmissionType `json:"type" validate:"required,oneof=new_mosque edit_mosque"`
	MosqueID string                `json:"mosque_id,omitempty"`
	Data     json.RawMessage       `json:"data" validate:"required"`
}

// RejectSubmissionRequest carries the mandatory rejection reason.
type RejectSubmissionRequest struct {
	Reason string `json:"reason" validate:"required"`
}
