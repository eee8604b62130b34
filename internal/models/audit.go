package models

import "encoding/json"

// AuditAction constants represent actions to be logged.
const (
	AuditActionSubmissionCreate  = "SUBMISSION_CREATE"
	AuditActionSubmissionApprove = "SUBMISSION_APPROVE"
	AuditActionSubmissionReject  = "SUBMISSION_REJECT"
	AuditActionMosqueCreate      = "MOSQUE_CREATE"
	AuditActionMosqueUpdate      = "MOSQUE_UPDATE"
	AuditActionMosqueDelete      = "MOSQUE_DELETE"
	AuditActionAmenitiesReplace  = "AMENITIES_REPLACE"
)

// AuditLog is one append-only trail entry. Entries are never updated or
// deleted after creation.
type AuditLog struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actor_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	Timestamp  Timestamp       `json:"timestamp"`
	IPAddress  string          `json:"ip_address"`
	UserAgent  string          `json:"user_agent"`
}

// AuditFilter constrains audit listing for admin tooling.
type AuditFilter struct {
	Action     string
	EntityType string
	ActorID    string
	Start      *Timestamp
	End        *Timestamp
	Limit      int
}
