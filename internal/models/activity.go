package models

import "encoding/json"

// ActivityStatus marks whether a scheduled activity is still running.
type ActivityStatus string

const (
	ActivityStatusActive    ActivityStatus = "active"
	ActivityStatusCancelled ActivityStatus = "cancelled"
)

// ActivityType enumerates activity scheduling shapes.
type ActivityType string

const (
	ActivityTypeOneOff    ActivityType = "one_off"
	ActivityTypeRecurring ActivityType = "recurring"
	ActivityTypeFixed     ActivityType = "fixed"
)

// Activity is a scheduled event hosted by a mosque.
type Activity struct {
	ID            string          `json:"id"`
	MosqueID      string          `json:"mosque_id"`
	Title         string          `json:"title"`
	TitleBM       string          `json:"title_bm"`
	Description   string          `json:"description"`
	DescriptionBM string          `json:"description_bm"`
	Type          ActivityType    `json:"type"`
	Schedule      json.RawMessage `json:"schedule_json,omitempty"`
	StartDate     Timestamp       `json:"start_date"`
	EndDate       Timestamp       `json:"end_date"`
	Status        ActivityStatus  `json:"status"`
	CreatedBy     string          `json:"created_by"`
	Created       Timestamp       `json:"created"`
}
