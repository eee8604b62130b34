package models

// MosqueStatus captures the moderation state of a mosque record.
type MosqueStatus string

const (
	MosqueStatusPending  MosqueStatus = "pending"
	MosqueStatusApproved MosqueStatus = "approved"
	MosqueStatusRejected MosqueStatus = "rejected"
)

// Mosque mirrors the mosques collection at the store boundary. Field names
// are a schema contract checked by external verification tooling.
type Mosque struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	NameBM        string       `json:"name_bm"`
	Address       string       `json:"address"`
	State         string       `json:"state"`
	Lat           float64      `json:"lat"`
	Lng           float64      `json:"lng"`
	Description   string       `json:"description"`
	DescriptionBM string       `json:"description_bm"`
	Status        MosqueStatus `json:"status"`
	CreatedBy     string       `json:"created_by"`
	Image         string       `json:"image,omitempty"`
	Created       Timestamp    `json:"created"`
	Updated       Timestamp    `json:"updated"`

	// Derived collections, attached by the read service only. Never persisted.
	Amenities       []AmenityDetail `json:"amenities"`
	CustomAmenities []MosqueAmenity `json:"customAmenities"`
}

// MosqueWithDetails is the single-mosque view with attached activities.
type MosqueWithDetails struct {
	Mosque
	Activities []Activity `json:"activities"`
}

// SortKey enumerates the listing orders a caller may request.
type SortKey string

const (
	SortDefault       SortKey = ""
	SortAlphabetical  SortKey = "alphabetical"
	SortMostAmenities SortKey = "most_amenities"
	SortNearest       SortKey = "nearest"
)

// Origin is the caller-supplied point for nearest-first ordering.
type Origin struct {
	Lat float64
	Lng float64
}

// MosqueFilters constrains listing queries.
type MosqueFilters struct {
	State     string
	Search    string
	Amenities []string
	Sort      SortKey
	Origin    *Origin
}
