package models

import "encoding/json"

// Amenity is one entry of the shared facility catalog.
type Amenity struct {
	ID      string    `json:"id"`
	Key     string    `json:"key"`
	LabelBM string    `json:"label_bm"`
	LabelEN string    `json:"label_en"`
	Icon    string    `json:"icon"`
	Order   int       `json:"order"`
	Created Timestamp `json:"created"`
	Updated Timestamp `json:"updated"`
}

// MosqueAmenity is a link row joining a mosque to a facility. A row with an
// empty AmenityID is a custom amenity private to its mosque.
type MosqueAmenity struct {
	ID        string          `json:"id"`
	MosqueID  string          `json:"mosque_id"`
	AmenityID string          `json:"amenity_id"`
	Details   json.RawMessage `json:"details,omitempty"`
	Verified  bool            `json:"verified"`
	Created   Timestamp       `json:"created"`
	Updated   Timestamp       `json:"updated"`
}

// AmenityDetail is a catalog amenity enriched with the owning link's
// per-mosque details.
type AmenityDetail struct {
	Amenity
	Details  json.RawMessage `json:"details,omitempty"`
	Verified bool            `json:"verified"`
}

// AmenityEntry is one element of an admin replace-all edit. An empty
// AmenityID creates a custom amenity.
type AmenityEntry struct {
	AmenityID string          `json:"amenity_id"`
	Details   json.RawMessage `json:"details,omitempty"`
	Verified  bool            `json:"verified"`
}

// AmenityGroups holds the aggregator output keyed by mosque identifier.
// Every requested mosque id is present in both maps, with empty slices when
// it has no links.
type AmenityGroups struct {
	Catalog map[string][]AmenityDetail
	Custom  map[string][]MosqueAmenity
}
