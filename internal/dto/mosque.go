package dto

import (
	"github.com/lepakmasjid/directory-api/internal/models"
)

// MosqueUpsertRequest is the payload for creating or editing a mosque. It is
// also the shape a submission's data field must decode into before it can be
// applied.
type MosqueUpsertRequest struct {
	Name          string              `json:"name" validate:"required"`
	NameBM        string              `json:"name_bm"`
	Address       string              `json:"address" validate:"required"`
	State         string              `json:"state" validate:"required"`
	Lat           float64             `json:"lat" validate:"gte=-90,lte=90"`
	Lng           float64             `json:"lng" validate:"gte=-180,lte=180"`
	Description   string              `json:"description"`
	DescriptionBM string              `json:"description_bm"`
	Status        models.MosqueStatus `json:"status,omitempty" validate:"omitempty,oneof=pending approved rejected"`
	CreatedBy     string              `json:"created_by,omitempty"`
}

// ReplaceAmenitiesRequest carries the full replacement facility set for one
// mosque. An empty entry list is a valid full clear.
type ReplaceAmenitiesRequest struct {
	Entries []models.AmenityEntry `json:"entries"`
}
