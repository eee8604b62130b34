package repository

import (
	"context"
	"fmt"

	"github.com/lepakmasjid/directory-api/internal/models"
	"github.com/lepakmasjid/directory-api/internal/query"
	"github.com/lepakmasjid/directory-api/pkg/store"
)

const (
	amenitiesCollection       = "amenities"
	mosqueAmenitiesCollection = "mosque_amenities"

	expandAmenityRelation = "amenity_id"
)

// AmenityRepository reads the facility catalog and manages the link rows
// joining mosques to facilities.
type AmenityRepository struct {
	catalog *store.Collection
	links   *store.Collection
	builder *query.Builder
}

// NewAmenityRepository constructs the repository.
func NewAmenityRepository(client *store.Client, builder *query.Builder) *AmenityRepository {
	return &AmenityRepository{
		catalog: client.Collection(amenitiesCollection),
		links:   client.Collection(mosqueAmenitiesCollection),
		builder: builder,
	}
}

// ListCatalog returns all catalog amenities in display order.
func (r *AmenityRepository) ListCatalog(ctx context.Context) ([]models.Amenity, error) {
	result, err := r.catalog.GetList(ctx, 1, 100, store.ListOptions{Sort: "order"})
	if err != nil {
		return nil, fmt.Errorf("list amenity catalog: %w", err)
	}
	amenities := make([]models.Amenity, 0, len(result.Items))
	for _, item := range result.Items {
		var amenity models.Amenity
		if err := item.Decode(&amenity); err != nil {
			return nil, fmt.Errorf("decode amenity %s: %w", item.ID(), err)
		}
		amenities = append(amenities, amenity)
	}
	return amenities, nil
}

// ListLinksByMosqueIDs fetches every link row owned by any of the given
// mosques in one query, with the catalog relation expanded inline. Raw
// records come back so the aggregator can partition on the expansion.
func (r *AmenityRepository) ListLinksByMosqueIDs(ctx context.Context, mosqueIDs []string, perPage int) ([]store.Record, error) {
	filter, err := r.builder.IDSetFragment("mosque_id", mosqueIDs)
	if err != nil {
		return nil, err
	}
	if perPage <= 0 {
		perPage = 100
	}
	result, err := r.links.GetList(ctx, 1, perPage, store.ListOptions{
		Filter: filter,
		Expand: expandAmenityRelation,
	})
	if err != nil {
		return nil, fmt.Errorf("list amenity links: %w", err)
	}
	return result.Items, nil
}

// ListLinkIDsByMosque returns the identifiers of every link row owned by one
// mosque. Used by the replace-all edit to clear the previous set.
func (r *AmenityRepository) ListLinkIDsByMosque(ctx context.Context, mosqueID string) ([]string, error) {
	filter, err := r.builder.IdentifierFragment("mosque_id", mosqueID)
	if err != nil {
		return nil, err
	}
	result, err := r.links.GetList(ctx, 1, 200, store.ListOptions{Filter: filter})
	if err != nil {
		return nil, fmt.Errorf("list amenity link ids: %w", err)
	}
	ids := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		ids = append(ids, item.ID())
	}
	return ids, nil
}

// CreateLink inserts one link row.
func (r *AmenityRepository) CreateLink(ctx context.Context, mosqueID string, entry models.AmenityEntry) (*models.MosqueAmenity, error) {
	payload := map[string]interface{}{
		"mosque_id": mosqueID,
		"details":   entry.Details,
		"verified":  entry.Verified,
	}
	if entry.AmenityID != "" {
		payload["amenity_id"] = entry.AmenityID
	}
	record, err := r.links.Create(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("create amenity link: %w", err)
	}
	var link models.MosqueAmenity
	if err := record.Decode(&link); err != nil {
		return nil, fmt.Errorf("decode amenity link: %w", err)
	}
	return &link, nil
}

// DeleteLink removes one link row.
func (r *AmenityRepository) DeleteLink(ctx context.Context, id string) error {
	if err := r.links.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete amenity link: %w", err)
	}
	return nil
}

// MosqueIDsWithAmenities resolves the mosques that carry every one of the
// requested catalog amenities. It backs the amenity listing filter with a
// client-side intersection because the store cannot join at query time.
func (r *AmenityRepository) MosqueIDsWithAmenities(ctx context.Context, amenityIDs []string, perPage int) ([]string, error) {
	filter, err := r.builder.IDSetFragment("amenity_id", amenityIDs)
	if err != nil {
		return nil, err
	}
	if perPage <= 0 {
		perPage = 500
	}
	result, err := r.links.GetList(ctx, 1, perPage, store.ListOptions{Filter: filter})
	if err != nil {
		return nil, fmt.Errorf("resolve amenity filter: %w", err)
	}

	counts := make(map[string]map[string]struct{})
	for _, item := range result.Items {
		mosqueID := item.GetString("mosque_id")
		amenityID := item.GetString("amenity_id")
		if mosqueID == "" || amenityID == "" {
			continue
		}
		if counts[mosqueID] == nil {
			counts[mosqueID] = make(map[string]struct{})
		}
		counts[mosqueID][amenityID] = struct{}{}
	}

	var ids []string
	for mosqueID, seen := range counts {
		if len(seen) == len(amenityIDs) {
			ids = append(ids, mosqueID)
		}
	}
	return ids, nil
}
