package service

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/lepakmasjid/directory-api/internal/models"
	"github.com/lepakmasjid/directory-api/internal/query"
	"github.com/lepakmasjid/directory-api/internal/sanitize"
	appErrors "github.com/lepakmasjid/directory-api/pkg/errors"
	"github.com/lepakmasjid/directory-api/pkg/store"
)

type mosqueReader interface {
	List(ctx context.Context, q query.Query, perPage int) ([]models.Mosque, error)
	GetByID(ctx context.Context, id string) (*models.Mosque, error)
}

type amenityReader interface {
	ListCatalog(ctx context.Context) ([]models.Amenity, error)
	MosqueIDsWithAmenities(ctx context.Context, amenityIDs []string, perPage int) ([]string, error)
}

type activityReader interface {
	ListActiveByMosque(ctx context.Context, mosqueID string) ([]models.Activity, error)
}

type amenityAggregator interface {
	Aggregate(ctx context.Context, mosqueIDs []string) (models.AmenityGroups, error)
	BatchCeiling() int
}

// MosqueReadService assembles listings and detail views. It compensates for
// the store's limited query surface: approved-status is re-checked
// client-side, and most_amenities/nearest orderings are computed here after
// the recency-fallback fetch.
type MosqueReadService struct {
	mosques    mosqueReader
	amenities  amenityReader
	activities activityReader
	aggregator amenityAggregator
	builder    *query.Builder
	sanitizer  *sanitize.Sanitizer
	pageSize   int
	logger     *zap.Logger
	collator   *collate.Collator
}

// NewMosqueReadService constructs the read service.
func NewMosqueReadService(
	mosques mosqueReader,
	amenities amenityReader,
	activities activityReader,
	aggregator amenityAggregator,
	builder *query.Builder,
	sanitizer *sanitize.Sanitizer,
	pageSize int,
	logger *zap.Logger,
) *MosqueReadService {
	if pageSize <= 0 {
		pageSize = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MosqueReadService{
		mosques:    mosques,
		amenities:  amenities,
		activities: activities,
		aggregator: aggregator,
		builder:    builder,
		sanitizer:  sanitizer,
		pageSize:   pageSize,
		logger:     logger,
		collator:   collate.New(language.Malay, collate.IgnoreCase),
	}
}

// List returns approved mosques matching the filters with amenities
// attached. When amenity aggregation fails the listing still succeeds with
// empty amenity collections and a warning-class error describing the
// degradation; availability wins over completeness here.
func (s *MosqueReadService) List(ctx context.Context, filters models.MosqueFilters) ([]models.Mosque, *appErrors.Error, error) {
	idSet, empty, err := s.resolveAmenityFilter(ctx, filters.Amenities)
	if err != nil {
		return nil, nil, err
	}
	if empty {
		return []models.Mosque{}, nil, nil
	}

	q, err := s.builder.Build(filters, idSet)
	if err != nil {
		return nil, nil, err
	}

	page, err := s.mosques.List(ctx, q, s.pageSize)
	if err != nil {
		return nil, nil, appErrors.Upstream(err, "failed to load mosques")
	}

	// The store cannot always combine the status predicate with the rest of
	// the filter, so approved-only is enforced again here.
	mosques := page[:0]
	for _, mosque := range page {
		if mosque.Status == models.MosqueStatusApproved || mosque.Status == "" {
			mosques = append(mosques, mosque)
		}
	}

	warning := s.attachAmenities(ctx, mosques)
	s.applyClientSort(mosques, filters)

	return mosques, warning, nil
}

// Get returns one mosque with partitioned amenities and active activities.
func (s *MosqueReadService) Get(ctx context.Context, id string) (*models.MosqueWithDetails, error) {
	// Shape check before the lookup so malformed ids never reach the store
	// and its error detail never leaks back.
	if !s.sanitizer.ValidIdentifier(id) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid mosque identifier")
	}

	mosque, err := s.mosques.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Mosque not found")
		}
		return nil, appErrors.Upstream(err, "failed to load mosque")
	}

	groups, err := s.aggregator.Aggregate(ctx, []string{id})
	if err != nil {
		return nil, appErrors.Upstream(err, "failed to load mosque amenities")
	}
	mosque.Amenities = groups.Catalog[id]
	mosque.CustomAmenities = groups.Custom[id]

	activities, err := s.activities.ListActiveByMosque(ctx, id)
	if err != nil {
		return nil, appErrors.Upstream(err, "failed to load mosque activities")
	}

	return &models.MosqueWithDetails{Mosque: *mosque, Activities: activities}, nil
}

// ListAmenityCatalog returns the shared facility catalog in display order.
func (s *MosqueReadService) ListAmenityCatalog(ctx context.Context) ([]models.Amenity, error) {
	catalog, err := s.amenities.ListCatalog(ctx)
	if err != nil {
		return nil, appErrors.Upstream(err, "failed to load amenity catalog")
	}
	return catalog, nil
}

// resolveAmenityFilter turns a requested amenity id list into a mosque id
// constraint. The store cannot join at query time, so mosques carrying every
// requested amenity are resolved from the link collection first. empty=true
// means the filter matched nothing and the listing short-circuits.
func (s *MosqueReadService) resolveAmenityFilter(ctx context.Context, amenityIDs []string) ([]string, bool, error) {
	if len(amenityIDs) == 0 {
		return nil, false, nil
	}

	unique := make([]string, 0, len(amenityIDs))
	seen := make(map[string]struct{}, len(amenityIDs))
	for _, id := range amenityIDs {
		if !s.sanitizer.ValidIdentifier(id) {
			return nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid amenity identifier")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	ids, err := s.amenities.MosqueIDsWithAmenities(ctx, unique, 0)
	if err != nil {
		return nil, false, appErrors.Upstream(err, "failed to resolve amenity filter")
	}
	if len(ids) == 0 {
		return nil, true, nil
	}
	if ceiling := s.aggregator.BatchCeiling(); len(ids) > ceiling {
		ids = ids[:ceiling]
	}
	return ids, false, nil
}

// attachAmenities decorates each mosque with its amenity groups, chunking by
// the aggregator's batch ceiling. On failure every mosque keeps empty
// collections and the degradation is reported as a warning.
func (s *MosqueReadService) attachAmenities(ctx context.Context, mosques []models.Mosque) *appErrors.Error {
	for i := range mosques {
		mosques[i].Amenities = []models.AmenityDetail{}
		mosques[i].CustomAmenities = []models.MosqueAmenity{}
	}
	if len(mosques) == 0 {
		return nil
	}

	ids := make([]string, 0, len(mosques))
	for _, mosque := range mosques {
		ids = append(ids, mosque.ID)
	}

	ceiling := s.aggregator.BatchCeiling()
	byID := make(map[string]int, len(mosques))
	for i, mosque := range mosques {
		byID[mosque.ID] = i
	}

	for start := 0; start < len(ids); start += ceiling {
		end := start + ceiling
		if end > len(ids) {
			end = len(ids)
		}
		groups, err := s.aggregator.Aggregate(ctx, ids[start:end])
		if err != nil {
			s.logger.Warn("amenity aggregation failed, serving degraded listing", zap.Error(err))
			return appErrors.Degraded(err, "amenities are temporarily unavailable")
		}
		for id, catalog := range groups.Catalog {
			if i, ok := byID[id]; ok {
				mosques[i].Amenities = catalog
			}
		}
		for id, custom := range groups.Custom {
			if i, ok := byID[id]; ok {
				mosques[i].CustomAmenities = custom
			}
		}
	}
	return nil
}

// applyClientSort reorders the page for sorts the store could not satisfy
// natively. Alphabetical is re-applied with a locale-aware collation on top
// of the store's byte-order sort.
func (s *MosqueReadService) applyClientSort(mosques []models.Mosque, filters models.MosqueFilters) {
	switch filters.Sort {
	case models.SortMostAmenities:
		sort.SliceStable(mosques, func(i, j int) bool {
			return len(mosques[i].Amenities)+len(mosques[i].CustomAmenities) >
				len(mosques[j].Amenities)+len(mosques[j].CustomAmenities)
		})
	case models.SortAlphabetical:
		sort.SliceStable(mosques, func(i, j int) bool {
			return s.collator.CompareString(mosques[i].Name, mosques[j].Name) < 0
		})
	case models.SortNearest:
		if filters.Origin == nil {
			// No origin point supplied: the recency fallback already applied
			// by the store stands.
			return
		}
		origin := *filters.Origin
		sort.SliceStable(mosques, func(i, j int) bool {
			return haversineKM(origin.Lat, origin.Lng, mosques[i].Lat, mosques[i].Lng) <
				haversineKM(origin.Lat, origin.Lng, mosques[j].Lat, mosques[j].Lng)
		})
	}
}

// haversineKM is the great-circle distance between two coordinates.
func haversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKM = 6371.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}
