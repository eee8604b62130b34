package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lepakmasjid/directory-api/internal/models"
	"github.com/lepakmasjid/directory-api/internal/query"
	"github.com/lepakmasjid/directory-api/internal/sanitize"
	appErrors "github.com/lepakmasjid/directory-api/pkg/errors"
	"github.com/lepakmasjid/directory-api/pkg/store"
)

const (
	mosqueID1 = "mosque1aaaaaaaa"
	mosqueID2 = "mosque2aaaaaaaa"
	mosqueID3 = "mosque3aaaaaaaa"
	amenityID = "amenity1aaaaaaa"
)

type stubMosqueReader struct {
	page      []models.Mosque
	byID      map[string]*models.Mosque
	listErr   error
	lastQuery query.Query
}

func (s *stubMosqueReader) List(ctx context.Context, q query.Query, perPage int) ([]models.Mosque, error) {
	s.lastQuery = q
	return s.page, s.listErr
}

func (s *stubMosqueReader) GetByID(ctx context.Context, id string) (*models.Mosque, error) {
	if m, ok := s.byID[id]; ok {
		return m, nil
	}
	return nil, &store.APIError{Status: 404, Code: "not_found"}
}

type stubAmenityReader struct {
	catalog    []models.Amenity
	mosqueIDs  []string
	resolveErr error
}

func (s *stubAmenityReader) ListCatalog(ctx context.Context) ([]models.Amenity, error) {
	return s.catalog, nil
}

func (s *stubAmenityReader) MosqueIDsWithAmenities(ctx context.Context, amenityIDs []string, perPage int) ([]string, error) {
	return s.mosqueIDs, s.resolveErr
}

type stubActivityReader struct {
	activities []models.Activity
}

func (s *stubActivityReader) ListActiveByMosque(ctx context.Context, mosqueID string) ([]models.Activity, error) {
	if s.activities == nil {
		return []models.Activity{}, nil
	}
	return s.activities, nil
}

type stubAggregator struct {
	groups  models.AmenityGroups
	err     error
	ceiling int
}

func (s *stubAggregator) Aggregate(ctx context.Context, mosqueIDs []string) (models.AmenityGroups, error) {
	if s.err != nil {
		return models.AmenityGroups{}, s.err
	}
	if s.groups.Catalog != nil {
		return s.groups, nil
	}
	groups := models.AmenityGroups{
		Catalog: make(map[string][]models.AmenityDetail),
		Custom:  make(map[string][]models.MosqueAmenity),
	}
	for _, id := range mosqueIDs {
		groups.Catalog[id] = []models.AmenityDetail{}
		groups.Custom[id] = []models.MosqueAmenity{}
	}
	return groups, nil
}

func (s *stubAggregator) BatchCeiling() int {
	if s.ceiling <= 0 {
		return 100
	}
	return s.ceiling
}

func newReadFixture(mosques *stubMosqueReader, amenities *stubAmenityReader, agg *stubAggregator) *MosqueReadService {
	sanitizer := sanitize.New(sanitize.Config{})
	return NewMosqueReadService(
		mosques,
		amenities,
		&stubActivityReader{},
		agg,
		query.NewBuilder(sanitizer),
		sanitizer,
		50,
		nil,
	)
}

func TestListFiltersOutNonApproved(t *testing.T) {
	mosques := &stubMosqueReader{page: []models.Mosque{
		{ID: mosqueID1, Name: "A", Status: models.MosqueStatusApproved},
		{ID: mosqueID2, Name: "B", Status: models.MosqueStatusPending},
		{ID: mosqueID3, Name: "C", Status: ""},
	}}
	svc := newReadFixture(mosques, &stubAmenityReader{}, &stubAggregator{})

	result, warning, err := svc.List(context.Background(), models.MosqueFilters{})
	require.NoError(t, err)
	require.Nil(t, warning)
	require.Len(t, result, 2)
	for _, m := range result {
		require.NotEqual(t, models.MosqueStatusPending, m.Status)
	}
}

func TestListDegradesWhenAggregationFails(t *testing.T) {
	mosques := &stubMosqueReader{page: []models.Mosque{
		{ID: mosqueID1, Name: "A", Status: models.MosqueStatusApproved},
	}}
	svc := newReadFixture(mosques, &stubAmenityReader{}, &stubAggregator{err: errors.New("store down")})

	result, warning, err := svc.List(context.Background(), models.MosqueFilters{})
	require.NoError(t, err)
	require.NotNil(t, warning)
	require.Equal(t, appErrors.ErrDegraded.Code, warning.Code)
	require.Len(t, result, 1)
	require.NotNil(t, result[0].Amenities)
	require.Empty(t, result[0].Amenities)
	require.NotNil(t, result[0].CustomAmenities)
}

func TestListAmenityFilterShortCircuitsOnNoMatch(t *testing.T) {
	mosques := &stubMosqueReader{page: []models.Mosque{{ID: mosqueID1}}}
	amenities := &stubAmenityReader{mosqueIDs: nil}
	svc := newReadFixture(mosques, amenities, &stubAggregator{})

	result, warning, err := svc.List(context.Background(), models.MosqueFilters{
		Amenities: []string{amenityID},
	})
	require.NoError(t, err)
	require.Nil(t, warning)
	require.Empty(t, result)
	// The mosque listing was never queried.
	require.Equal(t, query.Query{}, mosques.lastQuery)
}

func TestListAmenityFilterConstrainsQuery(t *testing.T) {
	mosques := &stubMosqueReader{page: []models.Mosque{
		{ID: mosqueID1, Status: models.MosqueStatusApproved},
	}}
	amenities := &stubAmenityReader{mosqueIDs: []string{mosqueID1}}
	svc := newReadFixture(mosques, amenities, &stubAggregator{})

	_, _, err := svc.List(context.Background(), models.MosqueFilters{
		Amenities: []string{amenityID, amenityID},
	})
	require.NoError(t, err)
	require.Contains(t, mosques.lastQuery.Filter, `id = "`+mosqueID1+`"`)
}

func TestListRejectsMalformedAmenityID(t *testing.T) {
	svc := newReadFixture(&stubMosqueReader{}, &stubAmenityReader{}, &stubAggregator{})

	_, _, err := svc.List(context.Background(), models.MosqueFilters{
		Amenities: []string{`bad" || 1=1`},
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestListSortMostAmenities(t *testing.T) {
	mosques := &stubMosqueReader{page: []models.Mosque{
		{ID: mosqueID1, Name: "One", Status: models.MosqueStatusApproved},
		{ID: mosqueID2, Name: "Two", Status: models.MosqueStatusApproved},
	}}
	agg := &stubAggregator{groups: models.AmenityGroups{
		Catalog: map[string][]models.AmenityDetail{
			mosqueID1: {},
			mosqueID2: {{}, {}},
		},
		Custom: map[string][]models.MosqueAmenity{
			mosqueID1: {},
			mosqueID2: {},
		},
	}}
	svc := newReadFixture(mosques, &stubAmenityReader{}, agg)

	result, _, err := svc.List(context.Background(), models.MosqueFilters{Sort: models.SortMostAmenities})
	require.NoError(t, err)
	require.Equal(t, mosqueID2, result[0].ID)
	require.Equal(t, mosqueID1, result[1].ID)
}

func TestListSortNearest(t *testing.T) {
	mosques := &stubMosqueReader{page: []models.Mosque{
		{ID: mosqueID1, Name: "Far", Status: models.MosqueStatusApproved, Lat: 5.4, Lng: 100.3},
		{ID: mosqueID2, Name: "Near", Status: models.MosqueStatusApproved, Lat: 3.15, Lng: 101.7},
	}}
	svc := newReadFixture(mosques, &stubAmenityReader{}, &stubAggregator{})

	// Origin in Kuala Lumpur; mosqueID2 is closer.
	result, _, err := svc.List(context.Background(), models.MosqueFilters{
		Sort:   models.SortNearest,
		Origin: &models.Origin{Lat: 3.14, Lng: 101.69},
	})
	require.NoError(t, err)
	require.Equal(t, mosqueID2, result[0].ID)

	// Without an origin the stored order stands.
	result, _, err = svc.List(context.Background(), models.MosqueFilters{Sort: models.SortNearest})
	require.NoError(t, err)
	require.Equal(t, mosqueID1, result[0].ID)
}

func TestListSortAlphabetical(t *testing.T) {
	mosques := &stubMosqueReader{page: []models.Mosque{
		{ID: mosqueID1, Name: "surau kecil", Status: models.MosqueStatusApproved},
		{ID: mosqueID2, Name: "Masjid Besar", Status: models.MosqueStatusApproved},
	}}
	svc := newReadFixture(mosques, &stubAmenityReader{}, &stubAggregator{})

	result, _, err := svc.List(context.Background(), models.MosqueFilters{Sort: models.SortAlphabetical})
	require.NoError(t, err)
	require.Equal(t, "Masjid Besar", result[0].Name)
}

func TestGetValidatesIdentifierBeforeLookup(t *testing.T) {
	svc := newReadFixture(&stubMosqueReader{}, &stubAmenityReader{}, &stubAggregator{})

	_, err := svc.Get(context.Background(), "nope")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGetMapsStoreNotFound(t *testing.T) {
	svc := newReadFixture(&stubMosqueReader{byID: map[string]*models.Mosque{}}, &stubAmenityReader{}, &stubAggregator{})

	_, err := svc.Get(context.Background(), mosqueID1)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	require.Equal(t, "Mosque not found", appErr.Message)
}

func TestGetAttachesAmenitiesAndActivities(t *testing.T) {
	mosques := &stubMosqueReader{byID: map[string]*models.Mosque{
		mosqueID1: {ID: mosqueID1, Name: "Masjid Negara", Status: models.MosqueStatusApproved},
	}}
	agg := &stubAggregator{groups: models.AmenityGroups{
		Catalog: map[string][]models.AmenityDetail{mosqueID1: {{Verified: true}}},
		Custom:  map[string][]models.MosqueAmenity{mosqueID1: {}},
	}}
	svc := newReadFixture(mosques, &stubAmenityReader{}, agg)

	details, err := svc.Get(context.Background(), mosqueID1)
	require.NoError(t, err)
	require.Len(t, details.Amenities, 1)
	require.NotNil(t, details.Activities)
}
