package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepakmasjid/directory-api/internal/dto"
	"github.com/lepakmasjid/directory-api/internal/models"
	"github.com/lepakmasjid/directory-api/internal/service"
	appErrors "github.com/lepakmasjid/directory-api/pkg/errors"
)

type mosqueReadMock struct {
	listResp    []models.Mosque
	listWarning *appErrors.Error
	listErr     error
	getResp     *models.MosqueWithDetails
	getErr      error
	lastFilters models.MosqueFilters
}

func (m *mosqueReadMock) List(ctx context.Context, filters models.MosqueFilters) ([]models.Mosque, *appErrors.Error, error) {
	m.lastFilters = filters
	return m.listResp, m.listWarning, m.listErr
}

func (m *mosqueReadMock) Get(ctx context.Context, id string) (*models.MosqueWithDetails, error) {
	return m.getResp, m.getErr
}

func (m *mosqueReadMock) ListAmenityCatalog(ctx context.Context) ([]models.Amenity, error) {
	return []models.Amenity{}, nil
}

type mosqueWriteMock struct {
	deleteErr   error
	lastEntries []models.AmenityEntry
}

func (m *mosqueWriteMock) Create(ctx context.Context, req dto.MosqueUpsertRequest, image *service.ImageUpload) (*models.Mosque, error) {
	return &models.Mosque{Name: req.Name}, nil
}

func (m *mosqueWriteMock) Update(ctx context.Context, id string, req dto.MosqueUpsertRequest, image *service.ImageUpload) (*models.Mosque, error) {
	return &models.Mosque{ID: id, Name: req.Name}, nil
}

func (m *mosqueWriteMock) Delete(ctx context.Context, id string) error {
	return m.deleteErr
}

func (m *mosqueWriteMock) ReplaceAllAmenities(ctx context.Context, mosqueID string, entries []models.AmenityEntry) error {
	m.lastEntries = entries
	return nil
}

func TestMosqueHandlerListParsesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reader := &mosqueReadMock{listResp: []models.Mosque{}}
	handler := NewMosqueHandler(reader, &mosqueWriteMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet,
		"/mosques?state=Selangor&q=masjid&amenities=a,b,%20c&sort=nearest&lat=3.14&lng=101.69", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Selangor", reader.lastFilters.State)
	assert.Equal(t, "masjid", reader.lastFilters.Search)
	assert.Equal(t, []string{"a", "b", "c"}, reader.lastFilters.Amenities)
	assert.Equal(t, models.SortNearest, reader.lastFilters.Sort)
	require.NotNil(t, reader.lastFilters.Origin)
	assert.InDelta(t, 3.14, reader.lastFilters.Origin.Lat, 0.001)
}

func TestMosqueHandlerListIgnoresPartialOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reader := &mosqueReadMock{listResp: []models.Mosque{}}
	handler := NewMosqueHandler(reader, &mosqueWriteMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/mosques?sort=nearest&lat=3.14", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, reader.lastFilters.Origin)
}

func TestMosqueHandlerListCarriesWarning(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reader := &mosqueReadMock{
		listResp:    []models.Mosque{{Name: "Masjid"}},
		listWarning: appErrors.Degraded(errors.New("aggregation failed"), "amenities are temporarily unavailable"),
	}
	handler := NewMosqueHandler(reader, &mosqueWriteMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/mosques", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data    []models.Mosque  `json:"data"`
		Warning *appErrors.Error `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.NotNil(t, body.Warning)
	assert.Equal(t, appErrors.ErrDegraded.Code, body.Warning.Code)
}

func TestMosqueHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reader := &mosqueReadMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "Mosque not found")}
	handler := NewMosqueHandler(reader, &mosqueWriteMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/mosques/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMosqueHandlerReplaceAmenitiesInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMosqueHandler(&mosqueReadMock{}, &mosqueWriteMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/mosques/x/amenities", bytes.NewBufferString(`{"entries":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.ReplaceAmenities(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
