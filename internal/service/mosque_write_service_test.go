package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lepakmasjid/directory-api/internal/dto"
	"github.com/lepakmasjid/directory-api/internal/models"
	"github.com/lepakmasjid/directory-api/internal/sanitize"
	appErrors "github.com/lepakmasjid/directory-api/pkg/errors"
	"github.com/lepakmasjid/directory-api/pkg/store"
)

type stubMosqueWriter struct {
	created         *models.Mosque
	createCalls     int
	multipartCalls  int
	multipartFields map[string]string
	deleteCalls     int
	deleteErr       error
	updateNotFound  bool
}

func (s *stubMosqueWriter) Create(ctx context.Context, payload interface{}) (*models.Mosque, error) {
	s.createCalls++
	if s.created != nil {
		return s.created, nil
	}
	return &models.Mosque{ID: mosqueID1}, nil
}

func (s *stubMosqueWriter) CreateMultipart(ctx context.Context, fields map[string]string, image store.File) (*models.Mosque, error) {
	s.multipartCalls++
	s.multipartFields = fields
	return &models.Mosque{ID: mosqueID1, Image: image.Name}, nil
}

func (s *stubMosqueWriter) Update(ctx context.Context, id string, payload interface{}) (*models.Mosque, error) {
	if s.updateNotFound {
		return nil, &store.APIError{Status: 404}
	}
	return &models.Mosque{ID: id}, nil
}

func (s *stubMosqueWriter) UpdateMultipart(ctx context.Context, id string, fields map[string]string, image store.File) (*models.Mosque, error) {
	s.multipartCalls++
	s.multipartFields = fields
	return &models.Mosque{ID: id, Image: image.Name}, nil
}

func (s *stubMosqueWriter) Delete(ctx context.Context, id string) error {
	s.deleteCalls++
	return s.deleteErr
}

type stubLinkWriter struct {
	linkIDs   []string
	listErr   error
	deleted   []string
	deleteErr error
	created   []models.AmenityEntry
	createErr error
}

func (s *stubLinkWriter) ListLinkIDsByMosque(ctx context.Context, mosqueID string) ([]string, error) {
	return s.linkIDs, s.listErr
}

func (s *stubLinkWriter) CreateLink(ctx context.Context, mosqueID string, entry models.AmenityEntry) (*models.MosqueAmenity, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, entry)
	return &models.MosqueAmenity{MosqueID: mosqueID, AmenityID: entry.AmenityID}, nil
}

func (s *stubLinkWriter) DeleteLink(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func validUpsert() dto.MosqueUpsertRequest {
	return dto.MosqueUpsertRequest{
		Name:    "Masjid Test",
		Address: "Jalan Test 1",
		State:   "Selangor",
		Lat:     3.1,
		Lng:     101.6,
	}
}

func newWriteFixture(mosques *stubMosqueWriter, links *stubLinkWriter) *MosqueWriteService {
	return NewMosqueWriteService(mosques, links, sanitize.New(sanitize.Config{}), nil)
}

func TestCreateRejectsMissingRequiredFields(t *testing.T) {
	mosques := &stubMosqueWriter{}
	svc := newWriteFixture(mosques, &stubLinkWriter{})

	req := validUpsert()
	req.Name = ""
	_, err := svc.Create(context.Background(), req, nil)
	require.Error(t, err)
	require.Zero(t, mosques.createCalls)
}

func TestCreateRejectsUnknownState(t *testing.T) {
	svc := newWriteFixture(&stubMosqueWriter{}, &stubLinkWriter{})

	req := validUpsert()
	req.State = "Atlantis"
	_, err := svc.Create(context.Background(), req, nil)
	require.Error(t, err)
}

func TestCreateValidatesImageBeforeWrite(t *testing.T) {
	mosques := &stubMosqueWriter{}
	svc := newWriteFixture(mosques, &stubLinkWriter{})

	_, err := svc.Create(context.Background(), validUpsert(), &ImageUpload{
		Name:     "huge.png",
		Size:     100 * 1024 * 1024,
		MimeType: "image/png",
		Reader:   strings.NewReader("x"),
	})
	require.Error(t, err)
	require.Zero(t, mosques.createCalls)
	require.Zero(t, mosques.multipartCalls)
}

func TestCreateWithImageUsesMultipart(t *testing.T) {
	mosques := &stubMosqueWriter{}
	svc := newWriteFixture(mosques, &stubLinkWriter{})

	mosque, err := svc.Create(context.Background(), validUpsert(), &ImageUpload{
		Name:     "front.jpg",
		Size:     1024,
		MimeType: "image/jpeg",
		Reader:   strings.NewReader("jpegdata"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, mosques.multipartCalls)
	require.Zero(t, mosques.createCalls)
	require.Equal(t, "front.jpg", mosque.Image)
	require.Equal(t, "Masjid Test", mosques.multipartFields["name"])
	require.Equal(t, "3.1", mosques.multipartFields["lat"])
}

func TestUpdateMapsNotFound(t *testing.T) {
	svc := newWriteFixture(&stubMosqueWriter{updateNotFound: true}, &stubLinkWriter{})

	_, err := svc.Update(context.Background(), mosqueID1, validUpsert(), nil)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUpdateRejectsMalformedID(t *testing.T) {
	svc := newWriteFixture(&stubMosqueWriter{}, &stubLinkWriter{})

	_, err := svc.Update(context.Background(), "nope", validUpsert(), nil)
	require.Error(t, err)
}

func TestDeleteCascadesAmenityLinks(t *testing.T) {
	mosques := &stubMosqueWriter{}
	links := &stubLinkWriter{linkIDs: []string{"link1", "link2"}}
	svc := newWriteFixture(mosques, links)

	err := svc.Delete(context.Background(), mosqueID1)
	require.NoError(t, err)
	require.Equal(t, 1, mosques.deleteCalls)
	require.Equal(t, []string{"link1", "link2"}, links.deleted)
}

func TestDeleteNotFound(t *testing.T) {
	mosques := &stubMosqueWriter{deleteErr: &store.APIError{Status: 404}}
	svc := newWriteFixture(mosques, &stubLinkWriter{})

	err := svc.Delete(context.Background(), mosqueID1)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReplaceAllAmenitiesClearsThenWrites(t *testing.T) {
	links := &stubLinkWriter{linkIDs: []string{"old1"}}
	svc := newWriteFixture(&stubMosqueWriter{}, links)

	err := svc.ReplaceAllAmenities(context.Background(), mosqueID1, []models.AmenityEntry{
		{AmenityID: amenityID, Verified: true},
		{},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"old1"}, links.deleted)
	require.Len(t, links.created, 2)
}

func TestReplaceAllAmenitiesEmptySetIsFullClear(t *testing.T) {
	links := &stubLinkWriter{linkIDs: []string{"old1", "old2"}}
	svc := newWriteFixture(&stubMosqueWriter{}, links)

	err := svc.ReplaceAllAmenities(context.Background(), mosqueID1, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"old1", "old2"}, links.deleted)
	require.Empty(t, links.created)
}

func TestReplaceAllAmenitiesRejectsMalformedAmenityID(t *testing.T) {
	links := &stubLinkWriter{linkIDs: []string{"old1"}}
	svc := newWriteFixture(&stubMosqueWriter{}, links)

	err := svc.ReplaceAllAmenities(context.Background(), mosqueID1, []models.AmenityEntry{
		{AmenityID: "bad id"},
	})
	require.Error(t, err)
	// Validation failed before any link was touched.
	require.Empty(t, links.deleted)
}
