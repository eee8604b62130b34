package handler

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lepakmasjid/directory-api/internal/dto"
	"github.com/lepakmasjid/directory-api/internal/models"
	"github.com/lepakmasjid/directory-api/internal/service"
	appErrors "github.com/lepakmasjid/directory-api/pkg/errors"
	"github.com/lepakmasjid/directory-api/pkg/response"
)

type mosqueReadService interface {
	List(ctx context.Context, filters models.MosqueFilters) ([]models.Mosque, *appErrors.Error, error)
	Get(ctx context.Context, id string) (*models.MosqueWithDetails, error)
	ListAmenityCatalog(ctx context.Context) ([]models.Amenity, error)
}

type mosqueWriteService interface {
	Create(ctx context.Context, req dto.MosqueUpsertRequest, image *service.ImageUpload) (*models.Mosque, error)
	Update(ctx context.Context, id string, req dto.MosqueUpsertRequest, image *service.ImageUpload) (*models.Mosque, error)
	Delete(ctx context.Context, id string) error
	ReplaceAllAmenities(ctx context.Context, mosqueID string, entries []models.AmenityEntry) error
}

// MosqueHandler exposes the public listing/detail endpoints and the admin
// write endpoints.
type MosqueHandler struct {
	reader  mosqueReadService
	writer  mosqueWriteService
	metrics *service.MetricsService
}

// NewMosqueHandler constructs the handler.
func NewMosqueHandler(reader mosqueReadService, writer mosqueWriteService, metrics *service.MetricsService) *MosqueHandler {
	return &MosqueHandler{reader: reader, writer: writer, metrics: metrics}
}

// List godoc
// @Summary List approved mosques
// @Tags Mosques
// @Produce json
// @Param state query string false "State filter"
// @Param q query string false "Free-text search"
// @Param amenities query string false "Comma separated amenity ids"
// @Param sort query string false "alphabetical | most_amenities | nearest"
// @Param lat query number false "Origin latitude for nearest sort"
// @Param lng query number false "Origin longitude for nearest sort"
// @Success 200 {object} response.Envelope
// @Router /mosques [get]
func (h *MosqueHandler) List(c *gin.Context) {
	filters := models.MosqueFilters{
		State:  strings.TrimSpace(c.Query("state")),
		Search: c.Query("q"),
		Sort:   models.SortKey(strings.TrimSpace(c.Query("sort"))),
	}
	if raw := c.Query("amenities"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filters.Amenities = append(filters.Amenities, part)
			}
		}
	}
	if latRaw, lngRaw := c.Query("lat"), c.Query("lng"); latRaw != "" && lngRaw != "" {
		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lng, lngErr := strconv.ParseFloat(lngRaw, 64)
		if latErr == nil && lngErr == nil {
			filters.Origin = &models.Origin{Lat: lat, Lng: lng}
		}
	}

	mosques, warning, err := h.reader.List(c.Request.Context(), filters)
	if err != nil {
		response.Error(c, err)
		return
	}
	if warning != nil {
		if h.metrics != nil {
			h.metrics.ObserveDegradedListing()
		}
		response.JSONWithWarning(c, http.StatusOK, mosques, warning)
		return
	}
	response.JSON(c, http.StatusOK, mosques, nil)
}

// Get godoc
// @Summary Get one mosque with amenities and activities
// @Tags Mosques
// @Produce json
// @Param id path string true "Mosque ID"
// @Success 200 {object} response.Envelope
// @Router /mosques/{id} [get]
func (h *MosqueHandler) Get(c *gin.Context) {
	mosque, err := h.reader.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mosque, nil)
}

// ListAmenities godoc
// @Summary List the amenity catalog
// @Tags Amenities
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /amenities [get]
func (h *MosqueHandler) ListAmenities(c *gin.Context) {
	catalog, err := h.reader.ListAmenityCatalog(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, catalog, nil)
}

// Create godoc
// @Summary Create a mosque (admin)
// @Tags Mosques
// @Accept json,mpfd
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /mosques [post]
func (h *MosqueHandler) Create(c *gin.Context) {
	req, image, err := bindMosquePayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeUpload(c)
	mosque, err := h.writer.Create(c.Request.Context(), req, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mosque)
}

// Update godoc
// @Summary Update a mosque (admin)
// @Tags Mosques
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Mosque ID"
// @Success 200 {object} response.Envelope
// @Router /mosques/{id} [put]
func (h *MosqueHandler) Update(c *gin.Context) {
	req, image, err := bindMosquePayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeUpload(c)
	mosque, err := h.writer.Update(c.Request.Context(), c.Param("id"), req, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mosque, nil)
}

// Delete godoc
// @Summary Delete a mosque and its amenity links (admin)
// @Tags Mosques
// @Param id path string true "Mosque ID"
// @Success 204
// @Router /mosques/{id} [delete]
func (h *MosqueHandler) Delete(c *gin.Context) {
	if err := h.writer.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ReplaceAmenities godoc
// @Summary Replace a mosque's full amenity set (admin)
// @Tags Mosques
// @Accept json
// @Produce json
// @Param id path string true "Mosque ID"
// @Param payload body dto.ReplaceAmenitiesRequest true "Replacement entries"
// @Success 204
// @Router /mosques/{id}/amenities [put]
func (h *MosqueHandler) ReplaceAmenities(c *gin.Context) {
	var req dto.ReplaceAmenitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid amenities payload"))
		return
	}
	if err := h.writer.ReplaceAllAmenities(c.Request.Context(), c.Param("id"), req.Entries); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// bindMosquePayload accepts either a JSON body or a multipart form with an
// optional image part.
func bindMosquePayload(c *gin.Context) (dto.MosqueUpsertRequest, *service.ImageUpload, error) {
	var req dto.MosqueUpsertRequest

	contentType := c.ContentType()
	if contentType != "multipart/form-data" {
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, nil, appErrors.Clone(appErrors.ErrValidation, "invalid mosque payload")
		}
		return req, nil, nil
	}

	req.Name = c.PostForm("name")
	req.NameBM = c.PostForm("name_bm")
	req.Address = c.PostForm("address")
	req.State = c.PostForm("state")
	req.Description = c.PostForm("description")
	req.DescriptionBM = c.PostForm("description_bm")
	req.Status = models.MosqueStatus(c.PostForm("status"))
	if raw := c.PostForm("lat"); raw != "" {
		if lat, err := strconv.ParseFloat(raw, 64); err == nil {
			req.Lat = lat
		}
	}
	if raw := c.PostForm("lng"); raw != "" {
		if lng, err := strconv.ParseFloat(raw, 64); err == nil {
			req.Lng = lng
		}
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		// Image is optional on multipart writes too.
		return req, nil, nil
	}
	file, err := fileHeader.Open()
	if err != nil {
		return req, nil, appErrors.Clone(appErrors.ErrValidation, "image file could not be read")
	}
	c.Set(openedUploadKey, file)

	return req, &service.ImageUpload{
		Name:     fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Reader:   file,
	}, nil
}

const openedUploadKey = "openedUpload"

// closeUpload releases the multipart file once the request finishes.
func closeUpload(c *gin.Context) {
	if raw, ok := c.Get(openedUploadKey); ok {
		if file, ok := raw.(multipart.File); ok {
			_ = file.Close()
		}
	}
}
