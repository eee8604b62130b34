package service

import (
	"context"
	"io"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lepakmasjid/directory-api/internal/dto"
	"github.com/lepakmasjid/directory-api/internal/models"
	"github.com/lepakmasjid/directory-api/internal/sanitize"
	appErrors "github.com/lepakmasjid/directory-api/pkg/errors"
	"github.com/lepakmasjid/directory-api/pkg/store"
)

type mosqueWriter interface {
	Create(ctx context.Context, payload interface{}) (*models.Mosque, error)
	CreateMultipart(ctx context.Context, fields map[string]string, image store.File) (*models.Mosque, error)
	Update(ctx context.Context, id string, payload interface{}) (*models.Mosque, error)
	UpdateMultipart(ctx context.Context, id string, fields map[string]string, image store.File) (*models.Mosque, error)
	Delete(ctx context.Context, id string) error
}

type amenityLinkWriter interface {
	ListLinkIDsByMosque(ctx context.Context, mosqueID string) ([]string, error)
	CreateLink(ctx context.Context, mosqueID string, entry models.AmenityEntry) (*models.MosqueAmenity, error)
	DeleteLink(ctx context.Context, id string) error
}

// ImageUpload carries a validated-on-entry mosque image.
type ImageUpload struct {
	Name     string
	Size     int64
	MimeType string
	Reader   io.Reader
}

// MosqueWriteService performs validated create/update/delete of mosque
// records and the replace-all amenity edit.
type MosqueWriteService struct {
	mosques   mosqueWriter
	links     amenityLinkWriter
	sanitizer *sanitize.Sanitizer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMosqueWriteService constructs the write service.
func NewMosqueWriteService(mosques mosqueWriter, links amenityLinkWriter, sanitizer *sanitize.Sanitizer, logger *zap.Logger) *MosqueWriteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MosqueWriteService{
		mosques:   mosques,
		links:     links,
		sanitizer: sanitizer,
		validator: validator.New(),
		logger:    logger,
	}
}

// Create persists a new mosque, with its image in the same store call when
// one is supplied. Image validation runs before any write is attempted.
func (s *MosqueWriteService) Create(ctx context.Context, req dto.MosqueUpsertRequest, image *ImageUpload) (*models.Mosque, error) {
	if err := s.validateUpsert(req); err != nil {
		return nil, err
	}
	if image != nil {
		if err := s.sanitizer.ValidateImage(image.Name, image.Size, image.MimeType); err != nil {
			return nil, err
		}
		mosque, err := s.mosques.CreateMultipart(ctx, upsertFields(req), store.File{
			Field:  "image",
			Name:   image.Name,
			Reader: image.Reader,
		})
		if err != nil {
			return nil, appErrors.Upstream(err, "failed to create mosque")
		}
		return mosque, nil
	}

	mosque, err := s.mosques.Create(ctx, req)
	if err != nil {
		return nil, appErrors.Upstream(err, "failed to create mosque")
	}
	return mosque, nil
}

// Update patches an existing mosque, replacing its image when one is
// supplied.
func (s *MosqueWriteService) Update(ctx context.Context, id string, req dto.MosqueUpsertRequest, image *ImageUpload) (*models.Mosque, error) {
	if !s.sanitizer.ValidIdentifier(id) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid mosque identifier")
	}
	if err := s.validateUpsert(req); err != nil {
		return nil, err
	}
	if image != nil {
		if err := s.sanitizer.ValidateImage(image.Name, image.Size, image.MimeType); err != nil {
			return nil, err
		}
		mosque, err := s.mosques.UpdateMultipart(ctx, id, upsertFields(req), store.File{
			Field:  "image",
			Name:   image.Name,
			Reader: image.Reader,
		})
		if err != nil {
			if store.IsNotFound(err) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "Mosque not found")
			}
			return nil, appErrors.Upstream(err, "failed to update mosque")
		}
		return mosque, nil
	}

	mosque, err := s.mosques.Update(ctx, id, req)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Mosque not found")
		}
		return nil, appErrors.Upstream(err, "failed to update mosque")
	}
	return mosque, nil
}

// Delete removes the mosque and then cascades its amenity links, since the
// store enforces no referential cascade of its own.
func (s *MosqueWriteService) Delete(ctx context.Context, id string) error {
	if !s.sanitizer.ValidIdentifier(id) {
		return appErrors.Clone(appErrors.ErrValidation, "invalid mosque identifier")
	}

	linkIDs, err := s.links.ListLinkIDsByMosque(ctx, id)
	if err != nil {
		return appErrors.Upstream(err, "failed to load mosque amenities for deletion")
	}

	if err := s.mosques.Delete(ctx, id); err != nil {
		if store.IsNotFound(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "Mosque not found")
		}
		return appErrors.Upstream(err, "failed to delete mosque")
	}

	for _, linkID := range linkIDs {
		if err := s.links.DeleteLink(ctx, linkID); err != nil {
			s.logger.Warn("orphaned amenity link after mosque deletion",
				zap.String("mosque_id", id), zap.String("link_id", linkID), zap.Error(err))
			return appErrors.Upstream(err, "mosque deleted but some amenities could not be removed")
		}
	}
	return nil
}

// ReplaceAllAmenities deletes every existing link row for the mosque and
// inserts the full new set. An empty entry set is a valid full clear. The
// sequence is best-effort, not transactional: a concurrent reader inside the
// gap may observe a partial set.
func (s *MosqueWriteService) ReplaceAllAmenities(ctx context.Context, mosqueID string, entries []models.AmenityEntry) error {
	if !s.sanitizer.ValidIdentifier(mosqueID) {
		return appErrors.Clone(appErrors.ErrValidation, "invalid mosque identifier")
	}
	for _, entry := range entries {
		if entry.AmenityID != "" && !s.sanitizer.ValidIdentifier(entry.AmenityID) {
			return appErrors.Clone(appErrors.ErrValidation, "invalid amenity identifier")
		}
	}

	existing, err := s.links.ListLinkIDsByMosque(ctx, mosqueID)
	if err != nil {
		return appErrors.Upstream(err, "failed to load existing amenities")
	}
	for _, linkID := range existing {
		if err := s.links.DeleteLink(ctx, linkID); err != nil {
			return appErrors.Upstream(err, "failed to clear existing amenities")
		}
	}
	for _, entry := range entries {
		if _, err := s.links.CreateLink(ctx, mosqueID, entry); err != nil {
			return appErrors.Upstream(err, "failed to write replacement amenities")
		}
	}
	return nil
}

func (s *MosqueWriteService) validateUpsert(req dto.MosqueUpsertRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mosque payload")
	}
	if !s.sanitizer.ValidRegion(req.State) {
		return appErrors.Clone(appErrors.ErrValidation, "unknown state")
	}
	return nil
}

// upsertFields flattens the payload for a multipart write.
func upsertFields(req dto.MosqueUpsertRequest) map[string]string {
	fields := map[string]string{
		"name":           req.Name,
		"name_bm":        req.NameBM,
		"address":        req.Address,
		"state":          req.State,
		"lat":            strconv.FormatFloat(req.Lat, 'f', -1, 64),
		"lng":            strconv.FormatFloat(req.Lng, 'f', -1, 64),
		"description":    req.Description,
		"description_bm": req.DescriptionBM,
	}
	if req.Status != "" {
		fields["status"] = string(req.Status)
	}
	if req.CreatedBy != "" {
		fields["created_by"] = req.CreatedBy
	}
	return fields
}
