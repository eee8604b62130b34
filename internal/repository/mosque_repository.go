package repository

import (
	"context"
	"fmt"

	"github.com/lepakmasjid/directory-api/internal/models"
	"github.com/lepakmasjid/directory-api/internal/query"
	"github.com/lepakmasjid/directory-api/pkg/store"
)

const mosquesCollection = "mosques"

// MosqueRepository persists mosque records in the backing store.
type MosqueRepository struct {
	col *store.Collection
}

// NewMosqueRepository constructs the repository.
func NewMosqueRepository(client *store.Client) *MosqueRepository {
	return &MosqueRepository{col: client.Collection(mosquesCollection)}
}

// List fetches one page of mosques for the compiled query.
func (r *MosqueRepository) List(ctx context.Context, q query.Query, perPage int) ([]models.Mosque, error) {
	if perPage <= 0 {
		perPage = 50
	}
	result, err := r.col.GetList(ctx, 1, perPage, store.ListOptions{
		Filter: q.Filter,
		Sort:   q.Sort,
	})
	if err != nil {
		return nil, fmt.Errorf("list mosques: %w", err)
	}
	mosques := make([]models.Mosque, 0, len(result.Items))
	for _, item := range result.Items {
		var mosque models.Mosque
		if err := item.Decode(&mosque); err != nil {
			return nil, fmt.Errorf("decode mosque %s: %w", item.ID(), err)
		}
		mosques = append(mosques, mosque)
	}
	return mosques, nil
}

// GetByID fetches a single mosque.
func (r *MosqueRepository) GetByID(ctx context.Context, id string) (*models.Mosque, error) {
	record, err := r.col.GetOne(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get mosque: %w", err)
	}
	var mosque models.Mosque
	if err := record.Decode(&mosque); err != nil {
		return nil, fmt.Errorf("decode mosque %s: %w", id, err)
	}
	return &mosque, nil
}

// Create inserts a mosque from a JSON-encodable payload.
func (r *MosqueRepository) Create(ctx context.Context, payload interface{}) (*models.Mosque, error) {
	record, err := r.col.Create(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("create mosque: %w", err)
	}
	var mosque models.Mosque
	if err := record.Decode(&mosque); err != nil {
		return nil, fmt.Errorf("decode created mosque: %w", err)
	}
	return &mosque, nil
}

// CreateMultipart inserts a mosque together with its image attachment in one
// store call, so either both persist or neither does.
func (r *MosqueRepository) CreateMultipart(ctx context.Context, fields map[string]string, image store.File) (*models.Mosque, error) {
	record, err := r.col.CreateMultipart(ctx, fields, []store.File{image})
	if err != nil {
		return nil, fmt.Errorf("create mosque with image: %w", err)
	}
	var mosque models.Mosque
	if err := record.Decode(&mosque); err != nil {
		return nil, fmt.Errorf("decode created mosque: %w", err)
	}
	return &mosque, nil
}

// Update patches a mosque from a JSON-encodable payload.
func (r *MosqueRepository) Update(ctx context.Context, id string, payload interface{}) (*models.Mosque, error) {
	record, err := r.col.Update(ctx, id, payload)
	if err != nil {
		return nil, fmt.Errorf("update mosque: %w", err)
	}
	var mosque models.Mosque
	if err := record.Decode(&mosque); err != nil {
		return nil, fmt.Errorf("decode updated mosque: %w", err)
	}
	return &mosque, nil
}

// UpdateMultipart patches a mosque together with a replacement image.
func (r *MosqueRepository) UpdateMultipart(ctx context.Context, id string, fields map[string]string, image store.File) (*models.Mosque, error) {
	record, err := r.col.UpdateMultipart(ctx, id, fields, []store.File{image})
	if err != nil {
		return nil, fmt.Errorf("update mosque with image: %w", err)
	}
	var mosque models.Mosque
	if err := record.Decode(&mosque); err != nil {
		return nil, fmt.Errorf("decode updated mosque: %w", err)
	}
	return &mosque, nil
}

// Delete removes a mosque record. Cascading its amenity links is the write
// service's job: the store enforces no referential cascade.
func (r *MosqueRepository) Delete(ctx context.Context, id string) error {
	if err := r.col.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete mosque: %w", err)
	}
	return nil
}
