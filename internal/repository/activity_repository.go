package repository

import (
	"context"
	"fmt"

	"github.com/lepakmasjid/directory-api/internal/models"
	"github.com/lepakmasjid/directory-api/internal/query"
	"github.com/lepakmasjid/directory-api/pkg/store"
)

const activitiesCollection = "activities"

// ActivityRepository reads mosque activities.
type ActivityRepository struct {
	col     *store.Collection
	builder *query.Builder
}

// NewActivityRepository constructs the repository.
func NewActivityRepository(client *store.Client, builder *query.Builder) *ActivityRepository {
	return &ActivityRepository{col: client.Collection(activitiesCollection), builder: builder}
}

// ListActiveByMosque returns a mosque's active activities, newest first.
func (r *ActivityRepository) ListActiveByMosque(ctx context.Context, mosqueID string) ([]models.Activity, error) {
	fragment, err := r.builder.IdentifierFragment("mosque_id", mosqueID)
	if err != nil {
		return nil, err
	}
	result, err := r.col.GetList(ctx, 1, 100, store.ListOptions{
		Filter: fragment + ` && status = "active"`,
		Sort:   "-created",
	})
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	activities := make([]models.Activity, 0, len(result.Items))
	for _, item := range result.Items {
		var activity models.Activity
		if err := item.Decode(&activity); err != nil {
			return nil, fmt.Errorf("decode activity %s: %w", item.ID(), err)
		}
		activities = append(activities, activity)
	}
	return activities, nil
}
