package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lepakmasjid/directory-api/internal/models"
	appErrors "github.com/lepakmasjid/directory-api/pkg/errors"
	"github.com/lepakmasjid/directory-api/pkg/store"
)

type amenityLinkLister interface {
	ListLinksByMosqueIDs(ctx context.Context, mosqueIDs []string, perPage int) ([]store.Record, error)
}

// AmenityAggregator batch-joins amenity link rows to their parent mosques.
// One store round trip per call: link rows for the whole id set, catalog
// relation expanded inline, partitioned into catalog vs custom groups.
type AmenityAggregator struct {
	links        amenityLinkLister
	batchCeiling int
	logger       *zap.Logger
}

// NewAmenityAggregator constructs the aggregator. batchCeiling is the store's
// batch query limit; callers with more mosque ids must chunk.
func NewAmenityAggregator(links amenityLinkLister, batchCeiling int, logger *zap.Logger) *AmenityAggregator {
	if batchCeiling <= 0 {
		batchCeiling = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmenityAggregator{links: links, batchCeiling: batchCeiling, logger: logger}
}

// Aggregate retrieves the amenity groups for at most one batch of mosque
// identifiers. Every input id is present in the output with empty (never
// absent) groups; a hard store failure is returned as an error so the caller
// decides whether to degrade.
func (a *AmenityAggregator) Aggregate(ctx context.Context, mosqueIDs []string) (models.AmenityGroups, error) {
	groups := models.AmenityGroups{
		Catalog: make(map[string][]models.AmenityDetail, len(mosqueIDs)),
		Custom:  make(map[string][]models.MosqueAmenity, len(mosqueIDs)),
	}
	if len(mosqueIDs) == 0 {
		return groups, appErrors.Clone(appErrors.ErrValidation, "mosque id list is empty")
	}
	if len(mosqueIDs) > a.batchCeiling {
		return groups, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("mosque id list exceeds the batch ceiling of %d", a.batchCeiling))
	}

	for _, id := range mosqueIDs {
		groups.Catalog[id] = []models.AmenityDetail{}
		groups.Custom[id] = []models.MosqueAmenity{}
	}

	records, err := a.links.ListLinksByMosqueIDs(ctx, mosqueIDs, a.batchCeiling*4)
	if err != nil {
		return groups, err
	}

	for _, record := range records {
		mosqueID := record.GetString("mosque_id")
		if _, requested := groups.Catalog[mosqueID]; !requested {
			continue
		}

		if expanded := record.Expand("amenity_id"); record.GetString("amenity_id") != "" && expanded != nil {
			var amenity models.Amenity
			if err := expanded.Decode(&amenity); err != nil {
				a.logger.Warn("skipping undecodable catalog amenity",
					zap.String("link_id", record.ID()), zap.Error(err))
				continue
			}
			groups.Catalog[mosqueID] = append(groups.Catalog[mosqueID], models.AmenityDetail{
				Amenity:  amenity,
				Details:  record.GetRaw("details"),
				Verified: record.GetBool("verified"),
			})
			continue
		}

		var link models.MosqueAmenity
		if err := record.Decode(&link); err != nil {
			a.logger.Warn("skipping undecodable custom amenity",
				zap.String("link_id", record.ID()), zap.Error(err))
			continue
		}
		groups.Custom[mosqueID] = append(groups.Custom[mosqueID], link)
	}

	return groups, nil
}

// BatchCeiling exposes the configured batch bound so callers can chunk.
func (a *AmenityAggregator) BatchCeiling() int {
	return a.batchCeiling
}
