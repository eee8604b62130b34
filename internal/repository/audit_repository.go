package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lepakmasjid/directory-api/internal/models"
	"github.com/lepakmasjid/directory-api/internal/query"
	"github.com/lepakmasjid/directory-api/pkg/store"
)

const auditLogsCollection = "audit_logs"

// knownAuditActions gates which action labels may be interpolated into a
// listing predicate.
var knownAuditActions = map[string]struct{}{
	models.AuditActionSubmissionCreate:  {},
	models.AuditActionSubmissionApprove: {},
	models.AuditActionSubmissionReject:  {},
	models.AuditActionMosqueCreate:      {},
	models.AuditActionMosqueUpdate:      {},
	models.AuditActionMosqueDelete:      {},
	models.AuditActionAmenitiesReplace:  {},
}

// knownEntityTypes gates entity type labels the same way.
var knownEntityTypes = map[string]struct{}{
	"mosque":     {},
	"submission": {},
}

// AuditRepository appends and lists audit trail entries. There is no update
// or delete: the trail is immutable once written.
type AuditRepository struct {
	col     *store.Collection
	builder *query.Builder
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(client *store.Client, builder *query.Builder) *AuditRepository {
	return &AuditRepository{col: client.Collection(auditLogsCollection), builder: builder}
}

// Create appends one entry.
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if _, err := r.col.Create(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// List returns entries newest first, narrowed by the filter. Every literal is
// checked against a fixed vocabulary or the identifier shape before it is
// interpolated.
func (r *AuditRepository) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	var fragments []string

	if filter.Action != "" {
		if _, ok := knownAuditActions[filter.Action]; !ok {
			return nil, fmt.Errorf("unknown audit action %q", filter.Action)
		}
		fragments = append(fragments, fmt.Sprintf(`action = "%s"`, filter.Action))
	}
	if filter.EntityType != "" {
		if _, ok := knownEntityTypes[filter.EntityType]; !ok {
			return nil, fmt.Errorf("unknown entity type %q", filter.EntityType)
		}
		fragments = append(fragments, fmt.Sprintf(`entity_type = "%s"`, filter.EntityType))
	}
	if filter.ActorID != "" {
		fragment, err := r.builder.IdentifierFragment("actor_id", filter.ActorID)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, fragment)
	}
	if filter.Start != nil {
		fragments = append(fragments, fmt.Sprintf(`timestamp >= "%s"`, filter.Start.UTC().Format(time.RFC3339)))
	}
	if filter.End != nil {
		fragments = append(fragments, fmt.Sprintf(`timestamp <= "%s"`, filter.End.UTC().Format(time.RFC3339)))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	result, err := r.col.GetList(ctx, 1, limit, store.ListOptions{
		Filter: strings.Join(fragments, " && "),
		Sort:   "-timestamp",
	})
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	entries := make([]models.AuditLog, 0, len(result.Items))
	for _, item := range result.Items {
		var entry models.AuditLog
		if err := item.Decode(&entry); err != nil {
			return nil, fmt.Errorf("decode audit entry %s: %w", item.ID(), err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
