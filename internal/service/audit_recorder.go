package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lepakmasjid/directory-api/internal/models"
	appErrors "github.com/lepakmasjid/directory-api/pkg/errors"
	"github.com/lepakmasjid/directory-api/pkg/jobs"
)

type auditStore interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error)
}

// AuditRecorder appends immutable trail entries. Its contract has no update
// or delete. A failed append comes back as a warning-class error: the caller
// must surface it to an operator but never roll back the decision that was
// already applied.
type AuditRecorder struct {
	repo   auditStore
	logger *zap.Logger
	queue  *jobs.Queue
}

// NewAuditRecorder constructs the recorder.
func NewAuditRecorder(repo auditStore, logger *zap.Logger) *AuditRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditRecorder{repo: repo, logger: logger}
}

// Record appends one entry, stamping the time when unset.
func (r *AuditRecorder) Record(ctx context.Context, entry *models.AuditLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = models.Now()
	}
	if err := r.repo.Create(ctx, entry); err != nil {
		r.logger.Warn("failed to append audit entry",
			zap.String("action", entry.Action),
			zap.String("entity_id", entry.EntityID),
			zap.Error(err))
		return appErrors.Degraded(err, "action applied but the audit entry could not be recorded")
	}
	return nil
}

// StartAsync spins up a background queue for appends that have no caller to
// carry a warning back to, like the request trail written by middleware.
// Moderation decisions keep using Record so their warning reaches the admin.
func (r *AuditRecorder) StartAsync(ctx context.Context, workers int) {
	r.queue = jobs.NewQueue("audit-trail", func(ctx context.Context, job jobs.Job) error {
		entry, ok := job.Payload.(*models.AuditLog)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		return r.repo.Create(ctx, entry)
	}, jobs.Config{Workers: workers, Logger: r.logger})
	r.queue.Start(ctx)
}

// StopAsync drains the background queue workers.
func (r *AuditRecorder) StopAsync() {
	if r.queue != nil {
		r.queue.Stop()
	}
}

// RecordAsync enqueues one entry for background append, falling back to a
// synchronous write when the queue is not running.
func (r *AuditRecorder) RecordAsync(ctx context.Context, entry *models.AuditLog) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = models.Now()
	}
	if r.queue == nil {
		_ = r.Record(ctx, entry)
		return
	}
	if err := r.queue.Enqueue(jobs.Job{Type: entry.Action, Payload: entry}); err != nil {
		r.logger.Warn("failed to enqueue audit entry",
			zap.String("action", entry.Action),
			zap.Error(err))
	}
}

// List returns trail entries for admin tooling.
func (r *AuditRecorder) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	entries, err := r.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Upstream(err, "failed to load audit entries")
	}
	return entries, nil
}
