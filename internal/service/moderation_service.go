package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lepakmasjid/directory-api/internal/dto"
	"github.com/lepakmasjid/directory-api/internal/models"
	"github.com/lepakmasjid/directory-api/internal/sanitize"
	appErrors "github.com/lepakmasjid/directory-api/pkg/errors"
	"github.com/lepakmasjid/directory-api/pkg/store"
)

type submissionStore interface {
	Create(ctx context.Context, submission *models.Submission) (*models.Submission, error)
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error)
	UpdateStatus(ctx context.Context, id string, fields map[string]interface{}) (*models.Submission, error)
}

type mosqueApplier interface {
	Create(ctx context.Context, req dto.MosqueUpsertRequest, image *ImageUpload) (*models.Mosque, error)
	Update(ctx context.Context, id string, req dto.MosqueUpsertRequest, image *ImageUpload) (*models.Mosque, error)
}

type auditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog) error
}

// Actor identifies who performed a moderation action, with request
// provenance for the audit trail.
type Actor struct {
	ID        string
	IP        string
	UserAgent string
}

// ModerationService owns the submission state machine: pending is the only
// state a decision may leave, approved and rejected are terminal. There is no
// store-level conditional write, so concurrent decisions are guarded by
// re-reading the current status; the read-to-write window is a known
// limitation of the backing store.
type ModerationService struct {
	subs      submissionStore
	writer    mosqueApplier
	audit     auditRecorder
	sanitizer *sanitize.Sanitizer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewModerationService constructs the pipeline.
func NewModerationService(subs submissionStore, writer mosqueApplier, audit auditRecorder, sanitizer *sanitize.Sanitizer, logger *zap.Logger) *ModerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModerationService{
		subs:      subs,
		writer:    writer,
		audit:     audit,
		sanitizer: sanitizer,
		validator: validator.New(),
		logger:    logger,
	}
}

// Create stores a new submission in the pending state.
func (s *ModerationService) Create(ctx context.Context, req dto.CreateSubmissionRequest, submittedBy string) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}
	if strings.TrimSpace(submittedBy) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "submitter is required")
	}
	if len(req.Data) == 0 || !json.Valid(req.Data) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "submission data must be valid JSON")
	}

	submission := &models.Submission{
		Type:        req.Type,
		Data:        req.Data,
		Status:      models.SubmissionStatusPending,
		SubmittedBy: submittedBy,
		SubmittedAt: models.Now(),
	}
	switch req.Type {
	case models.SubmissionTypeNewMosque:
		if req.MosqueID != "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "a new mosque submission must not reference a mosque")
		}
	case models.SubmissionTypeEditMosque:
		if !s.sanitizer.ValidIdentifier(req.MosqueID) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "an edit submission requires a valid target mosque")
		}
		submission.MosqueID = req.MosqueID
	}

	created, err := s.subs.Create(ctx, submission)
	if err != nil {
		return nil, appErrors.Upstream(err, "failed to create submission")
	}

	s.emitAudit(ctx, &models.AuditLog{
		ActorID:    submittedBy,
		Action:     models.AuditActionSubmissionCreate,
		EntityType: "submission",
		EntityID:   created.ID,
		After:      statusSnapshot(created.Status),
	})
	return created, nil
}

// Approve applies a pending submission's payload to the target mosque, then
// marks the submission approved. The ordering is deliberate: if the apply
// step fails the submission stays pending and no approval is recorded. The
// returned warning is non-nil when the decision applied but its audit entry
// could not be written.
func (s *ModerationService) Approve(ctx context.Context, id string, actor Actor) (*models.Submission, *appErrors.Error, error) {
	submission, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if submission.Status != models.SubmissionStatusPending {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidTransition, "submission has already been reviewed")
	}

	var payload dto.MosqueUpsertRequest
	if err := json.Unmarshal(submission.Data, &payload); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "submission payload is malformed")
	}

	switch submission.Type {
	case models.SubmissionTypeNewMosque:
		// Approval publishes: a payload without an explicit status goes
		// live immediately.
		if payload.Status == "" {
			payload.Status = models.MosqueStatusApproved
		}
		if payload.CreatedBy == "" {
			payload.CreatedBy = submission.SubmittedBy
		}
		if _, err := s.writer.Create(ctx, payload, nil); err != nil {
			return nil, nil, err
		}
	case models.SubmissionTypeEditMosque:
		if _, err := s.writer.Update(ctx, submission.MosqueID, payload, nil); err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unsupported submission type")
	}

	now := models.Now()
	updated, err := s.subs.UpdateStatus(ctx, id, map[string]interface{}{
		"status":      models.SubmissionStatusApproved,
		"reviewed_by": actor.ID,
		"reviewed_at": now,
	})
	if err != nil {
		// The mosque change is already live but the submission still reads
		// pending. Surfaced rather than retried: a blind retry of a
		// new_mosque apply would duplicate the record.
		s.logger.Error("approved payload applied but submission status update failed",
			zap.String("submission_id", id), zap.Error(err))
		return nil, nil, appErrors.Upstream(err, "failed to record approval")
	}

	warning := s.emitAudit(ctx, &models.AuditLog{
		ActorID:    actor.ID,
		Action:     models.AuditActionSubmissionApprove,
		EntityType: "submission",
		EntityID:   id,
		Before:     statusSnapshot(models.SubmissionStatusPending),
		After:      statusSnapshot(models.SubmissionStatusApproved),
		IPAddress:  actor.IP,
		UserAgent:  actor.UserAgent,
	})
	return updated, warning, nil
}

// Reject marks a pending submission rejected with a mandatory reason.
func (s *ModerationService) Reject(ctx context.Context, id string, actor Actor, reason string) (*models.Submission, *appErrors.Error, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "a rejection reason is required")
	}

	submission, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if submission.Status != models.SubmissionStatusPending {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidTransition, "submission has already been reviewed")
	}

	now := models.Now()
	updated, err := s.subs.UpdateStatus(ctx, id, map[string]interface{}{
		"status":           models.SubmissionStatusRejected,
		"reviewed_by":      actor.ID,
		"reviewed_at":      now,
		"rejection_reason": strings.TrimSpace(reason),
	})
	if err != nil {
		return nil, nil, appErrors.Upstream(err, "failed to record rejection")
	}

	warning := s.emitAudit(ctx, &models.AuditLog{
		ActorID:    actor.ID,
		Action:     models.AuditActionSubmissionReject,
		EntityType: "submission",
		EntityID:   id,
		Before:     statusSnapshot(models.SubmissionStatusPending),
		After:      statusSnapshot(models.SubmissionStatusRejected),
		IPAddress:  actor.IP,
		UserAgent:  actor.UserAgent,
	})
	return updated, warning, nil
}

// List returns the review queue, optionally narrowed to one status.
func (s *ModerationService) List(ctx context.Context, status string) ([]models.Submission, error) {
	filter := models.SubmissionFilter{}
	switch models.SubmissionStatus(status) {
	case models.SubmissionStatusPending, models.SubmissionStatusApproved, models.SubmissionStatusRejected:
		filter.Status = models.SubmissionStatus(status)
	case "":
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown submission status filter")
	}
	submissions, err := s.subs.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Upstream(err, "failed to load submissions")
	}
	return submissions, nil
}

// Get returns a single submission.
func (s *ModerationService) Get(ctx context.Context, id string) (*models.Submission, error) {
	return s.load(ctx, id)
}

func (s *ModerationService) load(ctx context.Context, id string) (*models.Submission, error) {
	if !s.sanitizer.ValidIdentifier(id) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid submission identifier")
	}
	submission, err := s.subs.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Submission not found")
		}
		return nil, appErrors.Upstream(err, "failed to load submission")
	}
	return submission, nil
}

// emitAudit appends a trail entry. Failures come back as warnings and are
// never allowed to undo the decision they describe.
func (s *ModerationService) emitAudit(ctx context.Context, entry *models.AuditLog) *appErrors.Error {
	if s.audit == nil {
		return nil
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		return appErrors.FromError(err)
	}
	return nil
}

func statusSnapshot(status models.SubmissionStatus) json.RawMessage {
	buf, _ := json.Marshal(map[string]string{"status": string(status)})
	return buf
}
