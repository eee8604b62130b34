package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lepakmasjid/directory-api/internal/dto"
	"github.com/lepakmasjid/directory-api/internal/models"
	"github.com/lepakmasjid/directory-api/internal/sanitize"
	appErrors "github.com/lepakmasjid/directory-api/pkg/errors"
	"github.com/lepakmasjid/directory-api/pkg/store"
)

const submissionID = "subm1aaaaaaaaaa"

type stubSubmissionStore struct {
	byID         map[string]*models.Submission
	created      *models.Submission
	updated      map[string]interface{}
	updateErr    error
	updateCalled bool
}

func (s *stubSubmissionStore) Create(ctx context.Context, submission *models.Submission) (*models.Submission, error) {
	clone := *submission
	clone.ID = submissionID
	s.created = &clone
	return &clone, nil
}

func (s *stubSubmissionStore) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	if sub, ok := s.byID[id]; ok {
		clone := *sub
		return &clone, nil
	}
	return nil, &store.APIError{Status: 404}
}

func (s *stubSubmissionStore) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error) {
	return nil, nil
}

func (s *stubSubmissionStore) UpdateStatus(ctx context.Context, id string, fields map[string]interface{}) (*models.Submission, error) {
	s.updateCalled = true
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.updated = fields
	sub := s.byID[id]
	clone := *sub
	clone.Status = fields["status"].(models.SubmissionStatus)
	return &clone, nil
}

type stubApplier struct {
	createCalls int
	updateCalls int
	lastCreate  dto.MosqueUpsertRequest
	lastUpdate  dto.MosqueUpsertRequest
	lastTarget  string
	err         error
}

func (s *stubApplier) Create(ctx context.Context, req dto.MosqueUpsertRequest, image *ImageUpload) (*models.Mosque, error) {
	s.createCalls++
	s.lastCreate = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Mosque{ID: mosqueID1}, nil
}

func (s *stubApplier) Update(ctx context.Context, id string, req dto.MosqueUpsertRequest, image *ImageUpload) (*models.Mosque, error) {
	s.updateCalls++
	s.lastUpdate = req
	s.lastTarget = id
	if s.err != nil {
		return nil, s.err
	}
	return &models.Mosque{ID: id}, nil
}

type stubAuditRecorder struct {
	entries []*models.AuditLog
	err     error
}

func (s *stubAuditRecorder) Record(ctx context.Context, entry *models.AuditLog) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func pendingSubmission(kind models.SubmissionType) *models.Submission {
	payload, _ := json.Marshal(dto.MosqueUpsertRequest{
		Name:    "Masjid Baru",
		Address: "Jalan Baru 2",
		State:   "Selangor",
	})
	sub := &models.Submission{
		ID:          submissionID,
		Type:        kind,
		Data:        payload,
		Status:      models.SubmissionStatusPending,
		SubmittedBy: "user1aaaaaaaaaa",
	}
	if kind == models.SubmissionTypeEditMosque {
		sub.MosqueID = mosqueID1
	}
	return sub
}

func newModerationFixture(subs *stubSubmissionStore, applier *stubApplier, audit *stubAuditRecorder) *ModerationService {
	return NewModerationService(subs, applier, audit, sanitize.New(sanitize.Config{}), nil)
}

func TestCreateSubmissionPending(t *testing.T) {
	subs := &stubSubmissionStore{}
	audit := &stubAuditRecorder{}
	svc := newModerationFixture(subs, &stubApplier{}, audit)

	created, err := svc.Create(context.Background(), dto.CreateSubmissionRequest{
		Type: models.SubmissionTypeNewMosque,
		Data: json.RawMessage(`{"name":"Masjid Baru"}`),
	}, "user1aaaaaaaaaa")
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusPending, created.Status)
	require.False(t, created.SubmittedAt.IsZero())

	require.Len(t, audit.entries, 1)
	require.Equal(t, models.AuditActionSubmissionCreate, audit.entries[0].Action)
}

func TestCreateSubmissionRejectsInvalidData(t *testing.T) {
	svc := newModerationFixture(&stubSubmissionStore{}, &stubApplier{}, &stubAuditRecorder{})

	_, err := svc.Create(context.Background(), dto.CreateSubmissionRequest{
		Type: models.SubmissionTypeNewMosque,
		Data: json.RawMessage(`{not json`),
	}, "user1aaaaaaaaaa")
	require.Error(t, err)
}

func TestCreateNewMosqueSubmissionMustNotReferenceMosque(t *testing.T) {
	svc := newModerationFixture(&stubSubmissionStore{}, &stubApplier{}, &stubAuditRecorder{})

	_, err := svc.Create(context.Background(), dto.CreateSubmissionRequest{
		Type:     models.SubmissionTypeNewMosque,
		MosqueID: mosqueID1,
		Data:     json.RawMessage(`{}`),
	}, "user1aaaaaaaaaa")
	require.Error(t, err)
}

func TestCreateEditSubmissionRequiresTarget(t *testing.T) {
	svc := newModerationFixture(&stubSubmissionStore{}, &stubApplier{}, &stubAuditRecorder{})

	_, err := svc.Create(context.Background(), dto.CreateSubmissionRequest{
		Type: models.SubmissionTypeEditMosque,
		Data: json.RawMessage(`{}`),
	}, "user1aaaaaaaaaa")
	require.Error(t, err)
}

func TestApproveNewMosquePublishes(t *testing.T) {
	subs := &stubSubmissionStore{byID: map[string]*models.Submission{
		submissionID: pendingSubmission(models.SubmissionTypeNewMosque),
	}}
	applier := &stubApplier{}
	audit := &stubAuditRecorder{}
	svc := newModerationFixture(subs, applier, audit)

	updated, warning, err := svc.Approve(context.Background(), submissionID, Actor{ID: "admin1aaaaaaaaa"})
	require.NoError(t, err)
	require.Nil(t, warning)
	require.Equal(t, models.SubmissionStatusApproved, updated.Status)

	require.Equal(t, 1, applier.createCalls)
	require.Equal(t, models.MosqueStatusApproved, applier.lastCreate.Status)
	require.Equal(t, "user1aaaaaaaaaa", applier.lastCreate.CreatedBy)

	require.Equal(t, models.SubmissionStatusApproved, subs.updated["status"])
	require.Equal(t, "admin1aaaaaaaaa", subs.updated["reviewed_by"])

	require.Len(t, audit.entries, 1)
	require.Equal(t, models.AuditActionSubmissionApprove, audit.entries[0].Action)
}

func TestApproveEditTargetsSubmissionMosque(t *testing.T) {
	subs := &stubSubmissionStore{byID: map[string]*models.Submission{
		submissionID: pendingSubmission(models.SubmissionTypeEditMosque),
	}}
	applier := &stubApplier{}
	svc := newModerationFixture(subs, applier, &stubAuditRecorder{})

	_, _, err := svc.Approve(context.Background(), submissionID, Actor{ID: "admin1aaaaaaaaa"})
	require.NoError(t, err)
	require.Equal(t, 1, applier.updateCalls)
	require.Equal(t, mosqueID1, applier.lastTarget)
}

func TestApproveReviewedSubmissionConflicts(t *testing.T) {
	reviewed := pendingSubmission(models.SubmissionTypeNewMosque)
	reviewed.Status = models.SubmissionStatusApproved
	subs := &stubSubmissionStore{byID: map[string]*models.Submission{submissionID: reviewed}}
	applier := &stubApplier{}
	svc := newModerationFixture(subs, applier, &stubAuditRecorder{})

	_, _, err := svc.Approve(context.Background(), submissionID, Actor{ID: "admin1aaaaaaaaa"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
	require.Zero(t, applier.createCalls)
	require.False(t, subs.updateCalled)
}

func TestApproveApplyFailureLeavesPending(t *testing.T) {
	subs := &stubSubmissionStore{byID: map[string]*models.Submission{
		submissionID: pendingSubmission(models.SubmissionTypeNewMosque),
	}}
	applier := &stubApplier{err: appErrors.Upstream(errors.New("store down"), "")}
	audit := &stubAuditRecorder{}
	svc := newModerationFixture(subs, applier, audit)

	_, _, err := svc.Approve(context.Background(), submissionID, Actor{ID: "admin1aaaaaaaaa"})
	require.Error(t, err)
	// No status write and no audit entry happened.
	require.False(t, subs.updateCalled)
	require.Empty(t, audit.entries)
}

func TestApproveAuditFailureIsWarningOnly(t *testing.T) {
	subs := &stubSubmissionStore{byID: map[string]*models.Submission{
		submissionID: pendingSubmission(models.SubmissionTypeNewMosque),
	}}
	audit := &stubAuditRecorder{err: appErrors.Degraded(errors.New("trail down"), "")}
	svc := newModerationFixture(subs, &stubApplier{}, audit)

	updated, warning, err := svc.Approve(context.Background(), submissionID, Actor{ID: "admin1aaaaaaaaa"})
	require.NoError(t, err)
	require.NotNil(t, warning)
	require.Equal(t, models.SubmissionStatusApproved, updated.Status)
}

func TestRejectRequiresReason(t *testing.T) {
	svc := newModerationFixture(&stubSubmissionStore{}, &stubApplier{}, &stubAuditRecorder{})

	_, _, err := svc.Reject(context.Background(), submissionID, Actor{}, "   ")
	require.Error(t, err)
}

func TestRejectRecordsReason(t *testing.T) {
	subs := &stubSubmissionStore{byID: map[string]*models.Submission{
		submissionID: pendingSubmission(models.SubmissionTypeNewMosque),
	}}
	applier := &stubApplier{}
	audit := &stubAuditRecorder{}
	svc := newModerationFixture(subs, applier, audit)

	updated, warning, err := svc.Reject(context.Background(), submissionID, Actor{ID: "admin1aaaaaaaaa"}, " duplicate entry ")
	require.NoError(t, err)
	require.Nil(t, warning)
	require.Equal(t, models.SubmissionStatusRejected, updated.Status)
	require.Equal(t, "duplicate entry", subs.updated["rejection_reason"])
	// Rejection never touches the mosque collection.
	require.Zero(t, applier.createCalls)
	require.Zero(t, applier.updateCalls)

	require.Len(t, audit.entries, 1)
	require.Equal(t, models.AuditActionSubmissionReject, audit.entries[0].Action)
}

func TestRejectReviewedSubmissionConflicts(t *testing.T) {
	reviewed := pendingSubmission(models.SubmissionTypeNewMosque)
	reviewed.Status = models.SubmissionStatusRejected
	subs := &stubSubmissionStore{byID: map[string]*models.Submission{submissionID: reviewed}}
	svc := newModerationFixture(subs, &stubApplier{}, &stubAuditRecorder{})

	_, _, err := svc.Reject(context.Background(), submissionID, Actor{}, "reason")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	svc := newModerationFixture(&stubSubmissionStore{}, &stubApplier{}, &stubAuditRecorder{})

	_, err := svc.List(context.Background(), "bogus")
	require.Error(t, err)
}

func TestGetMapsNotFound(t *testing.T) {
	svc := newModerationFixture(&stubSubmissionStore{byID: map[string]*models.Submission{}}, &stubApplier{}, &stubAuditRecorder{})

	_, err := svc.Get(context.Background(), submissionID)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
