package repository

import (
	"context"
	"fmt"

	"github.com/lepakmasjid/directory-api/internal/models"
	"github.com/lepakmasjid/directory-api/pkg/store"
)

const submissionsCollection = "submissions"

// SubmissionRepository persists moderation submissions.
type SubmissionRepository struct {
	col *store.Collection
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(client *store.Client) *SubmissionRepository {
	return &SubmissionRepository{col: client.Collection(submissionsCollection)}
}

// Create inserts a new submission.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) (*models.Submission, error) {
	record, err := r.col.Create(ctx, submission)
	if err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	var created models.Submission
	if err := record.Decode(&created); err != nil {
		return nil, fmt.Errorf("decode submission: %w", err)
	}
	return &created, nil
}

// GetByID fetches one submission.
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	record, err := r.col.GetOne(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	var submission models.Submission
	if err := record.Decode(&submission); err != nil {
		return nil, fmt.Errorf("decode submission %s: %w", id, err)
	}
	return &submission, nil
}

// List returns the review queue, newest first, optionally narrowed to one
// status. The status literal comes from the fixed enumeration, never from
// raw user text.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error) {
	opt := store.ListOptions{Sort: "-submitted_at"}
	switch filter.Status {
	case models.SubmissionStatusPending, models.SubmissionStatusApproved, models.SubmissionStatusRejected:
		opt.Filter = fmt.Sprintf(`status = "%s"`, filter.Status)
	case "":
	default:
		return nil, fmt.Errorf("unknown submission status %q", filter.Status)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	result, err := r.col.GetList(ctx, 1, limit, opt)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	submissions := make([]models.Submission, 0, len(result.Items))
	for _, item := range result.Items {
		var submission models.Submission
		if err := item.Decode(&submission); err != nil {
			return nil, fmt.Errorf("decode submission %s: %w", item.ID(), err)
		}
		submissions = append(submissions, submission)
	}
	return submissions, nil
}

// UpdateStatus writes the terminal review outcome onto a submission.
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id string, fields map[string]interface{}) (*models.Submission, error) {
	record, err := r.col.Update(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("update submission: %w", err)
	}
	var submission models.Submission
	if err := record.Decode(&submission); err != nil {
		return nil, fmt.Errorf("decode submission %s: %w", id, err)
	}
	return &submission, nil
}
