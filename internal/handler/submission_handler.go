package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lepakmasjid/directory-api/internal/dto"
	"github.com/lepakmasjid/directory-api/internal/models"
	"github.com/lepakmasjid/directory-api/internal/service"
	appErrors "github.com/lepakmasjid/directory-api/pkg/errors"
	"github.com/lepakmasjid/directory-api/pkg/response"
)

type moderationService interface {
	Create(ctx context.Context, req dto.CreateSubmissionRequest, submittedBy string) (*models.Submission, error)
	Approve(ctx context.Context, id string, actor service.Actor) (*models.Submission, *appErrors.Error, error)
	Reject(ctx context.Context, id string, actor service.Actor, reason string) (*models.Submission, *appErrors.Error, error)
	List(ctx context.Context, status string) ([]models.Submission, error)
	Get(ctx context.Context, id string) (*models.Submission, error)
}

// SubmissionHandler exposes the member submission endpoint and the admin
// moderation queue.
type SubmissionHandler struct {
	moderation moderationService
	metrics    *service.MetricsService
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(moderation moderationService, metrics *service.MetricsService) *SubmissionHandler {
	return &SubmissionHandler{moderation: moderation, metrics: metrics}
}

// Create godoc
// @Summary Submit a new or edited mosque for moderation
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body dto.CreateSubmissionRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Router /submissions [post]
func (h *SubmissionHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid submission payload"))
		return
	}

	submission, err := h.moderation.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, submission)
}

// List godoc
// @Summary List submissions, optionally filtered by status (admin)
// @Tags Submissions
// @Produce json
// @Param status query string false "pending | approved | rejected"
// @Success 200 {object} response.Envelope
// @Router /submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	submissions, err := h.moderation.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submissions, nil)
}

// Get godoc
// @Summary Get one submission (admin)
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) Get(c *gin.Context) {
	submission, err := h.moderation.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

// Approve godoc
// @Summary Approve a pending submission (admin)
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id}/approve [post]
func (h *SubmissionHandler) Approve(c *gin.Context) {
	submission, warning, err := h.moderation.Approve(c.Request.Context(), c.Param("id"), h.actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveModerationDecision("approved")
	}
	if warning != nil {
		response.JSONWithWarning(c, http.StatusOK, submission, warning)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

// Reject godoc
// @Summary Reject a pending submission with a reason (admin)
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body dto.RejectSubmissionRequest true "Rejection reason"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id}/reject [post]
func (h *SubmissionHandler) Reject(c *gin.Context) {
	var req dto.RejectSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required"))
		return
	}

	submission, warning, err := h.moderation.Reject(c.Request.Context(), c.Param("id"), h.actor(c), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveModerationDecision("rejected")
	}
	if warning != nil {
		response.JSONWithWarning(c, http.StatusOK, submission, warning)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

func (h *SubmissionHandler) actor(c *gin.Context) service.Actor {
	actor := service.Actor{
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
	if claims := claimsFromContext(c); claims != nil {
		actor.ID = claims.UserID
	}
	return actor
}
