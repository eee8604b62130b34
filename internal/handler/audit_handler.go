package handler

import (
	"context"
	"io"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lepakmasjid/directory-api/internal/models"
	appErrors "github.com/lepakmasjid/directory-api/pkg/errors"
	"github.com/lepakmasjid/directory-api/pkg/export"
	"github.com/lepakmasjid/directory-api/pkg/response"
	"github.com/lepakmasjid/directory-api/pkg/storage"
)

type auditReader interface {
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error)
}

// AuditHandler exposes the admin audit trail listing and CSV export.
type AuditHandler struct {
	recorder auditReader
	exporter *export.CSVExporter
	files    *storage.LocalStorage
	signer   *storage.SignedURLSigner
}

// NewAuditHandler constructs the handler. The export trio may be nil when
// exports are not configured; the endpoints then answer 404.
func NewAuditHandler(recorder auditReader, exporter *export.CSVExporter, files *storage.LocalStorage, signer *storage.SignedURLSigner) *AuditHandler {
	return &AuditHandler{recorder: recorder, exporter: exporter, files: files, signer: signer}
}

// List godoc
// @Summary List audit trail entries (admin)
// @Tags Audit
// @Produce json
// @Param action query string false "Action filter"
// @Param entity_type query string false "Entity type filter"
// @Param actor_id query string false "Actor filter"
// @Param start query string false "RFC3339 lower bound"
// @Param end query string false "RFC3339 upper bound"
// @Param limit query int false "Max entries"
// @Success 200 {object} response.Envelope
// @Router /audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	filter, err := parseAuditFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	entries, err := h.recorder.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Export godoc
// @Summary Export the audit trail as CSV (admin)
// @Tags Audit
// @Produce json
// @Param action query string false "Action filter"
// @Param entity_type query string false "Entity type filter"
// @Param actor_id query string false "Actor filter"
// @Param start query string false "RFC3339 lower bound"
// @Param end query string false "RFC3339 upper bound"
// @Success 200 {object} response.Envelope
// @Router /audit-logs/export [post]
func (h *AuditHandler) Export(c *gin.Context) {
	if h.exporter == nil || h.files == nil || h.signer == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are not configured"))
		return
	}

	filter, err := parseAuditFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	entries, err := h.recorder.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	headers := []string{"timestamp", "action", "entity_type", "entity_id", "actor_id", "ip_address"}
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			entry.Timestamp.UTC().Format(time.RFC3339),
			entry.Action,
			entry.EntityType,
			entry.EntityID,
			entry.ActorID,
			entry.IPAddress,
		})
	}

	data, err := h.exporter.Render(headers, rows)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export"))
		return
	}

	relPath := path.Join("audit", export.Filename("audit"))
	if _, err := h.files.Save(relPath, data); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export"))
		return
	}

	exportID := uuid.NewString()
	token, expiresAt, err := h.signer.Generate(exportID, relPath)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export link"))
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"export_id":  exportID,
		"token":      token,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
		"rows":       len(rows),
	}, nil)
}

// Download godoc
// @Summary Download a previously generated audit export
// @Tags Audit
// @Produce text/csv
// @Param token query string true "Signed export token"
// @Success 200
// @Router /audit-logs/export/download [get]
func (h *AuditHandler) Download(c *gin.Context) {
	if h.files == nil || h.signer == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are not configured"))
		return
	}

	_, relPath, _, err := h.signer.Parse(c.Query("token"), false)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "export link is invalid or expired"))
		return
	}

	file, err := h.files.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export no longer available"))
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+path.Base(relPath))
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}

func parseAuditFilter(c *gin.Context) (models.AuditFilter, error) {
	filter := models.AuditFilter{
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		ActorID:    c.Query("actor_id"),
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filter.Limit = limit
		}
	}

	var err error
	if filter.Start, err = parseBound(c.Query("start")); err != nil {
		return filter, appErrors.Clone(appErrors.ErrValidation, "start must be an RFC3339 timestamp")
	}
	if filter.End, err = parseBound(c.Query("end")); err != nil {
		return filter, appErrors.Clone(appErrors.ErrValidation, "end must be an RFC3339 timestamp")
	}
	return filter, nil
}

func parseBound(raw string) (*models.Timestamp, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &models.Timestamp{Time: t}, nil
}
