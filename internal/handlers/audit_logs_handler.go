package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/termine-api/internal/domain/appointment"
	"github.com/BruksfildServices01/termine-api/internal/httperr"
	"github.com/BruksfildServices01/termine-api/internal/httpresp"
	"github.com/BruksfildServices01/termine-api/internal/models"
	"github.com/BruksfildServices01/termine-api/internal/timezone"
)

type AuditLogReader interface {
	ListAuditLogs(ctx context.Context, filter domain.AuditLogFilter) ([]models.AuditLog, int64, error)
}

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	store AuditLogReader
	loc   *time.Location
}

func NewAuditLogsHandler(store AuditLogReader, loc *time.Location) *AuditLogsHandler {
	return &AuditLogsHandler{store: store, loc: loc}
}

// List is admin only; the route group enforces it.
func (h *AuditLogsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	filter := domain.AuditLogFilter{
		UserName: c.Query("user_name"),
		Action:   c.Query("action"),
		Entity:   c.Query("entity"),
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}

	// --------------------------------------------------
	// Optional day range
	// --------------------------------------------------
	if from := c.Query("from"); from != "" {
		t, err := timezone.ParseDate(from, h.loc)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Ungültiges Datum.")
			return
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := timezone.ParseDate(to, h.loc)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Ungültiges Datum.")
			return
		}
		filter.To = t.AddDate(0, 0, 1)
	}

	logs, total, err := h.store.ListAuditLogs(c.Request.Context(), filter)
	if err != nil {
		httperr.Internal(c, "audit_list_failed", "Protokoll konnte nicht geladen werden.")
		return
	}

	httpresp.Page(c, logs, total, page, limit)
}
