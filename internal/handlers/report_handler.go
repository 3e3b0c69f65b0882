package handlers

import (
	"bytes"
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/termine-api/internal/audit"
	"github.com/BruksfildServices01/termine-api/internal/archive"
	"github.com/BruksfildServices01/termine-api/internal/dto"
	"github.com/BruksfildServices01/termine-api/internal/httperr"
	"github.com/BruksfildServices01/termine-api/internal/httpresp"
	"github.com/BruksfildServices01/termine-api/internal/middleware"
	"github.com/BruksfildServices01/termine-api/internal/report"
	"github.com/BruksfildServices01/termine-api/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/termine-api/internal/usecase/appointment"
	"github.com/BruksfildServices01/termine-api/pkg/logging"
)

// ReportArchive stores a copy of an export. A nil *archive.ReportArchive
// satisfies it and stores nothing.
type ReportArchive interface {
	Store(ctx context.Context, key string, body []byte, contentType string) error
}

type ReportHandler struct {
	list    *ucAppointment.ListBookings
	archive ReportArchive
	audit   *audit.Dispatcher

	loc   *time.Location
	clock Clock
	log   *logging.Logger
}

func NewReportHandler(
	list *ucAppointment.ListBookings,
	archive ReportArchive,
	auditDispatcher *audit.Dispatcher,
	loc *time.Location,
	clock Clock,
	log *logging.Logger,
) *ReportHandler {
	if log == nil {
		log = logging.Default()
	}
	return &ReportHandler{
		list:    list,
		archive: archive,
		audit:   auditDispatcher,
		loc:     loc,
		clock:   clock,
		log:     log,
	}
}

// ======================================================
// JSON
// ======================================================

func (h *ReportHandler) Booked(c *gin.Context) {
	start, end, ok := dateRange(c, h.loc)
	if !ok {
		return
	}

	records, err := h.records(c, start, end)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	out := make([]dto.BookedEntry, 0, len(records))
	for _, r := range records {
		out = append(out, dto.BookedEntry{
			StartDateTime: timezone.FormatDateTime(r.StartDateTime, h.loc),
			FirstName:     r.FirstName,
			Surname:       r.Surname,
			Phone:         r.Phone,
			Office:        r.Office,
			Secret:        r.Secret,
			BookedBy:      r.BookedBy,
			BookedAt:      timezone.FormatDateTime(r.BookedAt, h.loc),
		})
	}
	httpresp.OK(c, out)
}

// ======================================================
// CSV (one day, tomorrow by default)
// ======================================================

func (h *ReportHandler) ListForDayCSV(c *gin.Context) {
	day := timezone.StartOfDay(h.clock.now(), h.loc).AddDate(0, 0, 1)
	if c.Query("date_of_day") != "" {
		var ok bool
		if day, ok = dateParam(c, "date_of_day", h.loc); !ok {
			return
		}
	}

	records, err := h.records(c, day, day)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, records, h.loc); err != nil {
		httperr.Internal(c, "report_failed", "Export fehlgeschlagen.")
		return
	}

	httpresp.Attachment(c, "termine_"+timezone.FormatDate(day, h.loc)+".csv", report.ContentTypeCSV, buf.Bytes())
}

// ======================================================
// XLSX (date range, archived when configured)
// ======================================================

func (h *ReportHandler) BookingListXLSX(c *gin.Context) {
	user := middleware.CurrentUser(c)

	start, end, ok := dateRange(c, h.loc)
	if !ok {
		return
	}

	records, err := h.records(c, start, end)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, records, h.loc); err != nil {
		h.log.Error("xlsx export failed", "error", err)
		httperr.Internal(c, "report_failed", "Export fehlgeschlagen.")
		return
	}
	body := buf.Bytes()

	startDate := timezone.FormatDate(start, h.loc)
	endDate := timezone.FormatDate(end, h.loc)
	key := archive.ReportKey(user.UserName, startDate, endDate, h.clock.now(), "xlsx")

	// the download does not depend on the archive copy
	if h.archive != nil {
		if err := h.archive.Store(c.Request.Context(), key, body, report.ContentTypeXLSX); err != nil {
			h.log.Warn("report archive failed", "key", key, "error", err)
		}
	}

	h.audit.Dispatch(audit.Event{
		UserName: user.UserName,
		Action:   audit.ActionReportExported,
		Entity:   "report",
		Metadata: map[string]any{
			"start_date": startDate,
			"end_date":   endDate,
			"rows":       len(records),
			"key":        key,
		},
	})

	httpresp.Attachment(c, "buchungen_"+startDate+"_"+endDate+".xlsx", report.ContentTypeXLSX, body)
}

func (h *ReportHandler) records(c *gin.Context, start, end time.Time) ([]dto.BookingRecord, error) {
	return h.list.Execute(c.Request.Context(), ucAppointment.ListBookingsInput{
		StartDate: start,
		EndDate:   end,
		User:      middleware.CurrentUser(c),
	})
}
