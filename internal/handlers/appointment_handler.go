package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/termine-api/internal/domain/appointment"
	"github.com/BruksfildServices01/termine-api/internal/dto"
	"github.com/BruksfildServices01/termine-api/internal/httperr"
	"github.com/BruksfildServices01/termine-api/internal/httpresp"
	"github.com/BruksfildServices01/termine-api/internal/middleware"
	"github.com/BruksfildServices01/termine-api/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/termine-api/internal/usecase/appointment"
	"github.com/BruksfildServices01/termine-api/pkg/logging"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	listFree *ucAppointment.ListFreeSlots
	claim    *ucAppointment.ClaimAppointment
	book     *ucAppointment.BookAppointment
	release  *ucAppointment.ReleaseClaim

	loc   *time.Location
	clock Clock
	log   *logging.Logger
}

func NewAppointmentHandler(
	listFree *ucAppointment.ListFreeSlots,
	claim *ucAppointment.ClaimAppointment,
	book *ucAppointment.BookAppointment,
	release *ucAppointment.ReleaseClaim,
	loc *time.Location,
	clock Clock,
	log *logging.Logger,
) *AppointmentHandler {
	if log == nil {
		log = logging.Default()
	}
	return &AppointmentHandler{
		listFree: listFree,
		claim:    claim,
		book:     book,
		release:  release,
		loc:      loc,
		clock:    clock,
		log:      log,
	}
}

// ======================================================
// NEXT FREE SLOTS
// ======================================================

func (h *AppointmentHandler) NextFreeSlots(c *gin.Context) {
	user := middleware.CurrentUser(c)

	slots, err := h.listFree.Execute(c.Request.Context(), h.clock.now())
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	resp := dto.NextFreeSlotsResponse{
		Slots:   make([]dto.FreeSlot, 0, len(slots)),
		Coupons: user.Coupons,
	}
	for _, s := range slots {
		resp.Slots = append(resp.Slots, dto.FreeSlot{
			StartDateTime:    timezone.FormatDateTime(s.StartDateTime, h.loc),
			FreeAppointments: s.FreeAppointments,
			TimeSlotLength:   s.LengthMin,
		})
	}

	httpresp.OK(c, resp)
}

// ======================================================
// CLAIM
// ======================================================

func (h *AppointmentHandler) Claim(c *gin.Context) {
	user := middleware.CurrentUser(c)

	raw := c.Query("start_date_time")
	if raw == "" {
		httperr.FromError(c, domain.ErrMissingParameter)
		return
	}
	start, err := timezone.ParseDateTime(raw, h.loc)
	if err != nil {
		httperr.BadRequest(c, "invalid_date_time", "Ungültiger Zeitpunkt.")
		return
	}

	token, err := h.claim.Execute(c.Request.Context(), ucAppointment.ClaimAppointmentInput{
		StartDateTime: start,
		UserName:      user.UserName,
		Coupons:       user.Coupons,
		Now:           h.clock.now(),
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.String(http.StatusOK, token)
}

// ======================================================
// BOOK
// ======================================================

func (h *AppointmentHandler) Book(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req dto.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Ungültige Anfrage.")
		return
	}
	if req.StartDateTime == "" {
		httperr.FromError(c, domain.ErrMissingParameter)
		return
	}
	start, err := timezone.ParseDateTime(req.StartDateTime, h.loc)
	if err != nil {
		httperr.BadRequest(c, "invalid_date_time", "Ungültiger Zeitpunkt.")
		return
	}

	res, err := h.book.Execute(c.Request.Context(), ucAppointment.BookAppointmentInput{
		ClaimToken:    req.ClaimToken,
		StartDateTime: start,
		Contact: ucAppointment.ContactInfo{
			FirstName: req.FirstName,
			Surname:   req.Name,
			Phone:     req.Phone,
			Office:    req.Office,
		},
		UserName: user.UserName,
		Coupons:  user.Coupons,
		Now:      h.clock.now(),
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, dto.BookAppointmentResponse{
		Secret:        res.Secret,
		TimeSlot:      timezone.FormatDateTime(res.StartDateTime, h.loc),
		SlotLengthMin: res.LengthMin,
	})
}

// ======================================================
// RELEASE
// ======================================================

// Release never fails for the caller.
func (h *AppointmentHandler) Release(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := h.release.Execute(c.Request.Context(), c.Query("claim_token"), user.UserName); err != nil {
		h.log.Warn("release claim failed", "user", user.UserName, "error", err)
	}

	c.Status(http.StatusOK)
}
