package appointment

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/BruksfildServices01/termine-api/internal/audit"
	domain "github.com/BruksfildServices01/termine-api/internal/domain/appointment"
	"github.com/BruksfildServices01/termine-api/internal/models"
	"github.com/BruksfildServices01/termine-api/internal/secret"
	"github.com/BruksfildServices01/termine-api/internal/timezone"
)

type ContactInfo struct {
	FirstName string
	Surname   string
	Phone     string
	Office    string
}

func (c ContactInfo) complete() bool {
	for _, v := range []string{c.FirstName, c.Surname, c.Phone, c.Office} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

type BookAppointmentInput struct {
	ClaimToken    string
	StartDateTime time.Time
	Contact       ContactInfo
	UserName      string
	Coupons       int
	Now           time.Time
}

type BookingResult struct {
	Secret        string
	StartDateTime time.Time
	LengthMin     int
}

type BookAppointment struct {
	store domain.Store
	codes secret.Source
	loc   *time.Location
	obs   Observer
}

// NewBookAppointment builds the booking use case. loc decides which
// calendar day an access code is unique for.
func NewBookAppointment(
	store domain.Store,
	codes secret.Source,
	loc *time.Location,
	obs Observer,
) *BookAppointment {
	return &BookAppointment{
		store: store,
		codes: codes,
		loc:   loc,
		obs:   obs,
	}
}

func (uc *BookAppointment) Execute(
	ctx context.Context,
	in BookAppointmentInput,
) (*BookingResult, error) {

	ctx, span := tracer.Start(ctx, "appointment.book")
	defer span.End()
	span.SetAttributes(attribute.String("termine.start_date_time", in.StartDateTime.String()))
	defer uc.obs.since("book", time.Now())

	res, bookingID, err := uc.book(ctx, in)
	uc.obs.Metrics.ObserveBooking(err)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.obs.logger().Info("booking created",
		"user", in.UserName,
		"start_date_time", res.StartDateTime,
		"booking_id", bookingID,
	)
	uc.obs.Audit.Dispatch(audit.Event{
		UserName: in.UserName,
		Action:   audit.ActionBookingCreated,
		Entity:   "booking",
		EntityID: &bookingID,
	})
	return res, nil
}

func (uc *BookAppointment) book(
	ctx context.Context,
	in BookAppointmentInput,
) (*BookingResult, uint, error) {

	if in.Coupons <= 0 {
		return nil, 0, domain.ErrNoCoupons
	}
	if strings.TrimSpace(in.ClaimToken) == "" || !in.Contact.complete() {
		return nil, 0, domain.ErrMissingParameter
	}
	if in.StartDateTime.Before(in.Now) {
		return nil, 0, domain.ErrStartInPast
	}

	var (
		res       BookingResult
		bookingID uint
	)
	err := uc.store.Atomic(ctx, func(tx domain.Tx) error {
		slot, err := tx.FindTimeSlot(ctx, in.StartDateTime)
		if err != nil {
			return err
		}

		// the claim's age is not checked here
		ap, err := tx.LockClaimed(ctx, slot.ID, in.ClaimToken)
		if err != nil {
			return err
		}
		if err := domain.Book(ap); err != nil {
			return err
		}
		if err := tx.SaveAppointment(ctx, ap); err != nil {
			return err
		}

		day := timezone.FormatDate(slot.StartDateTime, uc.loc)
		code, err := secret.Unique(uc.codes, func(candidate string) error {
			err := tx.Atomic(ctx, func(tx domain.Tx) error {
				return tx.InsertSlotCode(ctx, &models.SlotCode{Date: day, Secret: candidate})
			})
			if errors.Is(err, secret.ErrCollision) {
				uc.obs.Metrics.ObserveCodeCollision()
			}
			return err
		})
		if err != nil {
			return err
		}

		booking := &models.Booking{
			AppointmentID: ap.ID,
			FirstName:     in.Contact.FirstName,
			Surname:       in.Contact.Surname,
			Phone:         in.Contact.Phone,
			Office:        in.Contact.Office,
			Secret:        code,
			BookedBy:      in.UserName,
			BookedAt:      in.Now,
		}
		if err := tx.CreateBooking(ctx, booking); err != nil {
			return err
		}

		if err := tx.DebitCoupon(ctx, in.UserName); err != nil {
			return err
		}

		res = BookingResult{
			Secret:        code,
			StartDateTime: slot.StartDateTime,
			LengthMin:     slot.LengthMin,
		}
		bookingID = booking.ID
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return &res, bookingID, nil
}
