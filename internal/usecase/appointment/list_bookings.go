package appointment

import (
	"context"
	"errors"
	"time"

	domain "github.com/BruksfildServices01/termine-api/internal/domain/appointment"
	"github.com/BruksfildServices01/termine-api/internal/dto"
	"github.com/BruksfildServices01/termine-api/internal/models"
	"github.com/BruksfildServices01/termine-api/internal/timezone"
)

type ListBookingsInput struct {
	// calendar days, inclusive
	StartDate time.Time
	EndDate   time.Time
	User      *models.User
}

type ListBookings struct {
	store domain.Store
	loc   *time.Location
}

func NewListBookings(
	store domain.Store,
	loc *time.Location,
) *ListBookings {
	return &ListBookings{
		store: store,
		loc:   loc,
	}
}

// Execute returns the bookings of the date range, latest slot first. Admins
// see every booking, everyone else only their own.
func (uc *ListBookings) Execute(
	ctx context.Context,
	in ListBookingsInput,
) ([]dto.BookingRecord, error) {

	ctx, span := tracer.Start(ctx, "appointment.list_bookings")
	defer span.End()

	if in.User == nil {
		return nil, domain.ErrUserNotFound
	}

	from := timezone.StartOfDay(in.StartDate, uc.loc)
	to := timezone.StartOfDay(in.EndDate, uc.loc).AddDate(0, 0, 1)

	slots, err := uc.store.ListTimeSlots(ctx, from, to)
	if err != nil {
		return nil, err
	}

	bookedBy := ""
	if !in.User.IsAdmin() {
		bookedBy = in.User.UserName
	}

	out := make([]dto.BookingRecord, 0)
	for _, slot := range slots {
		aps, err := uc.store.ListBookedAppointments(ctx, slot.ID)
		if err != nil {
			return nil, err
		}

		for _, ap := range aps {
			b, err := uc.store.FindBooking(ctx, ap.ID, bookedBy)
			if errors.Is(err, domain.ErrBookingNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}

			out = append(out, dto.BookingRecord{
				StartDateTime: slot.StartDateTime,
				FirstName:     b.FirstName,
				Surname:       b.Surname,
				Phone:         b.Phone,
				Office:        b.Office,
				Secret:        b.Secret,
				BookedBy:      b.BookedBy,
				BookedAt:      b.BookedAt,
			})
		}
	}

	return out, nil
}
