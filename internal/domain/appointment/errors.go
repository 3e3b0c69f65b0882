package appointment

import "github.com/BruksfildServices01/termine-api/internal/httperr"

var (
	ErrTimeSlotNotFound    = httperr.ErrNotFound("time_slot_not_found")
	ErrAppointmentNotFound = httperr.ErrNotFound("appointment_not_found")
	ErrBookingNotFound     = httperr.ErrNotFound("booking_not_found")
	ErrUserNotFound        = httperr.ErrNotFound("user_not_found")

	ErrNoFreeAppointment = httperr.ErrExhausted("no_free_appointment")

	ErrNoCoupons        = httperr.ErrInvalid("no_coupons")
	ErrStartInPast      = httperr.ErrInvalid("start_in_past")
	ErrMissingParameter = httperr.ErrInvalid("missing_parameter")
	ErrInvalidRange     = httperr.ErrInvalid("invalid_range")
	ErrTimeSlotExists   = httperr.ErrInvalid("time_slot_exists")
	ErrUserExists       = httperr.ErrInvalid("user_exists")
)
