package appointment

import (
	"time"

	"github.com/BruksfildServices01/termine-api/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Claim(ap *models.Appointment, token string, now time.Time) error {
	if ap.Booked {
		return ErrAppointmentNotFound
	}
	claimedAt := now
	ap.ClaimToken = &token
	ap.ClaimedAt = &claimedAt
	return nil
}

// Book finalizes the appointment. Claim expiry is deliberately not checked:
// a stale claim nobody has taken over is still honoured.
func Book(ap *models.Appointment) error {
	if ap.Booked {
		return ErrAppointmentNotFound
	}
	ap.Booked = true
	ap.ClaimToken = nil
	ap.ClaimedAt = nil
	return nil
}

func Release(ap *models.Appointment) {
	if ap.Booked {
		return
	}
	ap.ClaimToken = nil
	ap.ClaimedAt = nil
}
