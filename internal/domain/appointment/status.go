package appointment

import (
	"time"

	"github.com/BruksfildServices01/termine-api/internal/models"
)

// ===============================
// Appointment State
// ===============================

type State string

const (
	StateFree    State = "free"
	StateClaimed State = "claimed"
	StateBooked  State = "booked"
)

// ExpiredBefore is the claimed_at bound under which a claim no longer holds
// its appointment.
func ExpiredBefore(now time.Time, claimTimeout time.Duration) time.Time {
	return now.Add(-claimTimeout)
}

// StateOf evaluates expiry lazily: a stale claim is free without anyone
// having released it.
func StateOf(ap *models.Appointment, expiredBefore time.Time) State {
	switch {
	case ap.Booked:
		return StateBooked
	case ap.ClaimToken == nil:
		return StateFree
	case ap.ClaimedAt == nil || ap.ClaimedAt.Before(expiredBefore):
		return StateFree
	default:
		return StateClaimed
	}
}

func IsClaimable(ap *models.Appointment, expiredBefore time.Time) bool {
	return StateOf(ap, expiredBefore) == StateFree
}

// ClaimOrderLess orders claim candidates: rows holding a (stale) token come
// before never-claimed rows, greater tokens first.
func ClaimOrderLess(a, b *models.Appointment) bool {
	switch {
	case a.ClaimToken == nil:
		return false
	case b.ClaimToken == nil:
		return true
	default:
		return *a.ClaimToken > *b.ClaimToken
	}
}
