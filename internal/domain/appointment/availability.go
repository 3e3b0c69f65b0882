package appointment

import "time"

// FreeSlot is one row of the free-slot listing.
type FreeSlot struct {
	StartDateTime    time.Time
	LengthMin        int
	FreeAppointments int64
}
