package dto

// Timestamps are wall-clock times of the service timezone,
// "2006-01-02T15:04:05" without an offset.

type FreeSlot struct {
	StartDateTime    string `json:"startDateTime"`
	FreeAppointments int64  `json:"freeAppointments"`
	TimeSlotLength   int    `json:"timeSlotLength"`
}

type NextFreeSlotsResponse struct {
	Slots   []FreeSlot `json:"slots"`
	Coupons int        `json:"coupons"`
}

type BookAppointmentRequest struct {
	ClaimToken    string `json:"claim_token"`
	StartDateTime string `json:"start_date_time"`
	FirstName     string `json:"first_name"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Office        string `json:"office"`
}

type BookAppointmentResponse struct {
	Secret        string `json:"secret"`
	TimeSlot      string `json:"time_slot"`
	SlotLengthMin int    `json:"slot_length_min"`
}

type BookedEntry struct {
	StartDateTime string `json:"start_date_time"`
	FirstName     string `json:"first_name"`
	Surname       string `json:"surname"`
	Phone         string `json:"phone"`
	Office        string `json:"office"`
	Secret        string `json:"secret"`
	BookedBy      string `json:"booked_by"`
	BookedAt      string `json:"booked_at"`
}
