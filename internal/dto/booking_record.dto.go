package dto

import "time"

type BookingRecord struct {
	StartDateTime time.Time `json:"start_date_time"`
	FirstName     string    `json:"first_name"`
	Surname       string    `json:"surname"`
	Phone         string    `json:"phone"`
	Office        string    `json:"office"`
	Secret        string    `json:"secret"`
	BookedBy      string    `json:"booked_by"`
	BookedAt      time.Time `json:"booked_at"`
}
