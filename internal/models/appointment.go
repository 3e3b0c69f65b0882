package models

import "time"

// Appointment is one bookable unit of a TimeSlot. The number of rows per slot
// is the slot's capacity.
type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	TimeSlotID uint     `gorm:"index;not null" json:"time_slot_id"`
	TimeSlot   TimeSlot `json:"-"`

	Booked     bool       `gorm:"not null;default:false" json:"booked"`
	ClaimToken *string    `gorm:"size:64;uniqueIndex" json:"-"`
	ClaimedAt  *time.Time `json:"claimed_at"`
}
