package models

import "time"

type TimeSlot struct {
	ID uint `gorm:"primaryKey" json:"id"`

	StartDateTime time.Time `gorm:"uniqueIndex;not null" json:"start_date_time"`
	LengthMin     int       `gorm:"not null;default:15" json:"length_min"`

	Appointments []Appointment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
