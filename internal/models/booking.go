package models

import "time"

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AppointmentID uint        `gorm:"uniqueIndex;not null" json:"appointment_id"`
	Appointment   Appointment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	FirstName string `gorm:"size:100;not null" json:"first_name"`
	Surname   string `gorm:"size:100;not null" json:"surname"`
	Phone     string `gorm:"size:50;not null" json:"phone"`
	Office    string `gorm:"size:100;not null" json:"office"`

	Secret   string    `gorm:"size:16;not null" json:"secret"`
	BookedBy string    `gorm:"size:100;index;not null" json:"booked_by"`
	BookedAt time.Time `gorm:"not null" json:"booked_at"`
}
