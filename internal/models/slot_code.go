package models

// SlotCode keeps access codes unique per calendar day, independent of bookings.
type SlotCode struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Date   string `gorm:"size:10;not null;uniqueIndex:idx_slot_codes_date_secret" json:"date"`
	Secret string `gorm:"size:16;not null;uniqueIndex:idx_slot_codes_date_secret" json:"secret"`
}
