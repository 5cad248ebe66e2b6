package database

import (
	"time"

	"gorm.io/gorm"
)

// Detection represents a confirmed code detection on a channel. Repeated
// confirmations of the same code within a short window update the existing
// row instead of creating a new one.
type Detection struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Channel    string    `gorm:"index;size:50;not null" json:"channel"`
	Code       int       `gorm:"not null" json:"code"`
	Designator string    `gorm:"index;size:10;not null" json:"designator"`
	Inverted   bool      `gorm:"not null" json:"inverted"`
	FirstSeen  time.Time `gorm:"index;not null" json:"first_seen"`
	LastSeen   time.Time `gorm:"not null" json:"last_seen"`
	Events     int       `gorm:"default:1" json:"events"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for Detection
func (Detection) TableName() string {
	return "detections"
}

// BeforeCreate hook to ensure timestamps are set
func (d *Detection) BeforeCreate(tx *gorm.DB) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	if d.FirstSeen.IsZero() {
		d.FirstSeen = time.Now()
	}
	if d.LastSeen.IsZero() {
		d.LastSeen = d.FirstSeen
	}
	if d.Events == 0 {
		d.Events = 1
	}
	return nil
}
