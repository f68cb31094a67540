// Package models defines the GORM row types persisted by the monitor.
package models

import "time"

// CheckinState is the single-row record of the owner's last confirmed
// check-in. Row 1 is the only row; it is created on first save and
// overwritten thereafter.
type CheckinState struct {
	ID          uint `gorm:"primaryKey"`
	LastCheckin *time.Time
	AlertSent   bool `gorm:"default:false"`
	UpdatedAt   time.Time
}
