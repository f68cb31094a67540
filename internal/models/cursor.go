package models

import "time"

// Cursor is the single-row ingestion cursor: the next inbound sequence id
// to request. NextOffset never decreases across runs.
type Cursor struct {
	ID         uint  `gorm:"primaryKey"`
	NextOffset int64 `gorm:"default:0"`
	UpdatedAt  time.Time
}
