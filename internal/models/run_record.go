package models

import "time"

// RunRecord is the per-pass outcome row, kept for the status command and
// the dashboard. Best-effort: a failed insert never fails the run.
type RunRecord struct {
	ID               uint   `gorm:"primaryKey;autoIncrement"`
	Outcome          string `gorm:"size:32;index"`
	Fetched          int
	CheckinsApplied  int
	Delivered        int
	DeliveryFailures int
	FetchError       string    `gorm:"type:text"`
	RanAt            time.Time `gorm:"index"`
}
