// Package store persists the monitor's durable state through GORM.
//
// Two independent single-row records — the check-in state and the
// ingestion cursor — plus an append-only run history. Reads favor
// availability: a missing or unreadable record falls back to its default
// (a missed check-in is recoverable by the owner re-sending the signal; a
// crash-looping monitor is not). Writes are never swallowed.
package store

import (
	"errors"
	"fmt"
	"log"

	"github.com/AminRahimi/deadman-switch/internal/config"
	"github.com/AminRahimi/deadman-switch/internal/models"
	"github.com/AminRahimi/deadman-switch/internal/monitor"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// stateRowID is the fixed primary key of both single-row records.
const stateRowID = 1

// AllModels returns the GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.CheckinState{},
		&models.Cursor{},
		&models.RunRecord{},
	}
}

// Connect opens a GORM connection for the configured backend.
func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	switch cfg.Driver {
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(cfg.Path), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("store: open sqlite %s: %w", cfg.Path, err)
		}
		return db, nil
	case "mysql":
		dsn := fmt.Sprintf("root@tcp(%s:%d)/%s?parseTime=true", cfg.Host, cfg.Port, cfg.Database)
		db, err := gorm.Open(mysql.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("store: connect to %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Database, err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", cfg.Driver)
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("store: auto-migrate: %w", err)
	}
	return nil
}

// Store wraps a GORM connection with the monitor's load/save operations.
type Store struct {
	db *gorm.DB
}

// New wraps an existing GORM connection.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("store: db is required")
	}
	return &Store{db: db}, nil
}

// Open connects to the configured backend, migrates, and returns a Store.
func Open(cfg config.DBConfig) (*Store, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying connection for the dashboard queries.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// LoadCheckinState returns the persisted check-in state, or the empty
// default when the record is absent or unreadable.
func (s *Store) LoadCheckinState() monitor.State {
	var row models.CheckinState
	err := s.db.First(&row, stateRowID).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("store: read checkin state: %v (using defaults)", err)
		}
		return monitor.State{}
	}
	return monitor.State{LastCheckin: row.LastCheckin, AlertSent: row.AlertSent}
}

// SaveCheckinState overwrites the check-in record atomically.
func (s *Store) SaveCheckinState(state monitor.State) error {
	row := models.CheckinState{
		ID:          stateRowID,
		LastCheckin: state.LastCheckin,
		AlertSent:   state.AlertSent,
	}
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_checkin", "alert_sent", "updated_at"}),
	}).Create(&row)
	if result.Error != nil {
		return fmt.Errorf("store: save checkin state: %w", result.Error)
	}
	return nil
}

// LoadCursor returns the persisted next offset, or 0 when the record is
// absent or unreadable.
func (s *Store) LoadCursor() int64 {
	var row models.Cursor
	err := s.db.First(&row, stateRowID).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("store: read cursor: %v (using 0)", err)
		}
		return 0
	}
	return row.NextOffset
}

// SaveCursor persists the next offset. The cursor is forward-only: an
// offset below the stored value is ignored.
func (s *Store) SaveCursor(nextOffset int64) error {
	if current := s.LoadCursor(); nextOffset < current {
		return nil
	}
	row := models.Cursor{ID: stateRowID, NextOffset: nextOffset}
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"next_offset", "updated_at"}),
	}).Create(&row)
	if result.Error != nil {
		return fmt.Errorf("store: save cursor: %w", result.Error)
	}
	return nil
}

// RecordRun appends a run history row.
func (s *Store) RecordRun(rec models.RunRecord) error {
	if err := s.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("store: record run: %w", err)
	}
	return nil
}

// RecentRuns returns up to n run records, newest first.
func (s *Store) RecentRuns(n int) ([]models.RunRecord, error) {
	if n <= 0 {
		n = 10
	}
	var runs []models.RunRecord
	if err := s.db.Order("id DESC").Limit(n).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("store: recent runs: %w", err)
	}
	return runs, nil
}
