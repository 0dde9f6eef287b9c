// Package store provides database operations using GORM.
//
// The write path has one invariant that matters: every accepted report
// updates the employee's current location AND appends a history record in a
// single transaction sharing a single timestamp, so the two tables can never
// disagree about whether the latest report was recorded.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fieldtrack/fieldtrack/internal/model"
)

// Common errors
var (
	// ErrInvalidInput marks malformed or out-of-range input. Handlers map it
	// to a 400; anything else from this package is a storage failure.
	ErrInvalidInput = errors.New("invalid input")
)

// MaxHistoryLimit is the hard cap on history rows returned per query,
// regardless of what the caller asks for.
const MaxHistoryLimit = 5000

// Store wraps GORM DB for database operations.
type Store struct {
	db *gorm.DB
}

// New creates a new Store with the given GORM DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying GORM DB for advanced queries.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func validateReport(employeeID int64, lat, lon float64, status model.GPSStatus) error {
	if employeeID < 1 {
		return fmt.Errorf("%w: employee id must be a positive integer", ErrInvalidInput)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidInput)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalidInput)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: gps_status must be %q or %q", ErrInvalidInput, model.GPSStatusOn, model.GPSStatusOff)
	}
	return nil
}

// upsertCurrent inserts or fully replaces the current location row for an
// employee. Runs against whatever handle it is given so ApplyReport can call
// it inside a transaction.
func upsertCurrent(tx *gorm.DB, loc *model.CurrentLocation) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "employee_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"latitude", "longitude", "gps_status", "last_update",
		}),
	}).Create(loc).Error
}

func appendHistory(tx *gorm.DB, rec *model.LocationHistory) error {
	return tx.Create(rec).Error
}

// UpsertCurrent validates and writes the current-location row on its own.
// Most callers want ApplyReport instead.
func (s *Store) UpsertCurrent(ctx context.Context, employeeID int64, lat, lon float64, status model.GPSStatus, ts time.Time) error {
	if err := validateReport(employeeID, lat, lon, status); err != nil {
		return err
	}
	return upsertCurrent(s.db.WithContext(ctx), &model.CurrentLocation{
		EmployeeID: employeeID,
		Latitude:   lat,
		Longitude:  lon,
		GPSStatus:  status,
		LastUpdate: ts,
	})
}

// AppendHistory validates and appends a single history record on its own.
// Most callers want ApplyReport instead.
func (s *Store) AppendHistory(ctx context.Context, employeeID int64, lat, lon float64, status model.GPSStatus, ts time.Time) error {
	if err := validateReport(employeeID, lat, lon, status); err != nil {
		return err
	}
	return appendHistory(s.db.WithContext(ctx), &model.LocationHistory{
		EmployeeID: employeeID,
		Latitude:   lat,
		Longitude:  lon,
		GPSStatus:  status,
		RecordedAt: ts,
	})
}

// ApplyReport records one accepted report: current-location upsert plus
// history insert in one transaction, both stamped with the same clock read.
// On any failure both writes roll back and no partial state is visible.
func (s *Store) ApplyReport(ctx context.Context, employeeID int64, lat, lon float64, status model.GPSStatus) (*model.CurrentLocation, error) {
	if err := validateReport(employeeID, lat, lon, status); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	loc := &model.CurrentLocation{
		EmployeeID: employeeID,
		Latitude:   lat,
		Longitude:  lon,
		GPSStatus:  status,
		LastUpdate: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertCurrent(tx, loc); err != nil {
			return err
		}
		return appendHistory(tx, &model.LocationHistory{
			EmployeeID: employeeID,
			Latitude:   lat,
			Longitude:  lon,
			GPSStatus:  status,
			RecordedAt: now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply report: %w", err)
	}

	return loc, nil
}

// ListCurrent returns the latest known position of every employee, read from
// the latest_locations view. Row order is unspecified.
func (s *Store) ListCurrent(ctx context.Context) ([]model.CurrentLocation, error) {
	var locations []model.CurrentLocation
	if err := s.db.WithContext(ctx).Table("latest_locations").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// ListHistory returns up to limit history records for an employee, newest
// first. The limit is clamped to MaxHistoryLimit. Ties on recorded_at break
// by insert order so rapid duplicate reports still come back newest first.
func (s *Store) ListHistory(ctx context.Context, employeeID int64, limit int) ([]model.LocationHistory, error) {
	if employeeID < 1 {
		return nil, fmt.Errorf("%w: employee id must be a positive integer", ErrInvalidInput)
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	var records []model.LocationHistory
	err := s.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("recorded_at DESC, id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
