// Package model defines the database models used throughout the application.
// These models work with MySQL, PostgreSQL and SQLite via GORM.
package model

import "time"

// GPSStatus reports whether a device had a GPS fix when it sent a location.
type GPSStatus string

const (
	GPSStatusOn  GPSStatus = "on"
	GPSStatusOff GPSStatus = "off"
)

// Valid returns true for the two statuses devices are allowed to report.
func (s GPSStatus) Valid() bool {
	return s == GPSStatusOn || s == GPSStatusOff
}

// CurrentLocation holds the latest known position for one employee.
// There is at most one row per employee; every accepted report replaces
// all fields of the row.
type CurrentLocation struct {
	EmployeeID int64     `gorm:"column:employee_id;primaryKey;autoIncrement:false" json:"employee_id"`
	Latitude   float64   `gorm:"column:latitude;type:decimal(10,6);not null" json:"latitude"`
	Longitude  float64   `gorm:"column:longitude;type:decimal(10,6);not null" json:"longitude"`
	GPSStatus  GPSStatus `gorm:"column:gps_status;type:varchar(8);not null" json:"gps_status"`
	LastUpdate time.Time `gorm:"column:last_update;not null" json:"last_update"`
}

func (CurrentLocation) TableName() string { return "current_locations" }

// LocationHistory is one immutable entry in the append-only report log.
// Duplicate reports for the same employee and timestamp are retained.
type LocationHistory struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	EmployeeID int64     `gorm:"column:employee_id;not null;index:idx_employee_time,priority:1" json:"employee_id"`
	Latitude   float64   `gorm:"column:latitude;type:decimal(10,6);not null" json:"latitude"`
	Longitude  float64   `gorm:"column:longitude;type:decimal(10,6);not null" json:"longitude"`
	GPSStatus  GPSStatus `gorm:"column:gps_status;type:varchar(8);not null" json:"gps_status"`
	RecordedAt time.Time `gorm:"column:recorded_at;not null;index:idx_employee_time,priority:2" json:"recorded_at"`
}

func (LocationHistory) TableName() string { return "location_history" }

// AllModels returns the models registered with AutoMigrate.
func AllModels() []any {
	return []any{
		&CurrentLocation{},
		&LocationHistory{},
	}
}
