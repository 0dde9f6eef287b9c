// Package database opens the GORM connection and manages schema setup.
package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite" // Pure Go SQLite driver (uses modernc.org/sqlite)
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fieldtrack/fieldtrack/internal/config"
	"github.com/fieldtrack/fieldtrack/internal/model"
)

// DB wraps the GORM DB connection with additional context
type DB struct {
	*gorm.DB
	Driver string
}

// New creates a new database connection based on configuration
func New(cfg *config.Config) (*DB, error) {
	var db *gorm.DB
	var err error

	// Only log slow queries (>1 second); ingestion is write-heavy and
	// per-statement logging would drown everything else out.
	slowLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	gormConfig := &gorm.Config{
		Logger: slowLogger,
	}

	driver := cfg.DatabaseDriver
	dsn := cfg.CleanDSN()

	switch driver {
	case "mysql":
		db, err = gorm.Open(mysql.Open(dsn), gormConfig)
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	case "sqlite":
		// Ensure parent directory exists for file-based databases
		if dsn != ":memory:" && !strings.HasPrefix(dsn, ":memory:") {
			dir := filepath.Dir(dsn)
			if mkErr := os.MkdirAll(dir, 0755); mkErr != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, mkErr)
			}
		}

		db, err = gorm.Open(sqlite.Open(dsn), gormConfig)
		if err == nil {
			// WAL mode allows concurrent readers while a writer is active,
			// preventing connection starvation with multiple goroutines.
			db.Exec("PRAGMA journal_mode=WAL")
			// busy_timeout makes SQLite wait (up to 5s) when the DB is locked
			// instead of immediately returning SQLITE_BUSY.
			db.Exec("PRAGMA busy_timeout = 5000")
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if driver == "sqlite" {
		// With WAL mode, SQLite supports concurrent readers alongside a
		// single writer. A handful of connections is plenty.
		sqlDB.SetMaxOpenConns(4)
		sqlDB.SetMaxIdleConns(4)
	} else {
		sqlDB.SetMaxOpenConns(cfg.DBConnLimit)
		sqlDB.SetMaxIdleConns(cfg.DBConnLimit)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return &DB{DB: db, Driver: driver}, nil
}

// Migrate creates the schema. Safe to run on every startup: AutoMigrate only
// adds what is missing, and the view is recreated in place.
func (db *DB) Migrate() error {
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		return err
	}

	return db.createLatestView()
}

// createLatestView (re)creates the latest_locations read view, a pass-through
// over current_locations used by the list endpoint.
func (db *DB) createLatestView() error {
	const selectStmt = "SELECT employee_id, latitude, longitude, gps_status, last_update FROM current_locations"

	if db.IsSQLite() {
		// SQLite has no CREATE OR REPLACE VIEW.
		if err := db.Exec("DROP VIEW IF EXISTS latest_locations").Error; err != nil {
			return err
		}
		return db.Exec("CREATE VIEW latest_locations AS " + selectStmt).Error
	}

	return db.Exec("CREATE OR REPLACE VIEW latest_locations AS " + selectStmt).Error
}

// Ping verifies the database connection is alive.
func (db *DB) Ping() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// IsSQLite returns true if using SQLite
func (db *DB) IsSQLite() bool {
	return db.Driver == "sqlite"
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
