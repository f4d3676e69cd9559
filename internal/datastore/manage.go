package datastore

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/featherquest/featherquest-go/internal/logging"
)

// createGormLogger returns a gorm logger that stays quiet unless debug is on.
func createGormLogger(debug bool) gormlogger.Interface {
	level := gormlogger.Silent
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.Default.LogMode(level)
}

// performAutoMigration runs schema migration for all persisted models.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	start := time.Now()

	if err := db.AutoMigrate(&Observation{}, &SettingsDocument{}, &User{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug {
		logging.Debug("database auto-migration completed",
			"db_type", dbType,
			"connection", connectionInfo,
			"duration_ms", time.Since(start).Milliseconds())
	}

	return nil
}
