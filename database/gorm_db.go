package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/showlog/showlogbackend/models"
)

// MemoryPath opens a private in-memory database instead of a file.
const MemoryPath = ":memory:"

// DSN builds the sqlite connection string for path. Each ":memory:" call gets its own
// shared-cache database so every pooled connection sees the same tables.
func DSN(path string, busyTimeoutMS int) string {
	if path == MemoryPath {
		return fmt.Sprintf("file:memdb-%s?mode=memory&cache=shared&_foreign_keys=1&_busy_timeout=%d", uuid.NewString(), busyTimeoutMS)
	}
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=1&_busy_timeout=%d", path, busyTimeoutMS)
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// InitGormDB initializes and returns a GORM database instance
func InitGormDB(dataSourceName string, logLevel string) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  parseLogLevel(logLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{
		Logger: gormLogger,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database using GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB from GORM: %w", err)
	}

	if strings.Contains(dataSourceName, "mode=memory") {
		// shared-cache memory databases lock per table; one connection avoids SQLITE_LOCKED
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("GORM Database initialized successfully at", dataSourceName)
	return db, nil
}

// AutoMigrateModels creates or updates the attendance schema
func AutoMigrateModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Venue{},
		&models.Event{},
		&models.Band{},
		&models.Show{},
		&models.ShowBand{},
	)
	if err != nil {
		return fmt.Errorf("GORM AutoMigrate failed: %w", err)
	}
	log.Println("GORM AutoMigrate completed successfully.")
	return nil
}

// Open initializes the database at path and migrates the schema.
func Open(path, logLevel string, busyTimeoutMS int) (*gorm.DB, error) {
	db, err := InitGormDB(DSN(path, busyTimeoutMS), logLevel)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrateModels(db); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, err
	}
	return db, nil
}
