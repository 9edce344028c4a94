package db

import (
	"fmt"
	"time"

	"github.com/fsdevblog/urlkeeper/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLite открывает базу sqlite по пути dbPath и мигрирует схему через AutoMigrate.
// Для тестов подходит путь ":memory:".
func NewSQLite(dbPath string) (*gorm.DB, error) {
	conn, connErr := connectSQLite(dbPath)
	if connErr != nil {
		return nil, fmt.Errorf("init database error: %w", connErr)
	}
	if migrateErr := migrateSQLite(conn); migrateErr != nil {
		return nil, fmt.Errorf("migrate database error: %w", migrateErr)
	}
	return conn, nil
}

func connectSQLite(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        utcNow,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database with path %s error: %w", dbPath, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	// sqlite не умеет параллельную запись, а ":memory:" живет в рамках одного соединения.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func migrateSQLite(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.URL{}, &models.Session{}); err != nil {
		return fmt.Errorf("migrating sql: %w", err)
	}
	return nil
}

// utcNow все временные метки хранятся в UTC.
func utcNow() time.Time {
	return time.Now().UTC()
}
