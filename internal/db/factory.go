package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type StorageType string

const (
	StorageTypeSQLite   StorageType = "sqlite"
	StorageTypePostgres StorageType = "postgres"
	StorageTypeInMemory StorageType = "inMemory"
)

type FactoryConfig struct {
	StorageType  StorageType
	PostgresDSN  *string
	SqliteDBPath *string
}

// Connection результат работы фабрики. Заполнено ровно одно из полей.
type Connection struct {
	SQL    *gorm.DB
	Memory *MemoryStorage
	// Close освобождает ресурсы соединения.
	Close func() error
}

// NewConnectionFactory открывает хранилище нужного типа и накатывает на него схему.
func NewConnectionFactory(ctx context.Context, config FactoryConfig) (*Connection, error) {
	switch config.StorageType {
	case StorageTypePostgres:
		if config.PostgresDSN == nil || *config.PostgresDSN == "" {
			return nil, errors.New("postgres dsn is empty")
		}
		conn, err := NewPostgres(ctx, *config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres connection: %w", err)
		}
		return &Connection{SQL: conn, Close: closer(conn)}, nil
	case StorageTypeSQLite:
		if config.SqliteDBPath == nil || *config.SqliteDBPath == "" {
			return nil, errors.New("sqlite path is empty")
		}
		conn, err := NewSQLite(*config.SqliteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite connection: %w", err)
		}
		return &Connection{SQL: conn, Close: closer(conn)}, nil
	case StorageTypeInMemory:
		return &Connection{Memory: NewMemStorage(), Close: func() error { return nil }}, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", config.StorageType)
	}
}

func closer(conn *gorm.DB) func() error {
	return func() error {
		sqlDB, err := conn.DB()
		if err != nil {
			return fmt.Errorf("get sql db: %w", err)
		}
		return sqlDB.Close() //nolint:wrapcheck
	}
}
