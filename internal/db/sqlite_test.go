package db

import (
	"testing"

	"github.com/fsdevblog/urlkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLite_MigratesSchema(t *testing.T) {
	conn, err := NewSQLite(":memory:")
	require.NoError(t, err)

	for _, model := range []any{&models.User{}, &models.URL{}, &models.Session{}} {
		assert.True(t, conn.Migrator().HasTable(model), "table for %T must exist", model)
	}
	assert.True(t, conn.Migrator().HasIndex(&models.URL{}, "ShortCode"))
}

func TestNewConnectionFactory(t *testing.T) {
	path := ":memory:"

	conn, err := NewConnectionFactory(t.Context(), FactoryConfig{StorageType: StorageTypeSQLite, SqliteDBPath: &path})
	require.NoError(t, err)
	assert.NotNil(t, conn.SQL)
	assert.Nil(t, conn.Memory)
	require.NoError(t, conn.Close())

	conn, err = NewConnectionFactory(t.Context(), FactoryConfig{StorageType: StorageTypeInMemory})
	require.NoError(t, err)
	assert.NotNil(t, conn.Memory)

	_, err = NewConnectionFactory(t.Context(), FactoryConfig{StorageType: StorageTypePostgres})
	require.Error(t, err)

	_, err = NewConnectionFactory(t.Context(), FactoryConfig{StorageType: "mongo"})
	require.Error(t, err)
}
