package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/supplyload-go/internal/adapters/persistence"
	"github.com/andrescamacho/supplyload-go/internal/infrastructure/config"
	"github.com/andrescamacho/supplyload-go/internal/infrastructure/database"
)

func TestNewTestConnection_MigratesLoadingTables(t *testing.T) {
	db, err := database.NewTestConnection()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	assert.True(t, db.Migrator().HasTable(&persistence.LoadingEventModel{}))
	assert.True(t, db.Migrator().HasTable(&persistence.LoadingSessionModel{}))
}

func TestNewConnection_RejectsUnknownType(t *testing.T) {
	_, err := database.NewConnection(&config.DatabaseConfig{Type: "oracle"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestNewConnection_SQLiteFile(t *testing.T) {
	path := t.TempDir() + "/events.db"

	db, err := database.NewConnection(&config.DatabaseConfig{Type: "sqlite", Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.AutoMigrate(db))
	assert.FileExists(t, path)
}

func TestOpen_MigratesSQLiteFile(t *testing.T) {
	cfg := config.SQLite(t.TempDir() + "/loading.db")

	db, err := database.Open(&cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	assert.True(t, db.Migrator().HasTable(&persistence.LoadingSessionModel{}))
	assert.FileExists(t, cfg.Path)
}

func TestOpen_InMemoryUsesOneConnection(t *testing.T) {
	cfg := config.SQLite(":memory:")

	db, err := database.Open(&cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}
