package infrastructure

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-service/internal/adapter/db/postgres"
	"user-service/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.DB.Driver = config.DriverSQLite
	cfg.DB.SQLitePath = filepath.Join(t.TempDir(), "users.db")
	cfg.DB.MaxOpenConns = 1
	cfg.DB.MaxIdleConns = 1
	return cfg
}

func TestNewDatabase_SQLiteWithMigration(t *testing.T) {
	cfg := testConfig(t)

	db, err := NewDatabase(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDatabase(db) })

	assert.True(t, db.Migrator().HasTable(&postgres.UserSchema{}))
}

func TestNewDatabase_WithoutMigration(t *testing.T) {
	cfg := testConfig(t)
	cfg.DB.AutoMigrate = false

	db, err := NewDatabase(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDatabase(db) })

	assert.False(t, db.Migrator().HasTable(&postgres.UserSchema{}))
}

func TestNewDatabase_UnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.DB.Driver = "mongo"

	_, err := NewDatabase(cfg, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestCloseDatabase_Nil(t *testing.T) {
	assert.NoError(t, CloseDatabase(nil))
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.Redis.Host = host
	cfg.Redis.Port = port

	rdb, err := NewRedisClient(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, rdb)
	t.Cleanup(func() { _ = rdb.Close() })
	assert.NoError(t, rdb.Check(context.Background()))
}

func TestNewRedisClient_Disabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Redis.Enabled = false

	rdb, err := NewRedisClient(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Nil(t, rdb)
}
