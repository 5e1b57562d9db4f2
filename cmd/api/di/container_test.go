package di

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-service/internal/config"
	"user-service/internal/usecase/user"
	"user-service/pkg/async"
)

func sqliteConfig(t *testing.T) *config.Config {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.DB.Driver = config.DriverSQLite
	cfg.DB.SQLitePath = filepath.Join(t.TempDir(), "users.db")
	cfg.DB.MaxOpenConns = 1
	cfg.DB.MaxIdleConns = 1
	return cfg
}

func TestNewContainer_WithoutRedis(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Redis.Enabled = false
	cfg.RateLimit.Enabled = false

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Nil(t, c.RedisClient)
	assert.False(t, c.RateLimiter.Enabled())
	assert.Empty(t, c.Health.Probe(context.Background()))

	ctx := context.Background()
	name, email, password := "Maria", "maria@mail.com", "123"
	saved, err := c.UserService.Save(ctx, user.UserRequest{Name: &name, Email: &email, Password: &password}).Await(ctx)
	require.NoError(t, err)

	users, err := async.Collect(c.UserService.FindAll(ctx))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, saved.ID, users[0].ID)
}

func TestNewContainer_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	cfg := sqliteConfig(t)
	cfg.Redis.Host = host
	cfg.Redis.Port = port

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NotNil(t, c.RedisClient)
	assert.True(t, c.RateLimiter.Enabled())
	assert.Empty(t, c.Health.Probe(context.Background()))
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.DB.Driver = "mongo"

	_, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "config validation failed")
}
