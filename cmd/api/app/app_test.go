package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port)
}

func setupEnv(t *testing.T) string {
	httpPort := freePort(t)
	t.Setenv("CONFIG_PATH", t.TempDir())
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", filepath.Join(t.TempDir(), "users.db"))
	t.Setenv("DB_MAX_OPEN_CONNS", "1")
	t.Setenv("DB_MAX_IDLE_CONNS", "1")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("HTTP_PORT", httpPort)
	t.Setenv("GRPC_PORT", freePort(t))
	t.Setenv("LOG_OUTPUT_PATH", "stderr")
	t.Setenv("LOG_LEVEL", "error")
	return httpPort
}

func TestApp_RunAndShutdown(t *testing.T) {
	httpPort := setupEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := New(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%s/users", httpPort))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("application did not shut down")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("DB_DRIVER", "mongo")

	_, err := New(context.Background())
	assert.ErrorContains(t, err, "config validation failed")
}
