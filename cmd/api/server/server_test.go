package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpcadapter "user-service/internal/adapter/grpc"
	"user-service/internal/adapter/grpc/middleware"
	"user-service/internal/config"
)

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port)
}

func TestServer_StartServesHealthAndShutsDown(t *testing.T) {
	log := zaptest.NewLogger(t)
	cfg := &config.Config{App: config.AppConfig{GRPCPort: freePort(t), HTTPPort: freePort(t)}}

	health := grpcadapter.NewHealthServer(map[string]grpcadapter.Checker{
		"database": func(ctx context.Context) error { return nil },
	}, log)
	health.Probe(context.Background())
	limiter := middleware.NewRateLimiter(nil, middleware.RateLimiterConfig{}, log)

	srv := New(cfg, log, nil, limiter, health)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%s/health", cfg.App.HTTPPort))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	conn, err := grpc.NewClient("127.0.0.1:"+cfg.App.GRPCPort, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: grpcadapter.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	require.NoError(t, srv.Shutdown(shutdownCtx))
	require.NoError(t, <-errCh)
}

func TestServer_StartFailsOnBusyPort(t *testing.T) {
	log := zaptest.NewLogger(t)

	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()
	port := strconv.Itoa(busy.Addr().(*net.TCPAddr).Port)

	cfg := &config.Config{App: config.AppConfig{GRPCPort: port, HTTPPort: freePort(t)}}
	limiter := middleware.NewRateLimiter(nil, middleware.RateLimiterConfig{}, log)
	srv := New(cfg, log, nil, limiter, grpcadapter.NewHealthServer(nil, log))

	err = srv.Start(context.Background())
	assert.ErrorContains(t, err, "failed to listen on gRPC address")
}
