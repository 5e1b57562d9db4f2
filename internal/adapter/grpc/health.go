package grpc

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	googlegrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the service name reported by the health server next to the overall "" entry.
const ServiceName = "user-service"

// Checker probes a single dependency.
type Checker func(ctx context.Context) error

// HealthServer serves grpc.health.v1.Health and keeps its status in sync with
// the dependency checkers.
type HealthServer struct {
	*health.Server
	checks map[string]Checker
	log    *zap.Logger
}

// NewHealthServer creates a health server that starts in NOT_SERVING until the first probe.
func NewHealthServer(checks map[string]Checker, log *zap.Logger) *HealthServer {
	hs := &HealthServer{
		Server: health.NewServer(),
		checks: checks,
		log:    log,
	}
	hs.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return hs
}

// Register attaches the health service to a gRPC server.
func (hs *HealthServer) Register(s *googlegrpc.Server) {
	healthpb.RegisterHealthServer(s, hs.Server)
}

// Probe runs every checker and updates the served status.
// It returns the failing dependencies keyed by name.
func (hs *HealthServer) Probe(ctx context.Context) map[string]error {
	failed := make(map[string]error)

	names := make([]string, 0, len(hs.checks))
	for name := range hs.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := hs.checks[name](ctx); err != nil {
			hs.log.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			failed[name] = err
		}
	}

	if len(failed) > 0 {
		hs.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	} else {
		hs.setStatus(healthpb.HealthCheckResponse_SERVING)
	}
	return failed
}

// Run probes on every tick until ctx is done, then marks the server as shutting down.
func (hs *HealthServer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	hs.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
			hs.Probe(ctx)
		}
	}
}

func (hs *HealthServer) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	hs.SetServingStatus("", st)
	hs.SetServingStatus(ServiceName, st)
}
