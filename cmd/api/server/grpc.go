package server

import (
	"google.golang.org/grpc"

	grpcadapter "user-service/internal/adapter/grpc"
	"user-service/internal/adapter/grpc/middleware"
	"user-service/pkg/logger"
)

// SetupGRPC creates the gRPC server exposing the standard health service
func SetupGRPC(rateLimiter *middleware.RateLimiter, health *grpcadapter.HealthServer) *grpc.Server {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			rateLimiter.UnaryInterceptor(),
		),
	)
	health.Register(grpcServer)

	return grpcServer
}
