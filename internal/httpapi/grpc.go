package httpapi

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"iamgate.org/internal/obs"
)

const grpcServiceName = "iam-api"

// GRPCServer exposes the standard gRPC health service, kept in sync with the
// same readiness probe that backs /readyz.
type GRPCServer struct {
	srv    *grpc.Server
	health *health.Server
	probe  ReadyProbe
}

// NewGRPCServer registers the health service on a fresh gRPC server.
func NewGRPCServer(probe ReadyProbe) *GRPCServer {
	s := &GRPCServer{
		srv:    grpc.NewServer(),
		health: health.NewServer(),
		probe:  probe,
	}
	healthpb.RegisterHealthServer(s.srv, s.health)
	s.health.SetServingStatus(grpcServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Serve blocks serving gRPC on the listener.
func (g *GRPCServer) Serve(lis net.Listener) error {
	return g.srv.Serve(lis)
}

// GracefulStop drains in-flight RPCs and stops.
func (g *GRPCServer) GracefulStop() {
	g.srv.GracefulStop()
}

// WatchReadiness polls the probe until the context ends, mirroring the result
// into the health service and the readiness gauge.
func (g *GRPCServer) WatchReadiness(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	g.update(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.update(ctx)
		}
	}
}

func (g *GRPCServer) update(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := g.probe.Check(checkCtx); err != nil {
		obs.SetReady(false)
		g.health.SetServingStatus(grpcServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	obs.SetReady(true)
	g.health.SetServingStatus(grpcServiceName, healthpb.HealthCheckResponse_SERVING)
}
