package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"blackrent-backend/internal/api/grpc/interceptor"
	"blackrent-backend/internal/logger"
)

// ServiceName is the health service name reported alongside the overall ("") status
const ServiceName = "blackrent.Backend"

// Pinger is satisfied by *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthServer exposes the standard gRPC health protocol for orchestrators.
// Status follows database reachability.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	db     Pinger
}

func NewHealthServer(db Pinger) *HealthServer {
	s := grpc.NewServer(grpc.UnaryInterceptor(interceptor.Logging()))
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)
	reflection.Register(s)

	return &HealthServer{server: s, health: h, db: db}
}

// Check pings the database once and updates the reported status
func (h *HealthServer) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := h.db.PingContext(pingCtx); err != nil {
		logger.Warn("Health check: database unreachable", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
	return status
}

// Watch re-checks every interval until ctx is done
func (h *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	h.Check(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}

func (h *HealthServer) Serve(lis net.Listener) error {
	logger.Info("gRPC health server listening", "address", lis.Addr().String())
	return h.server.Serve(lis)
}

// Stop marks the service as not serving and drains open RPCs
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.server.GracefulStop()
}

// Status returns the last reported status of the named service
func (h *HealthServer) Status(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := h.health.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.Status, nil
}
