package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"cluster-ledger-backend/internal/api/grpc/interceptor"
	"cluster-ledger-backend/internal/logger"
	"cluster-ledger-backend/internal/security"
)

// ServiceName is the health service name reported for the ledger.
const ServiceName = "cluster.ledger.v1.Ledger"

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes gRPC health checking and reflection for the ledger.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	db     Pinger
}

func NewServer(tokens security.TokenManager, db Pinger) *Server {
	auth := interceptor.NewAuthInterceptor(tokens)
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptor.LoggingUnary(), auth.Unary()),
		grpc.ChainStreamInterceptor(auth.Stream()),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	// Register reflection service for grpcurl
	reflection.Register(s)

	srv := &Server{grpc: s, health: hs, db: db}
	srv.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return srv
}

func (s *Server) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// CheckDatabase pings the database once and updates the serving status.
func (s *Server) CheckDatabase(ctx context.Context) {
	if s.db == nil {
		s.setStatus(healthpb.HealthCheckResponse_SERVING)
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.Ping(pingCtx); err != nil {
		logger.Warn("Database ping failed", "error", err)
		s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
}

// WatchDatabase re-checks the database every interval until ctx is done.
func (s *Server) WatchDatabase(ctx context.Context, interval time.Duration) {
	s.CheckDatabase(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckDatabase(ctx)
		}
	}
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// GracefulStop marks the server as not serving and drains open RPCs.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
