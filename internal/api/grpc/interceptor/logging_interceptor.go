package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"cluster-ledger-backend/internal/logger"
	"cluster-ledger-backend/internal/metrics"
)

// LoggingUnary logs each unary RPC with its status code and latency.
func LoggingUnary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		elapsed := time.Since(start)
		code := status.Code(err)

		logger.InfoContext(ctx, "gRPC request",
			"method", info.FullMethod,
			"code", code.String(),
			"duration_ms", elapsed.Milliseconds(),
		)
		metrics.ObserveGRPC(info.FullMethod, code.String(), elapsed)
		return resp, err
	}
}
