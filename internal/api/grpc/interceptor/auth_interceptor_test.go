package interceptor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"cluster-ledger-backend/internal/config"
	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/security"
)

const leaderMethod = "/cluster.ledger.v1.Ledger/SettleRecord"

func withLeaderMethod(t *testing.T) {
	t.Helper()
	config.RouteSecurityConfig[leaderMethod] = config.SecurityLeader
	t.Cleanup(func() { delete(config.RouteSecurityConfig, leaderMethod) })
}

func TestAuthInterceptor_Unary(t *testing.T) {
	withLeaderMethod(t)
	tm := security.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	unary := NewAuthInterceptor(tm).Unary()

	var seen domain.Actor
	handler := func(ctx context.Context, req any) (any, error) {
		seen, _ = ActorFromContext(ctx)
		return "ok", nil
	}
	withToken := func(role domain.Role, id int32) context.Context {
		token, err := tm.GenerateAccessToken(id, role)
		require.NoError(t, err)
		return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))
	}

	t.Run("Public method", func(t *testing.T) {
		resp, err := unary(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, handler)
		assert.NoError(t, err)
		assert.Equal(t, "ok", resp)
	})

	t.Run("Missing metadata", func(t *testing.T) {
		_, err := unary(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: leaderMethod}, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("Invalid token", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "garbage"))
		_, err := unary(ctx, nil, &grpc.UnaryServerInfo{FullMethod: leaderMethod}, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("Member on leader method", func(t *testing.T) {
		_, err := unary(withToken(domain.RoleMember, 2), nil, &grpc.UnaryServerInfo{FullMethod: leaderMethod}, handler)
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})

	t.Run("Leader", func(t *testing.T) {
		_, err := unary(withToken(domain.RoleLeader, 1), nil, &grpc.UnaryServerInfo{FullMethod: leaderMethod}, handler)
		assert.NoError(t, err)
		assert.Equal(t, domain.Actor{UserID: 1, Role: domain.RoleLeader}, seen)
	})

	t.Run("Member on default method", func(t *testing.T) {
		_, err := unary(withToken(domain.RoleMember, 2), nil, &grpc.UnaryServerInfo{FullMethod: "/cluster.ledger.v1.Ledger/ListRecords"}, handler)
		assert.NoError(t, err)
		assert.Equal(t, int32(2), seen.UserID)
	})
}
