package server_test

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/interfaces/grpc/handler"
	"github.com/YouSangSon/academy-backoffice/internal/interfaces/grpc/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func dial(t *testing.T, health *handler.HealthHandler) healthpb.HealthClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := server.New(health, server.Options{})
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return healthpb.NewHealthClient(conn)
}

func TestHealth_FollowsStorePing(t *testing.T) {
	var down atomic.Bool
	health := handler.NewHealthHandler(func(context.Context) error {
		if down.Load() {
			return errors.New("server selection timeout")
		}
		return nil
	}, time.Hour)
	client := dial(t, health)
	ctx := context.Background()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)

	health.Check(ctx)
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: handler.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	down.Store(true)
	health.Check(ctx)
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestHealth_UnknownService(t *testing.T) {
	health := handler.NewHealthHandler(func(context.Context) error { return nil }, time.Hour)
	client := dial(t, health)

	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "nope"})
	assert.Error(t, err)
}

func TestHealth_ShutdownReportsNotServing(t *testing.T) {
	health := handler.NewHealthHandler(func(context.Context) error { return nil }, time.Hour)
	client := dial(t, health)
	ctx := context.Background()

	health.Check(ctx)
	health.Shutdown()
	health.Check(ctx)

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}
