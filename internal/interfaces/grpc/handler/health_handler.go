package handler

import (
	"context"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName은 health 서비스에 등록되는 이 서버의 서비스명입니다
const ServiceName = "academy.backoffice.v1.Backoffice"

// PingFunc는 문서 저장소 연결을 확인합니다
type PingFunc func(ctx context.Context) error

// HealthHandler는 grpc.health.v1.Health 서비스를 저장소 상태에 맞춰 갱신합니다
type HealthHandler struct {
	server   *health.Server
	ping     PingFunc
	interval time.Duration
	timeout  time.Duration
}

// NewHealthHandler는 새로운 HealthHandler를 생성합니다. 첫 점검 전까지는 NOT_SERVING입니다
func NewHealthHandler(ping PingFunc, interval time.Duration) *HealthHandler {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	srv := health.NewServer()
	srv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	srv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthHandler{
		server:   srv,
		ping:     ping,
		interval: interval,
		timeout:  3 * time.Second,
	}
}

// Server는 gRPC 서버에 등록할 health 서비스 구현을 반환합니다
func (h *HealthHandler) Server() healthpb.HealthServer {
	return h.server
}

// Check는 저장소를 한 번 점검하고 상태를 갱신합니다
func (h *HealthHandler) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.ping(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		logger.Warn(ctx, "document store ping failed", logger.Component("grpc-health"), zap.Error(err))
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
	return status
}

// Run은 ctx가 끝날 때까지 주기적으로 Check를 실행합니다
func (h *HealthHandler) Run(ctx context.Context) {
	h.Check(ctx)

	ticker := time.NewTicker(h.interval)
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

// Shutdown은 모든 서비스를 NOT_SERVING으로 바꾸고 이후 갱신을 무시합니다
func (h *HealthHandler) Shutdown() {
	h.server.Shutdown()
}
