// Package server는 gRPC 서버를 구성합니다.
package server

import (
	"github.com/YouSangSon/academy-backoffice/internal/interfaces/grpc/handler"
	"github.com/YouSangSon/academy-backoffice/internal/interfaces/grpc/interceptor"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/metrics"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Options는 gRPC 서버 옵션입니다
type Options struct {
	EnableTracing    bool
	EnableReflection bool
	Metrics          *metrics.Metrics
}

// New는 인터셉터가 연결된 gRPC 서버를 만들고 health 서비스를 등록합니다
func New(health *handler.HealthHandler, opts Options) *grpc.Server {
	unary := []grpc.UnaryServerInterceptor{
		interceptor.UnaryRecoveryInterceptor(),
		interceptor.UnaryLoggingInterceptor(),
	}
	stream := []grpc.StreamServerInterceptor{
		interceptor.StreamRecoveryInterceptor(),
		interceptor.StreamLoggingInterceptor(),
	}
	if opts.EnableTracing {
		unary = append(unary, interceptor.UnaryTracingInterceptor())
		stream = append(stream, interceptor.StreamTracingInterceptor())
	}
	if opts.Metrics != nil {
		unary = append(unary, interceptor.UnaryMetricsInterceptor(opts.Metrics))
		stream = append(stream, interceptor.StreamMetricsInterceptor(opts.Metrics))
	}
	unary = append(unary, interceptor.UnaryErrorHandlerInterceptor())

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(unary...),
		grpc.ChainStreamInterceptor(stream...),
	)
	healthpb.RegisterHealthServer(srv, health.Server())
	if opts.EnableReflection {
		reflection.Register(srv)
	}
	return srv
}
