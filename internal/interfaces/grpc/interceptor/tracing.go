package interceptor

import (
	"context"
	"strings"

	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// UnaryTracingInterceptor는 gRPC unary 요청에 span을 만듭니다
func UnaryTracingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		ctx, span := startRPCSpan(ctx, info.FullMethod)
		defer span.End()

		resp, err := handler(ctx, req)
		finishRPCSpan(span, err)
		return resp, err
	}
}

// StreamTracingInterceptor는 gRPC stream 요청에 span을 만듭니다
func StreamTracingInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, span := startRPCSpan(ss.Context(), info.FullMethod)
		defer span.End()

		err := handler(srv, &wrappedServerStream{ServerStream: ss, ctx: ctx})
		finishRPCSpan(span, err)
		return err
	}
}

func startRPCSpan(ctx context.Context, fullMethod string) (context.Context, trace.Span) {
	ctx, span := tracing.StartSpan(ctx, fullMethod)
	span.SetAttributes(
		attribute.String("rpc.system", "grpc"),
		attribute.String("rpc.method", fullMethod),
		attribute.String("rpc.service", extractServiceName(fullMethod)),
	)
	ctx = logger.WithFields(ctx,
		logger.TraceID(tracing.GetTraceID(ctx)),
		logger.SpanID(tracing.GetSpanID(ctx)),
	)
	return ctx, span
}

func finishRPCSpan(span trace.Span, err error) {
	st := status.Convert(err)
	span.SetAttributes(attribute.String("rpc.grpc.status_code", st.Code().String()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, st.Message())
		return
	}
	span.SetStatus(codes.Ok, "")
}

// extractServiceName은 full method에서 서비스 이름을 추출합니다
// 예: "/grpc.health.v1.Health/Check" -> "grpc.health.v1.Health"
func extractServiceName(fullMethod string) string {
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	if i := strings.LastIndex(fullMethod, "/"); i >= 0 {
		return fullMethod[:i]
	}
	return fullMethod
}
