package interceptor

import (
	"context"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	RequestIDMetadataKey = "x-request-id"
)

// UnaryLoggingInterceptor는 gRPC unary 요청을 로깅합니다
func UnaryLoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		ctx = logger.WithFields(ctx, logger.RequestID(extractOrGenerateRequestID(ctx)))

		resp, err := handler(ctx, req)

		logCompletion(ctx, "gRPC request", info.FullMethod, time.Since(start), err)
		return resp, err
	}
}

// StreamLoggingInterceptor는 gRPC stream 요청을 로깅합니다
func StreamLoggingInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		ctx := logger.WithFields(ss.Context(), logger.RequestID(extractOrGenerateRequestID(ss.Context())))

		logger.Debug(ctx, "gRPC stream opened", zap.String("method", info.FullMethod))

		err := handler(srv, &wrappedServerStream{ServerStream: ss, ctx: ctx})

		logCompletion(ctx, "gRPC stream", info.FullMethod, time.Since(start), err)
		return err
	}
}

func logCompletion(ctx context.Context, kind, method string, duration time.Duration, err error) {
	fields := []zap.Field{
		zap.String("method", method),
		logger.DurationMs(duration),
		zap.String("status", status.Code(err).String()),
	}
	if err != nil {
		logger.Warn(ctx, kind+" failed", append(fields, zap.Error(err))...)
		return
	}
	logger.Debug(ctx, kind+" completed", fields...)
}

// extractOrGenerateRequestID는 metadata에서 request ID를 추출하거나 생성합니다
func extractOrGenerateRequestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(RequestIDMetadataKey); len(ids) > 0 && ids[0] != "" {
			return ids[0]
		}
	}
	return uuid.New().String()
}

// wrappedServerStream은 context를 교체한 ServerStream입니다
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
