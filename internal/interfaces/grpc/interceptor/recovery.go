package interceptor

import (
	"context"
	"runtime/debug"

	"github.com/YouSangSon/academy-backoffice/internal/pkg/errors"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnaryRecoveryInterceptor는 gRPC unary 요청에서 패닉을 복구합니다
func UnaryRecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(ctx, "panic recovered in gRPC unary handler",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.String("stack", string(debug.Stack())),
				)
				err = status.Errorf(codes.Internal, "internal server error")
			}
		}()

		return handler(ctx, req)
	}
}

// StreamRecoveryInterceptor는 gRPC stream 요청에서 패닉을 복구합니다
func StreamRecoveryInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(ss.Context(), "panic recovered in gRPC stream handler",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.String("stack", string(debug.Stack())),
				)
				err = status.Errorf(codes.Internal, "internal server error")
			}
		}()

		return handler(srv, ss)
	}
}

// UnaryErrorHandlerInterceptor는 AppError를 gRPC 상태 코드로 변환합니다
func UnaryErrorHandlerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			var appErr *errors.AppError
			if errors.As(err, &appErr) {
				return resp, status.Error(mapErrorCodeToGRPC(appErr.Code), appErr.Message)
			}
		}
		return resp, err
	}
}

// mapErrorCodeToGRPC는 AppError 코드를 gRPC 코드로 매핑합니다
func mapErrorCodeToGRPC(errCode errors.ErrorCode) codes.Code {
	switch errCode {
	case errors.ErrCodeBadRequest, errors.ErrCodeValidation, errors.ErrCodeInvalidCollection:
		return codes.InvalidArgument
	case errors.ErrCodeNotFound:
		return codes.NotFound
	case errors.ErrCodeUnauthorized:
		return codes.Unauthenticated
	case errors.ErrCodeServiceUnavailable, errors.ErrCodeCircuitOpen:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}
