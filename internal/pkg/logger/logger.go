package logger

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const (
	loggerKey contextKey = "logger"
)

var globalLogger *zap.Logger

// Config는 로거 설정입니다
type Config struct {
	Environment string
	Level       string
	ServiceName string
	Version     string
}

// Init은 글로벌 로거를 초기화합니다
func Init(cfg *Config) error {
	var config zap.Config

	if cfg.Environment == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.MessageKey = "message"
		config.EncoderConfig.LevelKey = "level"
		config.EncoderConfig.CallerKey = "caller"
		config.EncoderConfig.StacktraceKey = "stacktrace"
		config.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		config.EncoderConfig.EncodeDuration = zapcore.SecondsDurationEncoder
		config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err == nil {
			config.Level = zap.NewAtomicLevelAt(level)
		}
	}

	logger, err := config.Build(
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return err
	}

	// 서비스 정보를 기본 필드로 추가
	if cfg.ServiceName != "" {
		logger = logger.With(zap.String("service", cfg.ServiceName))
	}
	if cfg.Version != "" {
		logger = logger.With(zap.String("version", cfg.Version))
	}
	if cfg.Environment != "" {
		logger = logger.With(zap.String("environment", cfg.Environment))
	}

	if podName := os.Getenv("POD_NAME"); podName != "" {
		logger = logger.With(zap.String("pod_name", podName))
	}

	SetLogger(logger)
	return nil
}

// SetLogger는 글로벌 로거를 교체합니다 (테스트에서 observer 코어를 주입할 때 사용)
func SetLogger(l *zap.Logger) {
	globalLogger = l
}

// getLogger는 컨텍스트에서 로거를 가져오거나 글로벌 로거를 반환합니다
func getLogger(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
			return logger
		}
	}

	if globalLogger == nil {
		globalLogger, _ = zap.NewProduction()
	}

	return globalLogger
}

// withLogger는 컨텍스트에 로거를 추가합니다
func withLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithFields는 컨텍스트의 로거에 필드를 추가합니다
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	logger := getLogger(ctx).With(fields...)
	return withLogger(ctx, logger)
}

// Info는 info 레벨 로그를 출력합니다
func Info(ctx context.Context, msg string, fields ...zap.Field) {
	getLogger(ctx).Info(msg, fields...)
}

// Error는 error 레벨 로그를 출력합니다
func Error(ctx context.Context, msg string, fields ...zap.Field) {
	getLogger(ctx).Error(msg, fields...)
}

// Warn은 warn 레벨 로그를 출력합니다
func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	getLogger(ctx).Warn(msg, fields...)
}

// Debug는 debug 레벨 로그를 출력합니다
func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	getLogger(ctx).Debug(msg, fields...)
}

// Fatal은 fatal 레벨 로그를 출력하고 프로그램을 종료합니다
func Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	getLogger(ctx).Fatal(msg, fields...)
}

// Sync는 로거를 flush합니다
func Sync() {
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
}

// LogStoreOperation은 문서 저장소 작업을 로깅합니다
func LogStoreOperation(ctx context.Context, operation, collection string, duration int64, err error, fields ...zap.Field) {
	allFields := append(fields,
		zap.String("operation", operation),
		zap.String("collection", collection),
		zap.Int64("duration_ms", duration),
	)

	if err != nil {
		allFields = append(allFields, zap.Error(err))
		getLogger(ctx).Error("store operation failed", allFields...)
	} else {
		getLogger(ctx).Debug("store operation completed", allFields...)
	}
}
