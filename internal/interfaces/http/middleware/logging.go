package middleware

import (
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/pkg/errors"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logging은 HTTP 요청 결과를 로깅합니다. 요청 본문은 폼 개인정보가 있어 남기지 않습니다
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		ctx := c.Request.Context()
		duration := time.Since(start)
		statusCode := c.Writer.Status()
		if raw != "" {
			path = path + "?" + raw
		}

		fields := []zap.Field{
			logger.HTTPMethod(c.Request.Method),
			logger.HTTPPath(path),
			logger.HTTPStatus(statusCode),
			logger.RemoteAddr(c.ClientIP()),
			logger.DurationMs(duration),
			zap.Int("response_size", c.Writer.Size()),
		}

		if last := c.Errors.Last(); last != nil {
			fields = append(fields,
				logger.ErrorCode(string(errors.GetCode(last.Err))),
				zap.Strings("errors", c.Errors.Errors()),
			)
		}

		switch {
		case statusCode >= 500:
			logger.Error(ctx, "request completed", fields...)
		case statusCode >= 400:
			logger.Warn(ctx, "request completed", fields...)
		default:
			logger.Info(ctx, "request completed", fields...)
		}
	}
}
