package middleware

import (
	"net/http"

	"github.com/YouSangSon/academy-backoffice/internal/pkg/errors"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/tracing"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Tracing은 요청마다 OpenTelemetry span을 시작합니다
func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartSpan(c.Request.Context(), c.Request.Method+" "+c.Request.URL.Path)
		defer span.End()

		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.target", c.Request.URL.Path),
			attribute.String("http.client_ip", c.ClientIP()),
		)
		if requestID := GetRequestID(c); requestID != "" {
			span.SetAttributes(attribute.String("request.id", requestID))
		}

		ctx = logger.WithFields(ctx,
			logger.TraceID(tracing.GetTraceID(ctx)),
			logger.SpanID(tracing.GetSpanID(ctx)),
		)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		statusCode := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", statusCode))
		last := c.Errors.Last()
		if last != nil {
			span.SetAttributes(attribute.String("error.code", string(errors.GetCode(last.Err))))
		}
		// 4xx 응답은 클라이언트 오류이므로 span을 실패로 표시하지 않습니다
		switch {
		case last != nil && errors.GetHTTPStatus(last.Err) >= 500:
			span.RecordError(last.Err)
			span.SetStatus(codes.Error, last.Error())
		case statusCode >= 500:
			span.SetStatus(codes.Error, http.StatusText(statusCode))
		default:
			span.SetStatus(codes.Ok, "")
		}
	}
}
