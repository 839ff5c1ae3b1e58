package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/YouSangSon/academy-backoffice/internal/pkg/errors"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery는 패닉을 복구하고 500 에러를 반환합니다
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				ctx := c.Request.Context()
				logger.Error(ctx, "panic recovered",
					logger.HTTPMethod(c.Request.Method),
					logger.HTTPPath(c.Request.URL.Path),
					logger.RemoteAddr(c.ClientIP()),
					zap.Any("panic", err),
					zap.String("stack", string(debug.Stack())),
				)

				AbortWithError(c, errors.New(errors.ErrCodeInternal, "internal server error"))
			}
		}()

		c.Next()
	}
}

// AbortWithError는 표준 에러 응답을 쓰고 요청을 중단합니다
func AbortWithError(c *gin.Context, appErr *errors.AppError) {
	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	if appErr.Details != "" {
		body["details"] = appErr.Details
	}
	if len(appErr.Metadata) > 0 {
		body["metadata"] = appErr.Metadata
	}

	if appErr.Err != nil {
		_ = c.Error(appErr)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{
		"error":      body,
		"request_id": GetRequestID(c),
	})
}

// CORS는 허용된 origin에 대한 CORS 헤더를 설정합니다. 비어 있으면 모든 origin을 허용합니다
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case len(allowed) == 0:
			c.Header("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
