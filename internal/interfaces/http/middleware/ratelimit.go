package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Limiter는 키 단위 요청 허용 여부를 판단합니다
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit는 클라이언트 IP 기반 rate limiting 미들웨어입니다. 제한기 오류 시 요청을 통과시킵니다
func RateLimit(limiter Limiter, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		clientIP := c.ClientIP()
		key := c.FullPath() + ":" + clientIP

		allowed, err := limiter.Allow(ctx, key)
		if err != nil {
			logger.Error(ctx, "rate limit check failed",
				zap.String("client_ip", clientIP),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !allowed {
			logger.Warn(ctx, "rate limit exceeded",
				zap.String("client_ip", clientIP),
				logger.HTTPPath(c.FullPath()),
			)
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "RATE_LIMITED",
					"message": "too many requests, try again later",
				},
				"request_id": GetRequestID(c),
			})
			return
		}

		c.Next()
	}
}
