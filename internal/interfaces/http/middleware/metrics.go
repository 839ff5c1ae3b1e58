package middleware

import (
	"strconv"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics는 Prometheus HTTP 메트릭을 수집합니다. 경로는 라우트 템플릿으로 집계합니다
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
