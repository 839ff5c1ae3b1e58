package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// CheckFunc는 의존성 하나의 상태를 확인합니다
type CheckFunc func(ctx context.Context) error

// HealthHandler는 헬스체크 핸들러입니다
type HealthHandler struct {
	version  string
	required map[string]CheckFunc
	optional map[string]CheckFunc
	timeout  time.Duration
}

// NewHealthHandler는 새로운 HealthHandler를 생성합니다
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version:  version,
		required: make(map[string]CheckFunc),
		optional: make(map[string]CheckFunc),
		timeout:  3 * time.Second,
	}
}

// Require는 실패하면 서비스가 준비되지 않은 것으로 보는 의존성을 등록합니다
func (h *HealthHandler) Require(name string, check CheckFunc) {
	h.required[name] = check
}

// Optional은 실패해도 degraded로만 보고하는 의존성을 등록합니다
func (h *HealthHandler) Optional(name string, check CheckFunc) {
	h.optional[name] = check
}

// HealthResponse는 헬스체크 응답입니다
type HealthResponse struct {
	Status    string                 `json:"status"` // "healthy", "degraded", "unhealthy"
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Checks    map[string]HealthCheck `json:"checks,omitempty"`
}

// HealthCheck는 개별 의존성 체크 결과입니다
type HealthCheck struct {
	Status   string  `json:"status"`
	Message  string  `json:"message,omitempty"`
	Duration float64 `json:"duration_ms"`
}

// Health는 프로세스가 살아 있는지만 응답합니다
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   h.version,
	})
}

// Ready는 등록된 의존성을 모두 확인합니다
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   h.version,
		Checks:    make(map[string]HealthCheck),
	}

	for _, name := range sortedKeys(h.required) {
		check := runCheck(ctx, h.required[name])
		response.Checks[name] = check
		if check.Status != "healthy" {
			response.Status = "unhealthy"
		}
	}
	for _, name := range sortedKeys(h.optional) {
		check := runCheck(ctx, h.optional[name])
		response.Checks[name] = check
		if check.Status != "healthy" && response.Status == "healthy" {
			response.Status = "degraded"
		}
	}

	status := http.StatusOK
	if response.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response)
}

func runCheck(ctx context.Context, fn CheckFunc) HealthCheck {
	start := time.Now()
	err := fn(ctx)
	check := HealthCheck{
		Status:   "healthy",
		Duration: float64(time.Since(start).Milliseconds()),
	}
	if err != nil {
		check.Status = "unhealthy"
		check.Message = err.Error()
	}
	return check
}

func sortedKeys(m map[string]CheckFunc) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
