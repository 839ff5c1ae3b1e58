package router

import (
	"time"

	httpHandler "github.com/YouSangSon/academy-backoffice/internal/interfaces/http/handler"
	"github.com/YouSangSon/academy-backoffice/internal/interfaces/http/middleware"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options는 라우터 구성 옵션입니다
type Options struct {
	Environment    string
	EnableTracing  bool
	EnableMetrics  bool
	AllowedOrigins []string

	// FormLimiter는 공개 폼과 로그인에 적용됩니다. nil이면 제한하지 않습니다
	FormLimiter middleware.Limiter
	// RateWindow는 FormLimiter의 윈도우 길이로 Retry-After 계산에 쓰입니다
	RateWindow time.Duration
}

// Handlers는 라우터에 연결할 핸들러 묶음입니다
type Handlers struct {
	Health  *httpHandler.HealthHandler
	Content *httpHandler.ContentHandler
	Auth    *httpHandler.AuthHandler
	Admin   *httpHandler.AdminHandler
	Logs    *httpHandler.LogsHandler
}

// SetupRouter는 API 서버의 모든 라우트를 구성합니다
func SetupRouter(h Handlers, authenticator middleware.Authenticator, m *metrics.Metrics, opts Options) *gin.Engine {
	if opts.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global Middlewares
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(opts.AllowedOrigins))

	if opts.EnableTracing {
		router.Use(middleware.Tracing())
	}
	if opts.EnableMetrics && m != nil {
		router.Use(middleware.Metrics(m))
	}

	formLimit := middleware.RateLimit(opts.FormLimiter, opts.RateWindow)

	// Health & Metrics Endpoints (no rate limit)
	router.GET("/health", h.Health.Health)
	router.GET("/ready", h.Health.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		// 공개 사이트
		v1.GET("/content/:collection", h.Content.List)
		v1.GET("/classes/current", h.Content.CurrentClass)
		v1.POST("/leads", formLimit, h.Content.SubmitLead)
		v1.POST("/registrations", formLimit, h.Content.SubmitRegistration)

		v1.POST("/admin/auth/login", formLimit, h.Auth.Login)

		// 관리자
		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAdmin(authenticator))
		{
			admin.POST("/auth/logout", h.Auth.Logout)
			admin.GET("/auth/session", h.Auth.Session)

			collections := admin.Group("/collections")
			{
				collections.GET("/:collection", h.Admin.List)
				collections.POST("/:collection", h.Admin.Create)
				collections.GET("/:collection/:id", h.Admin.Get)
				collections.PUT("/:collection/:id", h.Admin.Update)
				collections.DELETE("/:collection/:id", h.Admin.Delete)
			}

			admin.PUT("/classes/:id/current", h.Admin.SetCurrentClass)

			admin.GET("/logs", h.Logs.List)
			admin.DELETE("/logs", h.Logs.Purge)
		}
	}

	return router
}
