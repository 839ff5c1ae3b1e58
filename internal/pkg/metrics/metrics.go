package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics는 애플리케이션 메트릭을 관리합니다
type Metrics struct {
	// HTTP 메트릭
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// gRPC 메트릭
	GRPCRequestsTotal   *prometheus.CounterVec
	GRPCRequestDuration *prometheus.HistogramVec

	// 문서 저장소 메트릭
	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec

	// 캐시 메트릭
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// 감사 로그 메트릭
	AuditEntriesTotal *prometheus.CounterVec

	// 이벤트 발행 메트릭
	EventsPublishedTotal *prometheus.CounterVec
}

var (
	globalMetrics *Metrics
	initOnce      sync.Once
)

// Init은 메트릭을 초기화합니다. 같은 레지스트리에 두 번 등록되지 않도록 한 번만 실행됩니다
func Init(namespace string) *Metrics {
	initOnce.Do(func() {
		globalMetrics = newMetrics(namespace, prometheus.DefaultRegisterer)
	})
	return globalMetrics
}

func newMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		GRPCRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "grpc_requests_total",
				Help:      "Total number of gRPC requests",
			},
			[]string{"method", "status"},
		),
		GRPCRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "grpc_request_duration_seconds",
				Help:      "gRPC request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		StoreOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of document store operations",
			},
			[]string{"operation", "collection", "status"},
		),
		StoreOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Document store operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "collection"},
		),
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"cache_name"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"cache_name"},
		),
		AuditEntriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audit_entries_total",
				Help:      "Audit log writes by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		EventsPublishedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Domain events published to the message broker",
			},
			[]string{"event_type", "status"},
		),
	}
}

// GetMetrics는 글로벌 메트릭 인스턴스를 반환합니다
func GetMetrics() *Metrics {
	return Init("academy_backoffice")
}

// RecordHTTPRequest는 HTTP 요청 메트릭을 기록합니다
func (m *Metrics) RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordGRPCRequest는 gRPC 요청 메트릭을 기록합니다
func (m *Metrics) RecordGRPCRequest(method, status string, duration time.Duration) {
	m.GRPCRequestsTotal.WithLabelValues(method, status).Inc()
	m.GRPCRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordStoreOperation은 문서 저장소 작업 메트릭을 기록합니다
func (m *Metrics) RecordStoreOperation(operation, collection, status string, duration time.Duration) {
	m.StoreOperationsTotal.WithLabelValues(operation, collection, status).Inc()
	m.StoreOperationDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
}

// RecordCacheHit은 캐시 히트를 기록합니다
func (m *Metrics) RecordCacheHit(cacheName string) {
	m.CacheHitsTotal.WithLabelValues(cacheName).Inc()
}

// RecordCacheMiss는 캐시 미스를 기록합니다
func (m *Metrics) RecordCacheMiss(cacheName string) {
	m.CacheMissesTotal.WithLabelValues(cacheName).Inc()
}

// RecordAuditEntry는 감사 로그 기록 결과를 집계합니다
func (m *Metrics) RecordAuditEntry(action, outcome string) {
	m.AuditEntriesTotal.WithLabelValues(action, outcome).Inc()
}

// RecordEventPublished는 이벤트 발행 결과를 집계합니다
func (m *Metrics) RecordEventPublished(eventType, status string) {
	m.EventsPublishedTotal.WithLabelValues(eventType, status).Inc()
}
