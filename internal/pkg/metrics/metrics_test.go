package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	m := newMetrics("academy", prometheus.NewRegistry())

	m.RecordHTTPRequest("GET", "/api/v1/content/:collection", "200", 15*time.Millisecond)
	m.RecordHTTPRequest("GET", "/api/v1/content/:collection", "200", 5*time.Millisecond)
	m.RecordAuditEntry("update", "success")
	m.RecordCacheMiss("content")
	m.RecordEventPublished("content.changed", "error")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/content/:collection", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditEntriesTotal.WithLabelValues("update", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("content")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("content")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublishedTotal.WithLabelValues("content.changed", "error")))
}

func TestInit_RegistersOnce(t *testing.T) {
	first := Init("academy_test")
	assert.NotPanics(t, func() { Init("academy_test") })
	assert.Same(t, first, GetMetrics())
}
