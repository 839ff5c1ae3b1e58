package middleware

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/YouSangSon/academy-backoffice/internal/pkg/errors"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging_RecordsErrorCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	logger.SetLogger(zap.New(core))
	t.Cleanup(func() { logger.SetLogger(zap.NewNop()) })

	r := gin.New()
	r.Use(Logging())
	r.POST("/classes", func(c *gin.Context) {
		AbortWithError(c, errors.Wrap(stderrors.New("name is required"), errors.ErrCodeValidation, "name is required"))
	})
	r.GET("/classes", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/classes", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/classes", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, string(errors.ErrCodeValidation), entries[0].ContextMap()["error_code"])
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.NotContains(t, entries[1].ContextMap(), "error_code")
}
