package middleware

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/storefront-backend/internal/observability"
)

func TestMetricsLabelsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics(time.Minute)
	r := gin.New()
	r.Use(Metrics(m, "/healthcheck"))
	r.GET("/healthcheck", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/api/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	call(r, http.MethodGet, "/healthcheck", "")
	call(r, http.MethodGet, "/api/products/1", "")
	call(r, http.MethodGet, "/api/products/2", "")
	call(r, http.MethodGet, "/wp-admin", "")
	call(r, http.MethodGet, "/.env", "")

	var buf bytes.Buffer
	require.NoError(t, m.WritePrometheus(&buf))
	out := buf.String()

	assert.Contains(t, out, `storefront_api_requests_total{method="GET",route="/api/products/:id",status="200"} 2`)
	assert.Contains(t, out, `storefront_api_requests_total{method="GET",route="unmatched",status="404"} 2`)
	assert.NotContains(t, out, `route="/healthcheck"`)
	assert.NotContains(t, out, "/wp-admin")
	assert.NotContains(t, out, "/.env")
}

func TestMetricsNilIsPassthrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusAccepted) })
	assert.Equal(t, http.StatusAccepted, call(r, http.MethodGet, "/x", "").Code)
}
