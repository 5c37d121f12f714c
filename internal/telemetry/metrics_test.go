package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.RecordCreated(KindPlant)
	m.RecordCreated(KindPlant)
	m.RecordCreated(KindVisitor)
	m.RecordDeleted(KindProject)
	m.RecordDenied("plant-details")
	m.RecordLogin(true)
	m.RecordLogin(false)
	m.RecordExport("csv", 12)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.recordsCreated.WithLabelValues(KindPlant)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recordsCreated.WithLabelValues(KindVisitor)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recordsDeleted.WithLabelValues(KindProject)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.accessDenied.WithLabelValues("plant-details")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exports.WithLabelValues("csv")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordCreated(KindProject)
		m.RecordDeleted(KindProject)
		m.RecordDenied("x")
		m.RecordLogin(true)
		m.RecordExport("csv", 1)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_GinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m, err := NewMetrics()
	require.NoError(t, err)

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/plants/:plant_id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, path := range []string{"/plants/a", "/plants/b", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/plants/:plant_id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestGrpcEndpoint(t *testing.T) {
	assert.Equal(t, "otel:4317", grpcEndpoint("http://otel:4317/"))
	assert.Equal(t, "otel:4317", grpcEndpoint("https://otel:4317"))
	assert.Equal(t, "otel:4317", grpcEndpoint("otel:4317"))
}
