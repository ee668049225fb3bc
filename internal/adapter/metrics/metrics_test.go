package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_RegistersAll(t *testing.T) {
	reg := NewRegistry()

	require.NotPanics(t, func() {
		NewHTTPMetrics(reg)
		NewUpstreamMetrics(reg)
		NewNoticeMetrics(reg)
	})
}

func TestHTTPMiddleware_RecordsRoute(t *testing.T) {
	reg := NewRegistry()
	m := NewHTTPMetrics(reg)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "board") })
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, path := range []string{"/", "/", "/health/live"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.InDelta(t, 2, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/", "200")), 0.001)
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestsTotal))
}

func TestHandler_ServesRegistry(t *testing.T) {
	reg := NewRegistry()
	up := NewUpstreamMetrics(reg)
	up.RequestsTotal.WithLabelValues("list", OutcomeOK).Inc()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `signupboard_upstream_requests_total{operation="list",outcome="ok"} 1`)
}

func TestNewSet_RegistersExtraCollectors(t *testing.T) {
	reg := NewRegistry()
	extra := prometheus.NewCounter(prometheus.CounterOpts{Name: "extra_total", Help: "extra"})

	set := NewSet(reg, extra)
	require.NotNil(t, set.HTTP)
	require.NotNil(t, set.Upstream)
	require.NotNil(t, set.Notice)

	extra.Inc()
	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "extra_total")
}
