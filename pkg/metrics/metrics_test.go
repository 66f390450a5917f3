package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecommendRequestsTotal.WithLabelValues("ok").Inc()
	m.TitleResolutionsTotal.WithLabelValues("fuzzy").Add(2)
	m.CatalogMovies.Set(42)

	body := scrape(t, reg)
	assert.Contains(t, body, `recommend_requests_total{outcome="ok"} 1`)
	assert.Contains(t, body, `title_resolutions_total{kind="fuzzy"} 2`)
	assert.Contains(t, body, "catalog_movies 42")
}

func TestNewPanicsOnDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
