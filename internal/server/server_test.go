package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/edumap/internal/interact"
	"github.com/sells-group/edumap/internal/join"
	"github.com/sells-group/edumap/internal/metrics"
	"github.com/sells-group/edumap/internal/model"
	"github.com/sells-group/edumap/internal/render"
	"github.com/sells-group/edumap/internal/topojson"
)

func loadedMap(t *testing.T) *Map {
	t.Helper()
	f, err := os.Open("testdata/counties.json")
	require.NoError(t, err)
	defer f.Close()
	topo, err := topojson.Decode(f)
	require.NoError(t, err)

	idx := join.Build([]model.EducationRecord{
		{FIPS: 1001, State: "AL", AreaName: "Autauga County", BachelorsOrHigher: 22.1},
	}, join.LastWins)
	scene, err := render.Build(topo, idx, nil, render.DefaultOptions())
	require.NoError(t, err)
	return &Map{Scene: scene, Index: idx}
}

func newTestServer(t *testing.T, m *Map) (*Server, *metrics.Metrics) {
	t.Helper()
	met := metrics.New("test")
	s := New(m, Options{
		Cache:   NewDocumentCache(8, time.Hour),
		Metrics: met,
		Page:    render.PageOptions{Tooltip: interact.DefaultOptions()},
	})
	return s, met
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestPage(t *testing.T) {
	s, _ := newTestServer(t, loadedMap(t))

	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "miss", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), `<div id="tooltip"></div>`)
	assert.Contains(t, rec.Body.String(), "Autauga County, AL: 22.1%")

	rec = get(t, s, "/")
	assert.Equal(t, "hit", rec.Header().Get("X-Cache"))
}

func TestSVG(t *testing.T) {
	s, _ := newTestServer(t, loadedMap(t))

	rec := get(t, s, "/map.svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Greater(t, strings.Index(body, `class="state"`), strings.LastIndex(body, `class="county"`))
}

func TestGeoJSON(t *testing.T) {
	s, _ := newTestServer(t, loadedMap(t))

	rec := get(t, s, "/map.geojson")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	fc := decode[map[string]any](t, rec)
	assert.Equal(t, "FeatureCollection", fc["type"])
	assert.Len(t, fc["features"], 2)
}

func TestCounty(t *testing.T) {
	s, _ := newTestServer(t, loadedMap(t))

	rec := get(t, s, "/api/counties/1001")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[countyResponse](t, rec)
	assert.Equal(t, countyResponse{
		FIPS:      1001,
		Matched:   true,
		Education: 22.1,
		Fill:      "#6daed5",
		AreaName:  "Autauga County",
		State:     "AL",
		Tooltip:   "Autauga County, AL: 22.1%",
	}, got)

	rec = get(t, s, "/api/counties/1003")
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[countyResponse](t, rec)
	assert.False(t, got.Matched)
	assert.Equal(t, "gray", got.Fill)
	assert.Zero(t, got.Education)
	assert.Empty(t, got.Tooltip)
}

func TestCounty_Errors(t *testing.T) {
	s, _ := newTestServer(t, loadedMap(t))

	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/counties/9999").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/counties/autauga").Code)
}

func TestHover(t *testing.T) {
	s, met := newTestServer(t, loadedMap(t))

	rec := get(t, s, "/api/hover?fips=1001&x=100&y=200")
	require.Equal(t, http.StatusOK, rec.Code)
	tip := decode[interact.Tooltip](t, rec)
	assert.True(t, tip.Visible)
	assert.Equal(t, 0.9, tip.Opacity)
	assert.Equal(t, "Autauga County, AL: 22.1%", tip.Text)
	assert.Equal(t, 110.0, tip.Left)
	assert.Equal(t, 172.0, tip.Top)

	rec = get(t, s, "/api/hover?fips=1003")
	require.Equal(t, http.StatusOK, rec.Code)
	tip = decode[interact.Tooltip](t, rec)
	assert.False(t, tip.Visible)
	assert.Zero(t, tip.Opacity)

	assert.Equal(t, 1.0, testutil.ToFloat64(met.HoversTotal.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(met.HoversTotal.WithLabelValues("miss")))
}

func TestHover_BadRequest(t *testing.T) {
	s, _ := newTestServer(t, loadedMap(t))

	for _, target := range []string{"/api/hover", "/api/hover?fips=x", "/api/hover?fips=1001&x=left"} {
		assert.Equal(t, http.StatusBadRequest, get(t, s, target).Code, target)
	}
}

func TestLegend(t *testing.T) {
	s, _ := newTestServer(t, loadedMap(t))

	rec := get(t, s, "/api/legend")
	require.Equal(t, http.StatusOK, rec.Code)
	legend := decode[render.Legend](t, rec)
	assert.Len(t, legend.Swatches, 8)
	assert.Equal(t, 640.0, legend.X)
	for _, sw := range legend.Swatches {
		assert.Regexp(t, `^\d+%$`, sw.Label)
	}
}

func TestCacheStats(t *testing.T) {
	s, _ := newTestServer(t, loadedMap(t))
	get(t, s, "/map.svg")
	get(t, s, "/map.svg")

	stats := decode[CacheStats](t, get(t, s, "/api/cache"))
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)

	noCache := New(loadedMap(t), Options{})
	assert.Equal(t, map[string]any{"enabled": false}, decode[map[string]any](t, get(t, noCache, "/api/cache")))
}

func TestCacheInvalidate(t *testing.T) {
	s, _ := newTestServer(t, loadedMap(t))
	get(t, s, "/map.svg")
	require.Equal(t, "hit", get(t, s, "/map.svg").Header().Get("X-Cache"))

	req := httptest.NewRequest(http.MethodDelete, "/api/cache", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, 0, decode[CacheStats](t, get(t, s, "/api/cache")).Entries)
	assert.Equal(t, "miss", get(t, s, "/map.svg").Header().Get("X-Cache"))

	noCache := New(loadedMap(t), Options{})
	rec = httptest.NewRecorder()
	noCache.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/cache", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, loadedMap(t))
	body := decode[map[string]any](t, get(t, s, "/health"))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["loaded"])
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, loadedMap(t))
	get(t, s, "/api/counties/1001")

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_http_requests_total{route="/api/counties/{fips}",status="200"} 1`)
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer(t, loadedMap(t))

	req := httptest.NewRequest(http.MethodGet, "/api/legend", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestFailureMode(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<svg width="960.00" height="600.00"`)
	assert.NotContains(t, body, `class="county"`)
	assert.Contains(t, body, `<div id="tooltip"></div>`)

	for _, target := range []string{"/api/counties/1001", "/api/hover?fips=1001", "/api/legend", "/api/cache"} {
		rec := get(t, s, target)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
		assert.Equal(t, map[string]string{"error": "datasets unavailable"}, decode[map[string]string](t, rec))
	}

	health := decode[map[string]any](t, get(t, s, "/health"))
	assert.Equal(t, "degraded", health["status"])
	assert.Equal(t, false, health["loaded"])
}
