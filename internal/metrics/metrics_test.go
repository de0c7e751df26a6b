package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFetch(t *testing.T) {
	m := New("test")

	m.RecordFetch("education", nil, 10*time.Millisecond)
	m.RecordFetch("topology", errors.New("boom"), time.Second)

	assert.InDelta(t, 1, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("education", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("topology", "error")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("topology", "ok")), 0)
}

func TestRecordRender(t *testing.T) {
	m := New("test")
	m.RecordRender(3142, 6, 20*time.Millisecond)

	assert.InDelta(t, 3142, testutil.ToFloat64(m.CountiesRendered), 0)
	assert.InDelta(t, 6, testutil.ToFloat64(m.JoinMisses), 0)
}

func TestRecordHover(t *testing.T) {
	m := New("test")
	m.RecordHover(true)
	m.RecordHover(true)
	m.RecordHover(false)

	assert.InDelta(t, 2, testutil.ToFloat64(m.HoversTotal.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.HoversTotal.WithLabelValues("miss")), 0)
}

func TestHandler(t *testing.T) {
	m := New("edumap")
	m.RecordHover(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `edumap_hovers_total{result="hit"} 1`)
}

func TestNew_IndependentRegistries(t *testing.T) {
	a := New("edumap")
	b := New("edumap")
	a.RecordHover(true)

	assert.InDelta(t, 0, testutil.ToFloat64(b.HoversTotal.WithLabelValues("hit")), 0)
	assert.NotSame(t, a.Registry(), b.Registry())
}
