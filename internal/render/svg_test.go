package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/edumap/internal/interact"
	"github.com/sells-group/edumap/internal/join"
	"github.com/sells-group/edumap/internal/model"
)

func TestWriteSVG_DrawOrder(t *testing.T) {
	scene, _ := buildScene(t, []model.EducationRecord{autauga()})

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, scene))
	out := buf.String()

	lastCounty := strings.LastIndex(out, `class="county"`)
	state := strings.Index(out, `class="state"`)
	legend := strings.Index(out, `id="legend"`)
	require.NotEqual(t, -1, lastCounty)
	require.NotEqual(t, -1, state)
	require.NotEqual(t, -1, legend)
	assert.Greater(t, state, lastCounty, "state mesh is drawn over every county")
	assert.Greater(t, legend, state)
}

func TestWriteSVG_Annotations(t *testing.T) {
	scene, _ := buildScene(t, []model.EducationRecord{autauga()})

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, scene))
	out := buf.String()

	assert.Contains(t, out, `width="960.00" height="600.00"`)
	assert.Contains(t, out, `d="M1,0L1,1L0,1L0,0Z"`)
	assert.Contains(t, out, `data-fips="1001" data-education="22.1" fill="#6daed5"`)
	assert.Contains(t, out, `data-fips="1003" data-education="0" fill="gray"`)
	assert.Contains(t, out, `d="M1,0L1,1" id="states" class="state" fill="none" stroke="#fff"`)
	assert.Contains(t, out, `transform="translate(640,0)"`)
	assert.Equal(t, 8, strings.Count(out, `class="swatch"`))
	assert.Equal(t, 8, strings.Count(out, `class="legend-label"`))
	assert.Contains(t, out, `font-size="10px"`)
}

func TestWriteSVG_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, Empty(DefaultOptions())))
	out := buf.String()

	assert.Contains(t, out, `width="960.00" height="600.00"`)
	assert.Contains(t, out, `id="counties"`)
	assert.NotContains(t, out, `class="county"`)
	assert.NotContains(t, out, `id="legend"`)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteSVG_WriterError(t *testing.T) {
	err := WriteSVG(failingWriter{}, Empty(DefaultOptions()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestWritePage(t *testing.T) {
	idx := join.Build([]model.EducationRecord{autauga()}, join.LastWins)
	scene, _ := buildScene(t, []model.EducationRecord{autauga()})
	entries := interact.New(idx, interact.DefaultOptions()).Entries()

	var buf bytes.Buffer
	require.NoError(t, WritePage(&buf, scene, entries, PageOptions{Tooltip: interact.DefaultOptions()}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.NotContains(t, out, "<?xml")
	assert.Contains(t, out, "<title>US Educational Attainment</title>")
	assert.Contains(t, out, `<div id="tooltip"></div>`)
	assert.Contains(t, out, `<svg width="960.00" height="600.00"`)
	assert.Contains(t, out, "Autauga County, AL: 22.1%")
	assert.Regexp(t, `const offsetX = \s*10\s*;`, out)
	assert.Regexp(t, `const offsetY = \s*-28\s*;`, out)
	assert.Regexp(t, `const clamp = \s*false\s*;`, out)
}

func TestWritePage_EscapesTooltipText(t *testing.T) {
	rec := model.EducationRecord{FIPS: 1001, State: "AL", AreaName: "</script><b>", BachelorsOrHigher: 1}
	idx := join.Build([]model.EducationRecord{rec}, join.LastWins)
	scene, _ := buildScene(t, []model.EducationRecord{rec})

	var buf bytes.Buffer
	require.NoError(t, WritePage(&buf, scene, interact.New(idx, interact.DefaultOptions()).Entries(), PageOptions{}))
	assert.NotContains(t, buf.String(), "</script><b>")
}

func TestWritePage_EmptyScene(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePage(&buf, Empty(DefaultOptions()), nil, PageOptions{Title: "down"}))
	out := buf.String()
	assert.Contains(t, out, "<title>down</title>")
	assert.Regexp(t, `const tooltips = \s*\{\}\s*;`, out)
}

func TestWriteGeoJSON(t *testing.T) {
	scene, _ := buildScene(t, []model.EducationRecord{autauga()})

	var buf bytes.Buffer
	require.NoError(t, WriteGeoJSON(&buf, scene))

	var fc geojson.FeatureCollection
	require.NoError(t, fc.UnmarshalJSON(buf.Bytes()))
	require.Len(t, fc.Features, 2)

	first := fc.Features[0]
	assert.Equal(t, "1001", first.ID)
	assert.Equal(t, "Autauga County", first.Properties["area_name"])
	assert.Equal(t, "AL", first.Properties["state"])
	assert.Equal(t, 22.1, first.Properties["education"])
	assert.Equal(t, "#6daed5", first.Properties["fill"])
	assert.Equal(t, true, first.Properties["matched"])
	assert.NotNil(t, first.Geometry)

	second := fc.Features[1]
	assert.Equal(t, "1003", second.ID)
	assert.Equal(t, "gray", second.Properties["fill"])
	assert.Equal(t, 0.0, second.Properties["education"])
	assert.NotContains(t, second.Properties, "area_name")
}
