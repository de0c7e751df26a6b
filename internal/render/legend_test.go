package render

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/edumap/internal/colorscale"
)

func TestBuildLegend(t *testing.T) {
	scale := colorscale.New([]float64{2.6, 75.1, 33.3}, nil)
	legend := BuildLegend(scale, LegendOptions{})

	require.Len(t, legend.Swatches, 8)
	assert.Equal(t, 300.0, legend.Width)
	assert.Equal(t, 20.0, legend.Height)
	assert.Equal(t, 35.0, legend.LabelY)
	assert.Equal(t, "10px", legend.FontSize)

	for i, sw := range legend.Swatches {
		assert.Equal(t, 37.5, sw.Width)
		assert.Equal(t, float64(i)*37.5, sw.X)
		assert.Equal(t, scale.Evaluate(sw.Value), sw.Fill)
		assert.Equal(t, strconv.Itoa(int(math.Round(sw.Value)))+"%", sw.Label)
		if i > 0 {
			assert.Greater(t, sw.Value, legend.Swatches[i-1].Value)
		}
	}
	assert.Equal(t, "7%", legend.Swatches[0].Label)
	assert.Equal(t, "71%", legend.Swatches[7].Label)
}

func TestBuildLegend_AlwaysEightByDefault(t *testing.T) {
	for _, values := range [][]float64{nil, {5}, {1, 2}, make([]float64, 3000)} {
		legend := BuildLegend(colorscale.New(values, nil), LegendOptions{})
		assert.Len(t, legend.Swatches, DefaultSwatches)
	}
}

func TestBuildLegend_CustomCount(t *testing.T) {
	legend := BuildLegend(colorscale.New([]float64{0, 100}, nil), LegendOptions{Swatches: 4, Width: 200, Height: 10})
	require.Len(t, legend.Swatches, 4)
	assert.Equal(t, 50.0, legend.Swatches[1].X)
	assert.Equal(t, []string{"13%", "38%", "63%", "88%"}, []string{
		legend.Swatches[0].Label, legend.Swatches[1].Label, legend.Swatches[2].Label, legend.Swatches[3].Label,
	})
}
