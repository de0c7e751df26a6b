package render

import (
	"math"
	"strconv"

	"github.com/sells-group/edumap/internal/colorscale"
)

// Legend layout defaults.
const (
	DefaultSwatches     = 8
	DefaultLegendWidth  = 300
	DefaultLegendHeight = 20

	legendLabelOffset = 15
	legendFontSize    = "10px"
	// legendRaise lifts the legend above the top margin.
	legendRaise = 20
)

// LegendOptions sizes the legend.
type LegendOptions struct {
	Swatches int
	Width    float64
	Height   float64
}

// Swatch is one legend cell.
type Swatch struct {
	X     float64 `json:"x" yaml:"x"`
	Width float64 `json:"width" yaml:"width"`
	Value float64 `json:"value" yaml:"value"`
	Fill  string  `json:"fill" yaml:"fill"`
	Label string  `json:"label" yaml:"label"`
}

// Legend is a row of equal-width swatches with a label under each.
type Legend struct {
	// X and Y translate the legend group on the surface.
	X        float64  `json:"x" yaml:"x"`
	Y        float64  `json:"y" yaml:"y"`
	Width    float64  `json:"width" yaml:"width"`
	Height   float64  `json:"height" yaml:"height"`
	LabelY   float64  `json:"label_y" yaml:"label_y"`
	FontSize string   `json:"font_size" yaml:"font_size"`
	Swatches []Swatch `json:"swatches" yaml:"swatches"`
}

// BuildLegend samples scale at opts.Swatches bin midpoints. The legend is
// positioned at the origin; Build places it on the surface.
func BuildLegend(scale *colorscale.Scale, opts LegendOptions) Legend {
	if opts.Swatches <= 0 {
		opts.Swatches = DefaultSwatches
	}
	if opts.Width <= 0 {
		opts.Width = DefaultLegendWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultLegendHeight
	}

	cell := opts.Width / float64(opts.Swatches)
	legend := Legend{
		Width:    opts.Width,
		Height:   opts.Height,
		LabelY:   opts.Height + legendLabelOffset,
		FontSize: legendFontSize,
		Swatches: make([]Swatch, 0, opts.Swatches),
	}
	for i, v := range scale.Ticks(opts.Swatches) {
		legend.Swatches = append(legend.Swatches, Swatch{
			X:     float64(i) * cell,
			Width: cell,
			Value: v,
			Fill:  scale.Evaluate(v),
			Label: strconv.Itoa(int(math.Round(v))) + "%",
		})
	}
	return legend
}
