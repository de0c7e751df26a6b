package colorscale

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Interpolator maps t in [0, 1] to a color.
type Interpolator func(t float64) colorful.Color

// bluesScheme is the nine-class ColorBrewer Blues scheme, lightest first.
var bluesScheme = []string{
	"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6",
	"#4292c6", "#2171b5", "#08519c", "#08306b",
}

// Blues runs from near-white to dark blue.
var Blues = MustRGBBasis(bluesScheme...)

// MustRGBBasis is RGBBasis that panics on a malformed color.
func MustRGBBasis(hex ...string) Interpolator {
	interp, err := RGBBasis(hex...)
	if err != nil {
		panic(err)
	}
	return interp
}

// RGBBasis returns a uniform cubic B-spline through the given colors, one
// spline per RGB channel. The curve starts at the first color and ends at the
// last; interior colors act as control points.
func RGBBasis(hex ...string) (Interpolator, error) {
	n := len(hex)
	r := make([]float64, n)
	g := make([]float64, n)
	b := make([]float64, n)
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, err
		}
		r[i], g[i], b[i] = c.R, c.G, c.B
	}
	sr, sg, sb := basis(r), basis(g), basis(b)
	return func(t float64) colorful.Color {
		return colorful.Color{R: sr(t), G: sg(t), B: sb(t)}.Clamped()
	}, nil
}

// basis returns a B-spline over values with phantom end points so the curve
// passes through the first and last value.
func basis(values []float64) func(float64) float64 {
	n := len(values) - 1
	return func(t float64) float64 {
		if n < 1 {
			if n == 0 {
				return values[0]
			}
			return 0
		}
		var i int
		switch {
		case t <= 0:
			t = 0
			i = 0
		case t >= 1:
			t = 1
			i = n - 1
		default:
			i = int(t * float64(n))
		}
		v1 := values[i]
		v2 := values[i+1]
		v0 := 2*v1 - v2
		if i > 0 {
			v0 = values[i-1]
		}
		v3 := 2*v2 - v1
		if i < n-1 {
			v3 = values[i+2]
		}
		return cubic((t-float64(i)/float64(n))*float64(n), v0, v1, v2, v3)
	}
}

func cubic(t1, v0, v1, v2, v3 float64) float64 {
	t2 := t1 * t1
	t3 := t2 * t1
	return ((1-3*t1+3*t2-t3)*v0 +
		(4-6*t2+3*t3)*v1 +
		(1+3*t1+3*t2-3*t3)*v2 +
		t3*v3) / 6
}
