// Package colorscale maps a continuous statistic onto a sequential color ramp.
package colorscale

import (
	"math"
)

// Scale is a sequential color scale with a fixed domain. It is safe for
// concurrent use.
type Scale struct {
	min, max float64
	interp   Interpolator
}

// New builds a scale whose domain is the observed extent of values. NaN values
// are ignored; an empty input yields the domain [0, 0]. A nil interpolator
// selects Blues.
func New(values []float64, interp Interpolator) *Scale {
	if interp == nil {
		interp = Blues
	}
	lo, hi := math.NaN(), math.NaN()
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(lo) || v < lo {
			lo = v
		}
		if math.IsNaN(hi) || v > hi {
			hi = v
		}
	}
	if math.IsNaN(lo) {
		lo, hi = 0, 0
	}
	return &Scale{min: lo, max: hi, interp: interp}
}

// Domain returns the [min, max] extent the scale was built from.
func (s *Scale) Domain() (float64, float64) {
	return s.min, s.max
}

// Normalize maps v to t in [0, 1]. Values outside the domain clamp to the
// nearest edge, a degenerate domain maps everything to 0.5, and NaN maps to 0.
func (s *Scale) Normalize(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if s.max == s.min {
		return 0.5
	}
	t := (v - s.min) / (s.max - s.min)
	return math.Max(0, math.Min(1, t))
}

// Evaluate returns the color of v as #rrggbb.
func (s *Scale) Evaluate(v float64) string {
	return s.interp(s.Normalize(v)).Hex()
}

// Ticks returns n values evenly spaced across the domain at bin midpoints.
func (s *Scale) Ticks(n int) []float64 {
	if n <= 0 {
		return nil
	}
	step := (s.max - s.min) / float64(n)
	ticks := make([]float64, n)
	for i := range ticks {
		ticks[i] = s.min + (float64(i)+0.5)*step
	}
	return ticks
}
