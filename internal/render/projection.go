package render

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Projection names accepted by NewProjection.
const (
	ProjectionIdentity        = "identity"
	ProjectionEquirectangular = "equirectangular"
)

// Projection maps a source coordinate onto the drawing surface.
type Projection interface {
	Project(c geom.Coord) (x, y float64)
}

// Identity passes coordinates through unchanged. The county topology is
// already projected to screen space, so this is the default.
type Identity struct{}

// Project implements Projection.
func (Identity) Project(c geom.Coord) (float64, float64) {
	return c[0], c[1]
}

// Equirectangular maps longitude and latitude linearly onto the surface with
// north up.
type Equirectangular struct {
	k      float64
	tx, ty float64
}

// FitEquirectangular returns the equirectangular projection that fits bounds
// into the extent [x0, y0]-[x1, y1], centered and preserving aspect ratio.
func FitEquirectangular(bounds *geom.Bounds, x0, y0, x1, y1 float64) *Equirectangular {
	if bounds == nil || bounds.IsEmpty() {
		return &Equirectangular{k: 1, tx: x0, ty: y0}
	}
	w := bounds.Max(0) - bounds.Min(0)
	h := bounds.Max(1) - bounds.Min(1)

	k := math.Min((x1-x0)/w, (y1-y0)/h)
	if math.IsInf(k, 0) || math.IsNaN(k) {
		k = 1
	}
	cx := (bounds.Min(0) + bounds.Max(0)) / 2
	cy := (bounds.Min(1) + bounds.Max(1)) / 2
	return &Equirectangular{
		k:  k,
		tx: (x0+x1)/2 - k*cx,
		ty: (y0+y1)/2 + k*cy,
	}
}

// Project implements Projection.
func (p *Equirectangular) Project(c geom.Coord) (float64, float64) {
	return p.tx + p.k*c[0], p.ty - p.k*c[1]
}

// NewProjection builds the named projection for geometries spanning bounds,
// fitted inside the margins of a width x height surface.
func NewProjection(name string, bounds *geom.Bounds, width, height float64, m Margin) (Projection, error) {
	switch name {
	case "", ProjectionIdentity:
		return Identity{}, nil
	case ProjectionEquirectangular:
		return FitEquirectangular(bounds, m.Left, m.Top, width-m.Right, height-m.Bottom), nil
	default:
		return nil, eris.Errorf("render: unknown projection %q", name)
	}
}
