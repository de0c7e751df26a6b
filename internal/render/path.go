package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
)

// PathData returns the SVG path data of g under proj, with coordinates rounded
// to precision decimal digits. Rings are closed with Z and do not repeat their
// first point. Points and nil geometries have no path.
func PathData(g geom.T, proj Projection, precision int) string {
	p := pathWriter{proj: proj, scale: math.Pow(10, float64(precision))}
	switch g := g.(type) {
	case *geom.Polygon:
		p.polygon(g.Coords())
	case *geom.MultiPolygon:
		for _, poly := range g.Coords() {
			p.polygon(poly)
		}
	case *geom.LineString:
		p.line(g.Coords(), false)
	case *geom.MultiLineString:
		for _, l := range g.Coords() {
			p.line(l, false)
		}
	}
	return p.b.String()
}

type pathWriter struct {
	b     strings.Builder
	proj  Projection
	scale float64
}

func (p *pathWriter) polygon(rings [][]geom.Coord) {
	for _, ring := range rings {
		p.line(ring, true)
	}
}

func (p *pathWriter) line(coords []geom.Coord, closed bool) {
	if closed && len(coords) > 1 && coords[0].Equal(geom.XY, coords[len(coords)-1]) {
		coords = coords[:len(coords)-1]
	}
	if len(coords) == 0 {
		return
	}
	for i, c := range coords {
		if i == 0 {
			p.b.WriteByte('M')
		} else {
			p.b.WriteByte('L')
		}
		x, y := p.proj.Project(c)
		p.b.WriteString(p.number(x))
		p.b.WriteByte(',')
		p.b.WriteString(p.number(y))
	}
	if closed {
		p.b.WriteByte('Z')
	}
}

func (p *pathWriter) number(v float64) string {
	r := math.Round(v*p.scale) / p.scale
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
