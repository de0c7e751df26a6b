package topojson

import (
	"github.com/twpayne/go-geom"
)

// Filter selects mesh arcs. a and b are the first and last geometries that
// reference the arc; they are the same geometry for exterior arcs.
type Filter func(a, b *Geometry) bool

// Interior selects arcs shared by two different geometries.
func Interior(a, b *Geometry) bool { return a != b }

type arcRef struct {
	arc  int
	geom *Geometry
}

// Mesh returns the arcs of the named object selected by filter as a
// MultiLineString, one line per arc, each arc appearing once. A nil filter
// selects every arc.
func (t *Topology) Mesh(object string, filter Filter) (*geom.MultiLineString, error) {
	obj, err := t.Object(object)
	if err != nil {
		return nil, err
	}

	byArc := make([][]arcRef, len(t.arcs))
	var collect func(g *Geometry, owner *Geometry)
	add := func(owner *Geometry, arcs []int) {
		for _, i := range arcs {
			j := arcIndex(i)
			byArc[j] = append(byArc[j], arcRef{arc: i, geom: owner})
		}
	}
	collect = func(g *Geometry, owner *Geometry) {
		switch g.Type {
		case "GeometryCollection":
			for _, child := range g.Geometries {
				if child != nil {
					collect(child, child)
				}
			}
		case "LineString":
			add(owner, g.line)
		case "MultiLineString", "Polygon":
			for _, l := range g.lines {
				add(owner, l)
			}
		case "MultiPolygon":
			for _, p := range g.polygons {
				for _, l := range p {
					add(owner, l)
				}
			}
		}
	}
	collect(obj, obj)

	mls := geom.NewMultiLineString(geom.XY)
	for _, refs := range byArc {
		if len(refs) == 0 {
			continue
		}
		if filter != nil && !filter(refs[0].geom, refs[len(refs)-1].geom) {
			continue
		}
		ls, err := geom.NewLineString(geom.XY).SetCoords(toCoords(t.arc(refs[0].arc, nil)))
		if err != nil {
			return nil, wrapSet(err, "mesh line")
		}
		if err := mls.Push(ls); err != nil {
			return nil, wrapSet(err, "mesh")
		}
	}
	return mls, nil
}
