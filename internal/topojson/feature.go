package topojson

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Feature is a geometry resolved to absolute coordinates.
type Feature struct {
	ID    int
	HasID bool
	// Geometry is nil for null geometries.
	Geometry   geom.T
	Properties map[string]any
	// Source is the geometry the feature was resolved from.
	Source *Geometry
}

// Features resolves every geometry of the named object. A GeometryCollection
// yields one feature per member; any other object yields a single feature.
func (t *Topology) Features(object string) ([]Feature, error) {
	obj, err := t.Object(object)
	if err != nil {
		return nil, err
	}

	members := []*Geometry{obj}
	if obj.Type == "GeometryCollection" {
		members = obj.Geometries
	}

	features := make([]Feature, 0, len(members))
	for i, g := range members {
		if g == nil {
			continue
		}
		f, err := t.Feature(g)
		if err != nil {
			return nil, eris.Wrapf(err, "topojson: %s feature %d", object, i)
		}
		features = append(features, f)
	}
	return features, nil
}

// Feature resolves a single geometry.
func (t *Topology) Feature(g *Geometry) (Feature, error) {
	id, ok := g.NumericID()
	f := Feature{ID: id, HasID: ok, Properties: g.Properties, Source: g}

	geometry, err := t.geometry(g)
	if err != nil {
		return Feature{}, err
	}
	f.Geometry = geometry
	return f, nil
}

func (t *Topology) geometry(g *Geometry) (geom.T, error) {
	switch g.Type {
	case "Point":
		p, err := geom.NewPoint(geom.XY).SetCoords(t.position(g.coords[0]))
		return p, wrapSet(err, g.Type)
	case "MultiPoint":
		coords := make([]geom.Coord, 0, len(g.coords))
		for _, c := range g.coords {
			coords = append(coords, t.position(c))
		}
		mp, err := geom.NewMultiPoint(geom.XY).SetCoords(coords)
		return mp, wrapSet(err, g.Type)
	case "LineString":
		ls, err := geom.NewLineString(geom.XY).SetCoords(toCoords(t.line(g.line)))
		return ls, wrapSet(err, g.Type)
	case "MultiLineString":
		coords := make([][]geom.Coord, 0, len(g.lines))
		for _, l := range g.lines {
			coords = append(coords, toCoords(t.line(l)))
		}
		mls, err := geom.NewMultiLineString(geom.XY).SetCoords(coords)
		return mls, wrapSet(err, g.Type)
	case "Polygon":
		poly, err := geom.NewPolygon(geom.XY).SetCoords(t.rings(g.lines))
		return poly, wrapSet(err, g.Type)
	case "MultiPolygon":
		coords := make([][][]geom.Coord, 0, len(g.polygons))
		for _, p := range g.polygons {
			coords = append(coords, t.rings(p))
		}
		mp, err := geom.NewMultiPolygon(geom.XY).SetCoords(coords)
		return mp, wrapSet(err, g.Type)
	case "", "null":
		return nil, nil
	default:
		return nil, eris.Errorf("topojson: cannot resolve geometry type %q", g.Type)
	}
}

func (t *Topology) rings(lines [][]int) [][]geom.Coord {
	rings := make([][]geom.Coord, 0, len(lines))
	for _, l := range lines {
		rings = append(rings, toCoords(t.ring(l)))
	}
	return rings
}

// position transforms a point position. Point coordinates are quantized but
// never delta-encoded.
func (t *Topology) position(c []float64) geom.Coord {
	p := t.transformPoint(c[0], c[1])
	return geom.Coord{p[0], p[1]}
}

func toCoords(points []point) []geom.Coord {
	coords := make([]geom.Coord, 0, len(points))
	for _, p := range points {
		coords = append(coords, geom.Coord{p[0], p[1]})
	}
	return coords
}

func wrapSet(err error, kind string) error {
	if err == nil {
		return nil
	}
	return eris.Wrapf(err, "topojson: build %s", kind)
}
