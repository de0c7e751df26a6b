// Package topojson decodes TopoJSON topologies into go-geom geometries.
//
// Only the subset needed for boundary rendering is implemented: quantized and
// unquantized arcs, the seven geometry types, feature resolution and the
// boundary mesh of an object.
package topojson

import (
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/edumap/internal/fetcher"
)

// ErrObjectNotFound is returned when a named object is absent from the topology.
var ErrObjectNotFound = eris.New("topojson: object not found")

// Topology is a decoded TopoJSON document.
type Topology struct {
	Type      string               `json:"type"`
	BBox      []float64            `json:"bbox,omitempty"`
	Transform *Transform           `json:"transform,omitempty"`
	Objects   map[string]*Geometry `json:"objects"`
	Arcs      [][][]float64        `json:"arcs"`

	// arcs holds every arc in absolute coordinates.
	arcs [][]point
}

// Transform is the quantization transform of a topology.
type Transform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

// Geometry is one TopoJSON geometry object. Arc and coordinate payloads are
// kept raw until the topology is resolved because their nesting depends on Type.
type Geometry struct {
	Type        string          `json:"type"`
	ID          json.RawMessage `json:"id,omitempty"`
	Properties  map[string]any  `json:"properties,omitempty"`
	RawArcs     json.RawMessage `json:"arcs,omitempty"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
	Geometries  []*Geometry     `json:"geometries,omitempty"`

	line     []int
	lines    [][]int
	polygons [][][]int
	coords   [][]float64
}

type point [2]float64

// Decode reads a topology and resolves its arcs.
func Decode(r io.Reader) (*Topology, error) {
	topo, err := fetcher.DecodeJSONObject[Topology](r)
	if err != nil {
		return nil, eris.Wrap(err, "topojson: decode")
	}
	if err := topo.resolve(); err != nil {
		return nil, err
	}
	return topo, nil
}

func (t *Topology) resolve() error {
	if t.Type != "Topology" {
		return eris.Errorf("topojson: expected type Topology, got %q", t.Type)
	}

	t.arcs = make([][]point, len(t.Arcs))
	for i, arc := range t.Arcs {
		decoded := make([]point, 0, len(arc))
		var x, y float64
		for j, pos := range arc {
			if len(pos) < 2 {
				return eris.Errorf("topojson: arc %d position %d has %d dimensions", i, j, len(pos))
			}
			if t.Transform == nil {
				decoded = append(decoded, point{pos[0], pos[1]})
				continue
			}
			x += pos[0]
			y += pos[1]
			decoded = append(decoded, t.transformPoint(x, y))
		}
		t.arcs[i] = decoded
	}

	for name, obj := range t.Objects {
		if obj == nil {
			return eris.Errorf("topojson: object %q is null", name)
		}
		if err := t.parseGeometry(obj); err != nil {
			return eris.Wrapf(err, "topojson: object %q", name)
		}
	}
	return nil
}

func (t *Topology) transformPoint(x, y float64) point {
	if t.Transform == nil {
		return point{x, y}
	}
	return point{
		x*t.Transform.Scale[0] + t.Transform.Translate[0],
		y*t.Transform.Scale[1] + t.Transform.Translate[1],
	}
}

func (t *Topology) parseGeometry(g *Geometry) error {
	var err error
	switch g.Type {
	case "GeometryCollection":
		for _, child := range g.Geometries {
			if child == nil {
				continue
			}
			if err := t.parseGeometry(child); err != nil {
				return err
			}
		}
		return nil
	case "Point":
		var c []float64
		if err = json.Unmarshal(g.Coordinates, &c); err == nil {
			g.coords = [][]float64{c}
		}
	case "MultiPoint":
		err = json.Unmarshal(g.Coordinates, &g.coords)
	case "LineString":
		if err = json.Unmarshal(g.RawArcs, &g.line); err == nil {
			err = t.checkArcs(g.line)
		}
	case "MultiLineString", "Polygon":
		if err = json.Unmarshal(g.RawArcs, &g.lines); err == nil {
			err = t.checkArcs(g.lines...)
		}
	case "MultiPolygon":
		if err = json.Unmarshal(g.RawArcs, &g.polygons); err == nil {
			for _, p := range g.polygons {
				if err = t.checkArcs(p...); err != nil {
					break
				}
			}
		}
	case "", "null":
		return nil
	default:
		return eris.Errorf("unsupported geometry type %q", g.Type)
	}
	if err != nil {
		return eris.Wrapf(err, "%s arcs", g.Type)
	}
	for _, c := range g.coords {
		if len(c) < 2 {
			return eris.Errorf("%s position has %d dimensions", g.Type, len(c))
		}
	}
	return nil
}

func (t *Topology) checkArcs(lines ...[]int) error {
	for _, arcs := range lines {
		for _, i := range arcs {
			j := arcIndex(i)
			if j < 0 || j >= len(t.arcs) {
				return eris.Errorf("arc index %d out of range [0, %d)", i, len(t.arcs))
			}
		}
	}
	return nil
}

// arcIndex maps a possibly reversed arc reference to its array index.
func arcIndex(i int) int {
	if i < 0 {
		return ^i
	}
	return i
}

// arc appends the points of arc i to points, dropping the shared first
// point when points already ends where the arc starts.
func (t *Topology) arc(i int, points []point) []point {
	if len(points) > 0 {
		points = points[:len(points)-1]
	}
	a := t.arcs[arcIndex(i)]
	if i >= 0 {
		return append(points, a...)
	}
	for k := len(a) - 1; k >= 0; k-- {
		points = append(points, a[k])
	}
	return points
}

func (t *Topology) line(arcs []int) []point {
	var points []point
	for _, i := range arcs {
		points = t.arc(i, points)
	}
	if len(points) == 1 {
		points = append(points, points[0])
	}
	return points
}

func (t *Topology) ring(arcs []int) []point {
	points := t.line(arcs)
	for len(points) > 0 && len(points) < 4 {
		points = append(points, points[0])
	}
	return points
}

// Object returns the named object.
func (t *Topology) Object(name string) (*Geometry, error) {
	obj, ok := t.Objects[name]
	if !ok {
		return nil, eris.Wrapf(ErrObjectNotFound, "topojson: %q", name)
	}
	return obj, nil
}

// NumericID returns the geometry id as an integer. String ids are parsed as
// base-10 numbers, so "01001" yields 1001.
func (g *Geometry) NumericID() (int, bool) {
	raw := strings.TrimSpace(string(g.ID))
	if raw == "" || raw == "null" {
		return 0, false
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(g.ID, &s); err != nil {
			return 0, false
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
