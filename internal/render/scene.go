// Package render turns the county topology, the join index and the color
// scale into a retained scene, and encodes scenes as SVG, HTML or GeoJSON.
package render

import (
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/edumap/internal/colorscale"
	"github.com/sells-group/edumap/internal/config"
	"github.com/sells-group/edumap/internal/join"
	"github.com/sells-group/edumap/internal/metrics"
	"github.com/sells-group/edumap/internal/model"
	"github.com/sells-group/edumap/internal/topojson"
)

// Topology objects read by Build.
const (
	CountiesObject = "counties"
	StatesObject   = "states"
)

// Surface defaults.
const (
	DefaultWidth       = 960
	DefaultHeight      = 600
	DefaultMargin      = 20
	DefaultPrecision   = 3
	DefaultNeutralFill = "gray"
	DefaultStateStroke = "#fff"
)

// Margin reserves space around the drawing area.
type Margin struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// Options configures Build.
type Options struct {
	Width       float64
	Height      float64
	Margin      Margin
	Projection  string
	Precision   int
	NeutralFill string
	StateStroke string
	Legend      LegendOptions
	// Metrics is optional.
	Metrics *metrics.Metrics
}

// DefaultOptions returns the 960x600 surface with 20-unit margins.
func DefaultOptions() Options {
	return Options{
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		Margin:      Margin{Top: DefaultMargin, Right: DefaultMargin, Bottom: DefaultMargin, Left: DefaultMargin},
		Projection:  ProjectionIdentity,
		Precision:   DefaultPrecision,
		NeutralFill: DefaultNeutralFill,
		StateStroke: DefaultStateStroke,
		Legend:      LegendOptions{Swatches: DefaultSwatches, Width: DefaultLegendWidth, Height: DefaultLegendHeight},
	}
}

// OptionsFromConfig maps the map and legend configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Width:  cfg.Map.Width,
		Height: cfg.Map.Height,
		Margin: Margin{
			Top:    cfg.Map.Margin.Top,
			Right:  cfg.Map.Margin.Right,
			Bottom: cfg.Map.Margin.Bottom,
			Left:   cfg.Map.Margin.Left,
		},
		Projection:  cfg.Map.Projection,
		Precision:   cfg.Map.Precision,
		NeutralFill: cfg.Map.NeutralFill,
		StateStroke: cfg.Map.StateStroke,
		Legend: LegendOptions{
			Swatches: cfg.Legend.Swatches,
			Width:    cfg.Legend.Width,
			Height:   cfg.Legend.Height,
		},
	}
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.NeutralFill == "" {
		o.NeutralFill = DefaultNeutralFill
	}
	if o.StateStroke == "" {
		o.StateStroke = DefaultStateStroke
	}
	return o
}

// County is one rendered county shape.
type County struct {
	FIPS int `json:"fips"`
	// Matched reports whether an education record was found.
	Matched bool `json:"matched"`
	// Education is the raw statistic, or 0 when unmatched.
	Education float64               `json:"education"`
	Fill      string                `json:"fill"`
	Path      string                `json:"-"`
	Record    model.EducationRecord `json:"-"`
	// Geometry is the unprojected source geometry.
	Geometry geom.T `json:"-"`
}

// Scene is a fully computed drawing. Layers are drawn in order: counties,
// then the state mesh, then the legend.
type Scene struct {
	Width    float64
	Height   float64
	Margin   Margin
	Counties []County
	// StateMesh is the path of every interior state boundary.
	StateMesh   string
	StateStroke string
	// Legend is nil on an empty scene.
	Legend    *Legend
	DomainMin float64
	DomainMax float64
	Matched   int
	Unmatched int

	// byFIPS maps a county FIPS code to its first position in Counties.
	byFIPS map[int]int
}

// Empty returns a blank drawing area, shown when the datasets failed to load.
func Empty(opts Options) *Scene {
	opts = opts.withDefaults()
	return &Scene{
		Width:       opts.Width,
		Height:      opts.Height,
		Margin:      opts.Margin,
		StateStroke: opts.StateStroke,
	}
}

// Build computes the scene. Counties without an education record are filled
// with the neutral color and carry an education value of 0. A nil scale is
// built from every input value in idx.
func Build(topo *topojson.Topology, idx *join.Index, scale *colorscale.Scale, opts Options) (*Scene, error) {
	start := time.Now()
	opts = opts.withDefaults()
	if scale == nil {
		scale = colorscale.New(idx.Values(), nil)
	}

	features, err := topo.Features(CountiesObject)
	if err != nil {
		return nil, eris.Wrap(err, "render: counties")
	}

	bounds := geom.NewBounds(geom.XY)
	for _, f := range features {
		if f.Geometry != nil {
			bounds.Extend(f.Geometry)
		}
	}
	proj, err := NewProjection(opts.Projection, bounds, opts.Width, opts.Height, opts.Margin)
	if err != nil {
		return nil, err
	}

	scene := &Scene{
		Width:       opts.Width,
		Height:      opts.Height,
		Margin:      opts.Margin,
		Counties:    make([]County, 0, len(features)),
		StateStroke: opts.StateStroke,
		byFIPS:      make(map[int]int, len(features)),
	}
	scene.DomainMin, scene.DomainMax = scale.Domain()

	for _, f := range features {
		county := County{
			FIPS:     f.ID,
			Fill:     opts.NeutralFill,
			Path:     PathData(f.Geometry, proj, opts.Precision),
			Geometry: f.Geometry,
		}
		if rec, ok := idx.Lookup(f.ID); ok && f.HasID {
			county.Matched = true
			county.Education = rec.BachelorsOrHigher
			county.Fill = scale.Evaluate(rec.BachelorsOrHigher)
			county.Record = rec
			scene.Matched++
		} else {
			scene.Unmatched++
		}
		if _, dup := scene.byFIPS[f.ID]; f.HasID && !dup {
			scene.byFIPS[f.ID] = len(scene.Counties)
		}
		scene.Counties = append(scene.Counties, county)
	}

	mesh, err := topo.Mesh(StatesObject, topojson.Interior)
	switch {
	case errors.Is(err, topojson.ErrObjectNotFound):
		zap.L().Warn("render: topology has no states object, skipping state mesh")
	case err != nil:
		return nil, eris.Wrap(err, "render: state mesh")
	default:
		scene.StateMesh = PathData(mesh, proj, opts.Precision)
	}

	legend := BuildLegend(scale, opts.Legend)
	legend.X = opts.Width - opts.Margin.Right - legend.Width
	legend.Y = opts.Margin.Top - legendRaise
	scene.Legend = &legend

	if opts.Metrics != nil {
		opts.Metrics.RecordRender(len(scene.Counties), scene.Unmatched, time.Since(start))
	}
	zap.L().Debug("render: scene built",
		zap.Int("counties", len(scene.Counties)),
		zap.Int("matched", scene.Matched),
		zap.Int("unmatched", scene.Unmatched),
		zap.Duration("elapsed", time.Since(start)),
	)
	return scene, nil
}

// County returns the first rendered county with the given FIPS code.
// Features without a numeric id are never found.
func (s *Scene) County(fips int) (County, bool) {
	i, ok := s.byFIPS[fips]
	if !ok {
		return County{}, false
	}
	return s.Counties[i], true
}
