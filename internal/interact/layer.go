// Package interact models the hover tooltip of the county map.
package interact

import (
	"math"

	"github.com/sells-group/edumap/internal/config"
	"github.com/sells-group/edumap/internal/join"
	"github.com/sells-group/edumap/internal/model"
)

// Tooltip defaults.
const (
	DefaultOffsetX = 10
	DefaultOffsetY = -28
	VisibleOpacity = 0.9
)

// Point is a pointer position on the drawing surface.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Tooltip is the state of the tooltip overlay.
type Tooltip struct {
	Visible bool    `json:"visible"`
	Opacity float64 `json:"opacity"`
	Text    string  `json:"text,omitempty"`
	Left    float64 `json:"left"`
	Top     float64 `json:"top"`
	FIPS    int     `json:"fips,omitempty"`
	// Education is the raw statistic of the hovered county.
	Education float64 `json:"education"`
}

// Entry is the precomputed tooltip content of one county.
type Entry struct {
	Text      string  `json:"text"`
	Education float64 `json:"education"`
}

// Options places the tooltip relative to the pointer.
type Options struct {
	OffsetX float64
	OffsetY float64
	// Clamp keeps the tooltip anchor inside a Width x Height surface.
	Clamp  bool
	Width  float64
	Height float64
}

// DefaultOptions offsets the tooltip 10 right of and 28 above the pointer.
func DefaultOptions() Options {
	return Options{OffsetX: DefaultOffsetX, OffsetY: DefaultOffsetY}
}

// OptionsFromConfig maps the tooltip and surface configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		OffsetX: cfg.Tooltip.OffsetX,
		OffsetY: cfg.Tooltip.OffsetY,
		Clamp:   cfg.Tooltip.Clamp,
		Width:   cfg.Map.Width,
		Height:  cfg.Map.Height,
	}
}

// Layer owns the single tooltip. The last event wins. It is not safe for
// concurrent use.
type Layer struct {
	idx     *join.Index
	opts    Options
	current Tooltip
}

// New creates a Layer with a hidden tooltip.
func New(idx *join.Index, opts Options) *Layer {
	return &Layer{idx: idx, opts: opts}
}

// PointerEnter shows the tooltip for the county under the pointer. When the
// county has no education record the tooltip is left as it is.
func (l *Layer) PointerEnter(fips int, at Point) Tooltip {
	rec, ok := l.idx.Lookup(fips)
	if !ok {
		return l.current
	}
	left, top := l.position(at)
	l.current = Tooltip{
		Visible:   true,
		Opacity:   VisibleOpacity,
		Text:      rec.Summary(),
		Left:      left,
		Top:       top,
		FIPS:      fips,
		Education: rec.BachelorsOrHigher,
	}
	return l.current
}

// PointerLeave hides the tooltip.
func (l *Layer) PointerLeave() Tooltip {
	l.current.Visible = false
	l.current.Opacity = 0
	return l.current
}

// Current returns the tooltip state.
func (l *Layer) Current() Tooltip {
	return l.current
}

// Entries returns the tooltip content for every indexed county, keyed by FIPS.
func (l *Layer) Entries() map[int]Entry {
	entries := make(map[int]Entry, l.idx.Len())
	l.idx.Each(func(rec model.EducationRecord) {
		entries[rec.FIPS] = Entry{Text: rec.Summary(), Education: rec.BachelorsOrHigher}
	})
	return entries
}

func (l *Layer) position(at Point) (float64, float64) {
	left := at.X + l.opts.OffsetX
	top := at.Y + l.opts.OffsetY
	if l.opts.Clamp {
		left = clamp(left, 0, l.opts.Width)
		top = clamp(top, 0, l.opts.Height)
	}
	return left, top
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
