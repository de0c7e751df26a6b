package render

import (
	"html"
	"io"
	"strconv"

	svg "github.com/ajstarks/svgo/float"

	"github.com/sells-group/edumap/internal/model"
)

// Layer ids in draw order.
const (
	LayerCounties = "counties"
	LayerStates   = "states"
	LayerLegend   = "legend"
)

// WriteSVG encodes the scene as a standalone SVG document.
func WriteSVG(w io.Writer, s *Scene) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(s.Width, s.Height, attr("id", "map"))
	writeLayers(canvas, s)
	canvas.End()
	return ew.err
}

func writeLayers(canvas *svg.SVG, s *Scene) {
	canvas.Group(attr("id", LayerCounties))
	for _, c := range s.Counties {
		canvas.Path(c.Path,
			attr("class", "county"),
			attr("data-fips", strconv.Itoa(c.FIPS)),
			attr("data-education", model.FormatPercent(c.Education)),
			attr("fill", c.Fill),
		)
	}
	canvas.Gend()

	if s.StateMesh != "" {
		canvas.Path(s.StateMesh,
			attr("id", LayerStates),
			attr("class", "state"),
			attr("fill", "none"),
			attr("stroke", s.StateStroke),
			attr("stroke-linejoin", "round"),
		)
	}

	if s.Legend == nil {
		return
	}
	l := s.Legend
	canvas.Group(attr("id", LayerLegend), attr("transform", translate(l.X, l.Y)))
	for _, sw := range l.Swatches {
		canvas.Rect(sw.X, 0, sw.Width, l.Height, attr("class", "swatch"), attr("fill", sw.Fill))
	}
	for _, sw := range l.Swatches {
		canvas.Text(sw.X, l.LabelY, sw.Label, attr("class", "legend-label"), attr("font-size", l.FontSize))
	}
	canvas.Gend()
}

// attr formats an escaped XML attribute for svgo's variadic style arguments.
func attr(name, value string) string {
	return name + `="` + html.EscapeString(value) + `"`
}

func translate(x, y float64) string {
	return "translate(" + strconv.FormatFloat(x, 'f', -1, 64) + "," + strconv.FormatFloat(y, 'f', -1, 64) + ")"
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
