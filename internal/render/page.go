package render

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/edumap/internal/interact"
)

//go:embed templates/page.html.tmpl
var pageFS embed.FS

var pageTemplate = template.Must(template.ParseFS(pageFS, "templates/page.html.tmpl"))

// DefaultTitle is the page title used when PageOptions.Title is empty.
const DefaultTitle = "US Educational Attainment"

// PageOptions configures the interactive page.
type PageOptions struct {
	Title   string
	Tooltip interact.Options
}

type pageData struct {
	Title    string
	Width    float64
	Height   float64
	SVG      template.HTML
	Tooltips map[int]interact.Entry
	OffsetX  float64
	OffsetY  float64
	Clamp    bool
}

// WritePage encodes the scene as an HTML page with the SVG inline, a hidden
// tooltip element and the hover script. entries supplies tooltip content by
// FIPS code; counties without an entry never show the tooltip.
func WritePage(w io.Writer, s *Scene, entries map[int]interact.Entry, opts PageOptions) error {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, s); err != nil {
		return eris.Wrap(err, "render: page svg")
	}
	// Drop the XML prolog; the SVG is embedded in HTML.
	doc := buf.Bytes()
	if i := bytes.Index(doc, []byte("<svg")); i > 0 {
		doc = doc[i:]
	}

	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if entries == nil {
		entries = map[int]interact.Entry{}
	}
	data := pageData{
		Title:    opts.Title,
		Width:    s.Width,
		Height:   s.Height,
		SVG:      template.HTML(doc), //nolint:gosec // generated by WriteSVG with escaped attributes
		Tooltips: entries,
		OffsetX:  opts.Tooltip.OffsetX,
		OffsetY:  opts.Tooltip.OffsetY,
		Clamp:    opts.Tooltip.Clamp,
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return eris.Wrap(err, "render: execute page template")
	}
	return nil
}
