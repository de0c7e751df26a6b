package main

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/edumap/internal/interact"
	"github.com/sells-group/edumap/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the map once and write it to a file",
	Long:  "Loads both datasets, renders the choropleth and writes it as a standalone SVG, an interactive HTML page or GeoJSON. Nothing is written when loading fails.",
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringP("output", "o", "", "output file (default map.<format>)")
	renderCmd.Flags().String("format", "svg", "output format: svg, html or geojson")
	renderCmd.Flags().String("summary", "", "write a YAML render summary to this file")
	rootCmd.AddCommand(renderCmd)
}

// renderSummary describes one render run.
type renderSummary struct {
	RenderID   string    `yaml:"render_id"`
	RenderedAt time.Time `yaml:"rendered_at"`
	Format     string    `yaml:"format"`
	Output     string    `yaml:"output"`
	Sources    struct {
		Topology  string `yaml:"topology"`
		Education string `yaml:"education"`
	} `yaml:"sources"`
	Records    int `yaml:"records"`
	Duplicates int `yaml:"duplicates"`
	Counties   int `yaml:"counties"`
	Matched    int `yaml:"matched"`
	Unmatched  int `yaml:"unmatched"`
	Domain     struct {
		Min float64 `yaml:"min"`
		Max float64 `yaml:"max"`
	} `yaml:"domain"`
	Legend []render.Swatch `yaml:"legend"`
}

func runRender(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	summaryPath, _ := cmd.Flags().GetString("summary")

	encode, err := encoderFor(format)
	if err != nil {
		return err
	}
	if output == "" {
		output = "map." + format
	}

	env, err := initMap(cmd.Context(), nil)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := encode(&buf, env); err != nil {
		return err
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil { //nolint:gosec // rendered maps are public
		return eris.Wrapf(err, "render: write %s", output)
	}

	runID := uuid.New().String()
	if summaryPath != "" {
		if err := writeSummary(summaryPath, buildSummary(runID, format, output, env)); err != nil {
			return err
		}
	}

	zap.L().Info("render complete",
		zap.String("render_id", runID),
		zap.String("format", format),
		zap.String("output", output),
		zap.Int("bytes", buf.Len()),
	)
	p := message.NewPrinter(language.English)
	p.Fprintf(cmd.OutOrStdout(), "Rendered %d counties (%d matched, %d unmatched) to %s (%d bytes)\n",
		len(env.Scene.Counties), env.Scene.Matched, env.Scene.Unmatched, output, buf.Len())
	return nil
}

type encoder func(w io.Writer, env *mapEnv) error

func encoderFor(format string) (encoder, error) {
	switch format {
	case "svg":
		return func(w io.Writer, env *mapEnv) error {
			return render.WriteSVG(w, env.Scene)
		}, nil
	case "html":
		return func(w io.Writer, env *mapEnv) error {
			opts := pageOptions()
			entries := interact.New(env.Index, opts.Tooltip).Entries()
			return render.WritePage(w, env.Scene, entries, opts)
		}, nil
	case "geojson":
		return func(w io.Writer, env *mapEnv) error {
			return render.WriteGeoJSON(w, env.Scene)
		}, nil
	default:
		return nil, eris.Errorf("render: unknown format %q (want svg, html or geojson)", format)
	}
}

func buildSummary(runID, format, output string, env *mapEnv) renderSummary {
	s := renderSummary{
		RenderID:   runID,
		RenderedAt: time.Now().UTC(),
		Format:     format,
		Output:     output,
		Records:    len(env.Datasets.Education),
		Duplicates: env.Index.Duplicates(),
		Counties:   len(env.Scene.Counties),
		Matched:    env.Scene.Matched,
		Unmatched:  env.Scene.Unmatched,
	}
	s.Sources.Topology = cfg.Data.TopologyURL
	s.Sources.Education = cfg.Data.EducationURL
	s.Domain.Min, s.Domain.Max = env.Scale.Domain()
	if env.Scene.Legend != nil {
		s.Legend = env.Scene.Legend.Swatches
	}
	return s
}

func writeSummary(path string, s renderSummary) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return eris.Wrap(err, "render: marshal summary")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // summary is not sensitive
		return eris.Wrapf(err, "render: write summary %s", path)
	}
	return nil
}
