package render

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// WriteGeoJSON encodes the scene's counties as a GeoJSON FeatureCollection in
// source coordinates. Each feature carries its fips, education value and fill;
// matched counties also carry the area name and state.
func WriteGeoJSON(w io.Writer, s *Scene) error {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(s.Counties))}
	for _, c := range s.Counties {
		props := map[string]any{
			"fips":      c.FIPS,
			"education": c.Education,
			"fill":      c.Fill,
			"matched":   c.Matched,
		}
		if c.Matched {
			props["area_name"] = c.Record.AreaName
			props["state"] = c.Record.State
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         strconv.Itoa(c.FIPS),
			Geometry:   c.Geometry,
			Properties: props,
		})
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrap(err, "render: encode geojson")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "render: write geojson")
	}
	return nil
}
