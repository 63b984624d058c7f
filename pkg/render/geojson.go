package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/dtnitsch/referendum-map/models"
)

// WriteGeoJSON writes the joined results as a FeatureCollection whose
// properties carry the counts and the ratio.
func WriteGeoJSON(w io.Writer, results []models.MapResult) error {
	fc := geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(results)),
	}
	for _, r := range results {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       r.CodeReg,
			Geometry: r.Geometry,
			Properties: map[string]interface{}{
				"code":        r.CodeReg,
				"name":        r.NameReg,
				"registered":  r.Registered,
				"abstentions": r.Abstentions,
				"null":        r.Null,
				"choice_a":    r.ChoiceA,
				"choice_b":    r.ChoiceB,
				"ratio":       r.Ratio,
			},
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&fc); err != nil {
		return fmt.Errorf("failed to encode geojson: %w", err)
	}
	return nil
}
