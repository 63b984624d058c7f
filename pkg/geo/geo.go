// Package geo loads region outlines from GeoJSON.
package geo

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"

	"github.com/dtnitsch/referendum-map/models"
)

// Shape is the outline of one region.
type Shape struct {
	Code     string
	Name     string
	Geometry geom.T
}

// LoadShapes parses a FeatureCollection. Every feature must carry codeProp;
// nameProp is optional.
func LoadShapes(data []byte, codeProp, nameProp string) ([]Shape, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse geometry: %w", err)
	}

	shapes := make([]Shape, 0, len(fc.Features))
	seen := make(map[string]struct{}, len(fc.Features))
	for i, f := range fc.Features {
		code, ok := propertyString(f.Properties, codeProp)
		if !ok || code == "" {
			return nil, fmt.Errorf("geometry feature %d: missing property %q: %w", i, codeProp, models.ErrSchemaMismatch)
		}
		if _, dup := seen[code]; dup {
			return nil, fmt.Errorf("geometry feature %d: code %q: %w", i, code, models.ErrDuplicateKey)
		}
		seen[code] = struct{}{}
		if f.Geometry == nil {
			return nil, fmt.Errorf("geometry feature %d (%s): no geometry", i, code)
		}
		name, _ := propertyString(f.Properties, nameProp)
		shapes = append(shapes, Shape{Code: code, Name: name, Geometry: f.Geometry})
	}
	return shapes, nil
}

// propertyString reads a string or numeric property as text.
func propertyString(props map[string]interface{}, key string) (string, bool) {
	v, ok := props[key]
	if !ok || v == nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	default:
		return fmt.Sprint(val), true
	}
}

// Bounds returns the extent of all shapes.
func Bounds(geoms ...geom.T) *geom.Bounds {
	b := geom.NewBounds(geom.XY)
	for _, g := range geoms {
		if g != nil {
			b.Extend(g)
		}
	}
	return b
}

// Centroid returns a label anchor for g.
func Centroid(g geom.T) (geom.Coord, error) {
	c, err := xy.Centroid(g)
	if err != nil {
		return nil, fmt.Errorf("failed to compute centroid: %w", err)
	}
	return c, nil
}
