package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/twpayne/go-geom"

	"github.com/dtnitsch/referendum-map/models"
	"github.com/dtnitsch/referendum-map/pkg/geo"
)

func square(x, y, size float64) geom.T {
	return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
		{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y},
	}})
}

var (
	testResults = []models.RegionResult{
		{CodeReg: "11", NameReg: "Île-de-France", Registered: 1000000, ChoiceA: 400000, ChoiceB: 340000},
		{CodeReg: "28", NameReg: "Normandie", Registered: 800, ChoiceA: 300, ChoiceB: 340},
		{CodeReg: "84", NameReg: "Auvergne-Rhône-Alpes", Registered: 807, ChoiceA: 282, ChoiceB: 384},
	}
	testShapes = []geo.Shape{
		{Code: "28", Name: "Normandie", Geometry: square(-1.5, 48.5, 1.5)},
		{Code: "11", Name: "Île-de-France", Geometry: square(2, 48.5, 1)},
		{Code: "94", Name: "Corse", Geometry: square(8.5, 41.4, 1)},
	}
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name    string
		result  models.RegionResult
		want    float64
		wantErr bool
	}{
		{name: "normal", result: models.RegionResult{ChoiceA: 300, ChoiceB: 340}, want: 0.46875},
		{name: "all A", result: models.RegionResult{ChoiceA: 5}, want: 1},
		{name: "all B", result: models.RegionResult{ChoiceB: 5}, want: 0},
		{name: "nothing expressed", result: models.RegionResult{CodeReg: "99", Registered: 10}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Ratio(tt.result)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Ratio() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var compErr *ComputationError
				if !errors.As(err, &compErr) || !errors.Is(err, models.ErrComputation) {
					t.Errorf("Ratio() error = %v, want *ComputationError", err)
				}
				return
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Ratio() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	got, err := Join(testResults, testShapes)
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("len(Join()) = %d, want 2", len(got))
	}
	if got[0].CodeReg != "11" || got[1].CodeReg != "28" {
		t.Errorf("Join() order = %s, %s; want 11, 28", got[0].CodeReg, got[1].CodeReg)
	}
	for _, r := range got {
		if r.Ratio < 0 || r.Ratio > 1 {
			t.Errorf("%s ratio %v out of [0, 1]", r.CodeReg, r.Ratio)
		}
		if r.Geometry == nil {
			t.Errorf("%s has no geometry", r.CodeReg)
		}
	}
	if math.Abs(got[1].Ratio-0.46875) > 1e-12 {
		t.Errorf("Normandie ratio = %v, want 0.46875", got[1].Ratio)
	}
}

func TestJoin_ZeroDenominator(t *testing.T) {
	results := []models.RegionResult{{CodeReg: "28", NameReg: "Normandie", Registered: 10}}

	_, err := Join(results, testShapes)
	if !errors.Is(err, models.ErrComputation) {
		t.Errorf("Join() error = %v, want ErrComputation", err)
	}
}

func TestJoin_UnmatchedZeroRegionIgnored(t *testing.T) {
	results := []models.RegionResult{
		{CodeReg: "28", NameReg: "Normandie", ChoiceA: 1, ChoiceB: 1},
		{CodeReg: "99", NameReg: "No shape"},
	}

	got, err := Join(results, testShapes)
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len(Join()) = %d, want 1", len(got))
	}
}

func TestWriteSVG(t *testing.T) {
	mapped, err := Join(testResults, testShapes)
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	before := make([]float64, len(mapped))
	for i, r := range mapped {
		before[i] = r.Ratio
	}

	var buf bytes.Buffer
	if err := WriteSVG(&buf, mapped, DefaultSVGOptions()); err != nil {
		t.Fatalf("WriteSVG() error = %v", err)
	}
	svg := buf.String()

	for _, want := range []string{`<svg xmlns="http://www.w3.org/2000/svg"`, `id="region-11"`, `id="region-28"`, "Normandie: 46.88%", "</svg>"} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if strings.Contains(svg, `id="region-94"`) {
		t.Error("svg draws a region without results")
	}
	for i, r := range mapped {
		if r.Ratio != before[i] {
			t.Errorf("WriteSVG() changed ratio of %s", r.CodeReg)
		}
	}
}

func TestWriteSVG_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, nil, DefaultSVGOptions()); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("WriteSVG(nil) error = %v, want ErrNoGeometry", err)
	}
}

func TestColor(t *testing.T) {
	opts := DefaultSVGOptions()
	if got := opts.Color(0); got != "#eff3ff" {
		t.Errorf("Color(0) = %s, want #eff3ff", got)
	}
	if got := opts.Color(1); got != "#08306b" {
		t.Errorf("Color(1) = %s, want #08306b", got)
	}
	if opts.Color(2) != opts.Color(1) || opts.Color(-1) != opts.Color(0) {
		t.Error("Color() does not clamp")
	}
}

func TestWriteGeoJSON(t *testing.T) {
	mapped, err := Join(testResults, testShapes)
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}

	var buf bytes.Buffer
	if err := WriteGeoJSON(&buf, mapped); err != nil {
		t.Fatalf("WriteGeoJSON() error = %v", err)
	}

	shapes, err := geo.LoadShapes(buf.Bytes(), "code", "name")
	if err != nil {
		t.Fatalf("LoadShapes() on output error = %v", err)
	}
	if len(shapes) != 2 || shapes[1].Name != "Normandie" {
		t.Errorf("round trip shapes = %+v", shapes)
	}

	var raw struct {
		Features []struct {
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if ratio, ok := raw.Features[1].Properties["ratio"].(float64); !ok || math.Abs(ratio-0.46875) > 1e-12 {
		t.Errorf("ratio property = %v", raw.Features[1].Properties["ratio"])
	}
}
