package manifest

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/referendum-map/models"
	"github.com/dtnitsch/referendum-map/pkg/pipeline"
	"github.com/dtnitsch/referendum-map/pkg/storage"
)

func testOutput() *pipeline.Output {
	return &pipeline.Output{
		Fingerprint:    "f00d",
		ReferendumRows: 8,
		JoinedRows:     6,
		Excluded: []models.ExcludedCode{
			{Code: "ZA", Name: "GUADELOUPE", Rows: 1},
			{Code: "ZZ", Name: "FRANCAIS DE L'ETRANGER", Rows: 1},
		},
		Results: []models.RegionResult{
			{CodeReg: "28", NameReg: "Normandie", Registered: 100, ChoiceA: 30, ChoiceB: 70},
			{CodeReg: "84", NameReg: "Auvergne-Rhône-Alpes", Registered: 200, ChoiceA: 60, ChoiceB: 40},
		},
	}
}

func TestBuild(t *testing.T) {
	out := testOutput()
	mapped := []models.MapResult{{RegionResult: out.Results[0], Ratio: 0.3}}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s := Build(out, mapped, 7, now)

	if s.RunID != 7 {
		t.Errorf("RunID = %d, want 7", s.RunID)
	}
	if s.ExcludedRows != 2 {
		t.Errorf("ExcludedRows = %d, want 2", s.ExcludedRows)
	}
	if s.Totals.Registered != 300 || s.Totals.ChoiceA != 90 {
		t.Errorf("Totals = %+v", s.Totals)
	}
	if len(s.TopRegions) != 2 || s.TopRegions[0] != "Auvergne-Rhône-Alpes:60.00%" {
		t.Errorf("TopRegions = %v", s.TopRegions)
	}
	if len(s.Regions) != 2 {
		t.Fatalf("len(Regions) = %d, want 2", len(s.Regions))
	}
	if s.Regions[0].Ratio == nil || *s.Regions[0].Ratio != 0.3 {
		t.Errorf("Regions[0].Ratio = %v, want 0.3", s.Regions[0].Ratio)
	}
	if s.Regions[1].Ratio != nil {
		t.Errorf("Regions[1].Ratio = %v, want nil for a region without outline", *s.Regions[1].Ratio)
	}
	if got := s.FileName(); got != "summary-2026-03-01.yaml" {
		t.Errorf("FileName() = %q", got)
	}
}

func TestSave(t *testing.T) {
	store := storage.New(t.TempDir())
	s := Build(testOutput(), nil, 0, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	p, err := Save(s, store, "run-1")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := store.ReadFile(p)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", p, err)
	}
	var back map[string]interface{}
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("summary is not valid YAML: %v", err)
	}
	if back["fingerprint"] != "f00d" {
		t.Errorf("fingerprint = %v", back["fingerprint"])
	}
	if _, ok := back["run_id"]; ok {
		t.Error("run_id written for an unrecorded run")
	}
	regions, ok := back["regions"].([]interface{})
	if !ok || len(regions) != 2 {
		t.Fatalf("regions = %v", back["regions"])
	}
	first := regions[0].(map[string]interface{})
	if first["code_reg"] != "28" {
		t.Errorf("regions[0].code_reg = %v, want inlined 28", first["code_reg"])
	}
}
