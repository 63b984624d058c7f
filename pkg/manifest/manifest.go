package manifest

import "github.com/dtnitsch/referendum-map/models"

// RunSummary is the YAML overview written next to the map outputs of a run.
// It lets a reader check the counts and the excluded codes without opening
// the database or the geometry files.
type RunSummary struct {
	GeneratedAt     string                `yaml:"generated_at"`
	RunID           int64                 `yaml:"run_id,omitempty"`
	Fingerprint     string                `yaml:"fingerprint"`
	RatioDefinition string                `yaml:"ratio_definition"`
	ReferendumRows  int                   `yaml:"referendum_rows"`
	DroppedRows     int                   `yaml:"dropped_rows,omitempty"`
	JoinedRows      int                   `yaml:"joined_rows"`
	ExcludedRows    int                   `yaml:"excluded_rows"`
	Excluded        []models.ExcludedCode `yaml:"excluded_codes,omitempty"`
	Totals          models.RegionResult   `yaml:"totals"`
	TopRegions      []string              `yaml:"top_regions"`
	Regions         []RegionSummary       `yaml:"regions"`
	Files           []string              `yaml:"files,omitempty"`
}

// RegionSummary is one aggregated region. Ratio is nil when the region has
// no outline and therefore is not drawn.
type RegionSummary struct {
	models.RegionResult `yaml:",inline"`
	Ratio               *float64 `yaml:"ratio,omitempty"`
}
