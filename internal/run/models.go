package run

import (
	"github.com/dtnitsch/referendum-map/models"
)

// RegionRow is one region of the command output. Ratio is omitted for
// regions that have no outline.
type RegionRow struct {
	models.RegionResult `yaml:",inline"`
	Ratio *float64 `json:"ratio,omitempty" yaml:"ratio,omitempty"`
}

// FinalOutput is the structured output for the entire run.
type FinalOutput struct {
	Status      string                `json:"status" yaml:"status"`
	RunID       int64                 `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Fingerprint string                `json:"fingerprint" yaml:"fingerprint"`
	CacheHit    bool                  `json:"cache_hit" yaml:"cache_hit"`
	Results     interface{}           `json:"results" yaml:"results"`
	Excluded    []models.ExcludedCode `json:"excluded_codes,omitempty" yaml:"excluded_codes,omitempty"`
	Files       []string              `json:"files,omitempty" yaml:"files,omitempty"`
	Stats       Stats                 `json:"stats" yaml:"stats"`
}

// Stats provides summary statistics for the run.
type Stats struct {
	ReferendumRows   int      `json:"referendum_rows" yaml:"referendum_rows"`
	DroppedRows      int      `json:"dropped_rows" yaml:"dropped_rows"`
	JoinedRows       int      `json:"joined_rows" yaml:"joined_rows"`
	ExcludedRows     int      `json:"excluded_rows" yaml:"excluded_rows"`
	Regions          int      `json:"regions" yaml:"regions"`
	Mapped           int      `json:"mapped" yaml:"mapped"`
	TotalTimeSeconds float64  `json:"total_time_seconds" yaml:"total_time_seconds"`
	TopRegions       []string `json:"top_regions,omitempty" yaml:"top_regions,omitempty"`
}
