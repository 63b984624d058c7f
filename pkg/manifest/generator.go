package manifest

import (
	"fmt"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/referendum-map/models"
	"github.com/dtnitsch/referendum-map/pkg/mapreduce"
	"github.com/dtnitsch/referendum-map/pkg/pipeline"
	"github.com/dtnitsch/referendum-map/pkg/storage"
)

// topRegionCount is how many regions the summary ranks.
const topRegionCount = 5

// Build assembles the summary of a run. mapped carries the ratios of the
// regions that were joined with an outline.
func Build(out *pipeline.Output, mapped []models.MapResult, runID int64, now time.Time) *RunSummary {
	ratios := make(map[string]float64, len(mapped))
	for _, m := range mapped {
		ratios[m.CodeReg] = m.Ratio
	}

	summary := &RunSummary{
		GeneratedAt:     now.Format(time.RFC3339),
		RunID:           runID,
		Fingerprint:     out.Fingerprint,
		RatioDefinition: models.RatioDefinition,
		ReferendumRows:  out.ReferendumRows,
		DroppedRows:     out.DroppedRows,
		JoinedRows:      out.JoinedRows,
		ExcludedRows:    out.ExcludedRows(),
		Excluded:        out.Excluded,
		Totals:          mapreduce.Totals(out.Results),
		TopRegions:      mapreduce.TopRegions(out.Results, topRegionCount),
		Regions:         make([]RegionSummary, 0, len(out.Results)),
	}

	for _, r := range out.Results {
		rs := RegionSummary{RegionResult: r}
		if ratio, ok := ratios[r.CodeReg]; ok {
			rs.Ratio = &ratio
		}
		summary.Regions = append(summary.Regions, rs)
	}
	return summary
}

// FileName returns the summary file name for the date of GeneratedAt.
func (s *RunSummary) FileName() string {
	date := time.Now().Format("2006-01-02")
	if t, err := time.Parse(time.RFC3339, s.GeneratedAt); err == nil {
		date = t.Format("2006-01-02")
	}
	return fmt.Sprintf("summary-%s.yaml", date)
}

// Save writes the summary under dir and returns the path of the file.
func Save(s *RunSummary, store *storage.Storage, dir string) (string, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("error marshalling summary: %w", err)
	}

	summaryPath := filepath.Join(dir, s.FileName())
	if err := store.SaveFile(summaryPath, data); err != nil {
		return "", fmt.Errorf("error saving summary: %w", err)
	}
	return summaryPath, nil
}
