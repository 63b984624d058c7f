// Package rundir names the per-run output directories and keeps the index.yaml
// listing them at the root of the output directory.
package rundir

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/referendum-map/pkg/storage"
)

// RunInfo is one entry of index.yaml.
type RunInfo struct {
	Name        string    `yaml:"name"`
	RunID       int64     `yaml:"run_id,omitempty"`
	Created     time.Time `yaml:"created"`
	Fingerprint string    `yaml:"fingerprint"`
	Regions     int       `yaml:"regions"`
	Excluded    int       `yaml:"excluded_rows"`
	Files       []string  `yaml:"files,omitempty"`
}

// Index represents the index.yaml file.
type Index struct {
	Runs []RunInfo `yaml:"runs"`
}

// Name creates a timestamp-first directory name for a run over the inputs
// identified by fingerprint. Format: YYYY-MM-DDTHH-MM-SS-{12 hex chars}.
func Name(fingerprint string, now time.Time) string {
	short := fingerprint
	if len(short) > 12 {
		short = short[:12]
	}
	return fmt.Sprintf("%s-%s", now.Format("2006-01-02T15-04-05"), short)
}

// Dir returns the full path to a run directory.
func Dir(baseDir, name string) string {
	return filepath.Join(baseDir, name)
}

// IndexPath returns the path to the index file.
func IndexPath(baseDir string) string {
	return filepath.Join(baseDir, "index.yaml")
}

// ReadIndex loads index.yaml. A missing file is an empty index.
func ReadIndex(store *storage.Storage, baseDir string) (*Index, error) {
	var index Index
	if !store.HasFile(IndexPath(baseDir)) {
		return &index, nil
	}
	data, err := store.ReadFile(IndexPath(baseDir))
	if err != nil {
		return nil, fmt.Errorf("failed to read run index: %w", err)
	}
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse run index: %w", err)
	}
	return &index, nil
}

// UpdateIndex adds or replaces the entry for info.Name, newest first.
func UpdateIndex(store *storage.Storage, baseDir string, info RunInfo) error {
	index, err := ReadIndex(store, baseDir)
	if err != nil {
		return err
	}

	found := false
	for i, r := range index.Runs {
		if r.Name == info.Name {
			index.Runs[i] = info
			found = true
			break
		}
	}
	if !found {
		index.Runs = append(index.Runs, info)
	}

	// Timestamp-first names sort chronologically.
	sort.Slice(index.Runs, func(i, j int) bool {
		return index.Runs[i].Name > index.Runs[j].Name
	})

	output, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal run index: %w", err)
	}
	if err := store.SaveFile(IndexPath(baseDir), output); err != nil {
		return fmt.Errorf("failed to write run index: %w", err)
	}
	return nil
}

// GenerateFieldsReference writes FIELDS.yaml describing the output files,
// unless it already exists.
func GenerateFieldsReference(store *storage.Storage, baseDir string) error {
	fieldsPath := filepath.Join(baseDir, "FIELDS.yaml")
	if store.HasFile(fieldsPath) {
		return nil
	}

	content := `# Output Fields Reference

regions:
  code_reg: string (region code)
  name_reg: string (region name)
  registered: int (registered voters)
  abstentions: int
  null: int (null ballots)
  choice_a: int (ballots for choice A)
  choice_b: int (ballots for choice B)
  ratio: float (choice_a / (choice_a + choice_b), absent when the region has no outline)

summary:
  fingerprint: string (sha256 over the three input tables)
  referendum_rows: int (rows read)
  dropped_rows: int (rows skipped as incomplete)
  joined_rows: int (rows matched to a department)
  excluded_rows: int (rows whose department code is unknown)
  excluded_codes: [code, name, rows]
  top_regions: ["name:ratio%"]

files:
  referendum_map.svg: choropleth of ratio per region
  referendum_map.geojson: region outlines with the fields above as properties
  summary-YYYY-MM-DD.yaml: counts, excluded codes and ranking

query_examples:
  - desc: Regions where choice A won
    yq: '.regions[] | select(.ratio > 0.5)'

  - desc: Department codes left out of the map
    yq: '.excluded_codes[].code'
`

	if err := store.SaveFile(fieldsPath, []byte(content)); err != nil {
		return fmt.Errorf("failed to write FIELDS.yaml: %w", err)
	}
	return nil
}
