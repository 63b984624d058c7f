package run

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/referendum-map/models"
	"github.com/dtnitsch/referendum-map/pkg/manifest"
	"github.com/dtnitsch/referendum-map/pkg/pipeline"
	"github.com/dtnitsch/referendum-map/pkg/rundir"
	"github.com/dtnitsch/referendum-map/pkg/storage"
)

func TestWriteRunFiles(t *testing.T) {
	root := t.TempDir()
	store := storage.New(root)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	out := &pipeline.Output{
		Fingerprint:    "0123456789abcdef",
		ReferendumRows: 3,
		JoinedRows:     3,
		Results: []models.RegionResult{
			{CodeReg: "94", NameReg: "Corse", Registered: 100, ChoiceA: 50, ChoiceB: 50},
		},
	}
	mapped := []models.MapResult{{RegionResult: out.Results[0], Ratio: 0.5}}
	runName := rundir.Name(out.Fingerprint, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	mapFile := filepath.Join("out", runName, svgFile)

	files := writeRunFiles(store, "out", runName, out, mapped, 7, []string{mapFile}, time.Now(), logger)

	if len(files) != 2 || files[0] != mapFile {
		t.Fatalf("files = %v, want the map file then the summary", files)
	}

	data, err := os.ReadFile(filepath.Join(root, files[1]))
	if err != nil {
		t.Fatalf("summary not written: %v", err)
	}
	var summary manifest.RunSummary
	if err := yaml.Unmarshal(data, &summary); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if diff := cmp.Diff([]string{mapFile}, summary.Files); diff != "" {
		t.Errorf("summary files mismatch (-want +got):\n%s", diff)
	}
	if summary.RunID != 7 {
		t.Errorf("summary RunID = %d, want 7", summary.RunID)
	}

	index, err := rundir.ReadIndex(store, "out")
	if err != nil {
		t.Fatalf("ReadIndex() error = %v", err)
	}
	if len(index.Runs) != 1 {
		t.Fatalf("len(Runs) = %d, want 1", len(index.Runs))
	}
	if diff := cmp.Diff(files, index.Runs[0].Files); diff != "" {
		t.Errorf("index files mismatch (-want +got):\n%s", diff)
	}
	if !store.HasFile(filepath.Join("out", "FIELDS.yaml")) {
		t.Error("FIELDS.yaml not written")
	}
}
