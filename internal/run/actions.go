package run

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/referendum-map/internal/common"
	"github.com/dtnitsch/referendum-map/models"
	"github.com/dtnitsch/referendum-map/pkg/caching"
	"github.com/dtnitsch/referendum-map/pkg/db"
	"github.com/dtnitsch/referendum-map/pkg/geo"
	"github.com/dtnitsch/referendum-map/pkg/loader"
	"github.com/dtnitsch/referendum-map/pkg/manifest"
	"github.com/dtnitsch/referendum-map/pkg/mapreduce"
	"github.com/dtnitsch/referendum-map/pkg/pipeline"
	"github.com/dtnitsch/referendum-map/pkg/render"
	"github.com/dtnitsch/referendum-map/pkg/rundir"
	"github.com/dtnitsch/referendum-map/pkg/storage"
)

const (
	svgFile     = "referendum_map.svg"
	geojsonFile = "referendum_map.geojson"
)

func RunAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	startTime := time.Now()

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var maxAge time.Duration
	if c.String("max-age") != "" {
		maxAge, err = time.ParseDuration(c.String("max-age"))
		if err != nil {
			return fmt.Errorf("invalid max-age duration: %w", err)
		}
	}
	cacheDir := c.String("cache-dir")
	if c.Bool("no-cache") {
		cacheDir = ""
	}

	store := storage.New("")
	l := loader.New(store, cfg, logger)

	out, cacheHit, err := computeOutput(c.Context, l, cfg, cacheDir, maxAge, logger)
	if err != nil {
		return err
	}

	runUUID := uuid.NewString()
	runName := rundir.Name(out.Fingerprint, startTime)
	runDir := rundir.Dir(cfg.OutputDir, runName)

	var mapped []models.MapResult
	var files []string
	if !c.Bool("no-map") {
		mapped, err = joinGeometry(store, cfg, out.Results, logger)
		if err != nil {
			return err
		}
		opts := render.DefaultSVGOptions()
		if c.IsSet("title") {
			opts.Title = c.String("title")
		}
		if c.IsSet("width") {
			opts.Width = c.Int("width")
		}
		opts.Labels = !c.Bool("no-labels")

		files, err = writeMaps(store, runDir, mapped, opts, logger)
		if err != nil {
			return err
		}
	}

	var runID int64
	if !c.Bool("no-db") {
		runID, err = recordRun(cfg.DBPath, runUUID, runDir, out, mapped, logger)
		if err != nil {
			return err
		}
	}

	files = writeRunFiles(store, cfg.OutputDir, runName, out, mapped, runID, files, startTime, logger)

	finalOutput := &FinalOutput{
		Status:      "success",
		RunID:       runID,
		Fingerprint: out.Fingerprint,
		CacheHit:    cacheHit,
		Excluded:    out.Excluded,
		Files:       files,
		Stats: Stats{
			ReferendumRows:   out.ReferendumRows,
			DroppedRows:      out.DroppedRows,
			JoinedRows:       out.JoinedRows,
			ExcludedRows:     out.ExcludedRows(),
			Regions:          len(out.Results),
			Mapped:           len(mapped),
			TotalTimeSeconds: time.Since(startTime).Seconds(),
			TopRegions:       mapreduce.TopRegions(out.Results, 5),
		},
	}

	rows := BuildRows(out.Results, mapped)
	return WriteOutput(os.Stdout, c.String("format"), finalOutput, rows, common.ParseFields(c.String("fields")))
}

// computeKey lists the settings that change what a run computes from the
// same input bytes.
type computeKey struct {
	Encoding       string             `yaml:"encoding"`
	Referendum     models.TableConfig `yaml:"referendum"`
	Regions        models.TableConfig `yaml:"regions"`
	Departments    models.TableConfig `yaml:"departments"`
	DropIncomplete bool               `yaml:"drop_incomplete"`
}

// computeOutput runs the pipeline, reusing a cached output for inputs and
// settings already seen. An empty cacheDir disables the cache.
func computeOutput(ctx context.Context, l *loader.Loader, cfg *models.Config, cacheDir string, maxAge time.Duration, logger *slog.Logger) (*pipeline.Output, bool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheDir == "" {
		out, err := pipeline.Run(ctx, l, logger)
		return out, false, err
	}

	tables, err := l.LoadAll()
	if err != nil {
		return nil, false, err
	}

	cache, err := caching.NewCache(cacheDir, maxAge)
	if err != nil {
		return nil, false, err
	}
	settings, err := yaml.Marshal(computeKey{
		Encoding:       cfg.Encoding,
		Referendum:     cfg.Referendum,
		Regions:        cfg.Regions,
		Departments:    cfg.Departments,
		DropIncomplete: cfg.DropIncomplete,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode cache key: %w", err)
	}
	key := caching.Key(tables.Fingerprint, string(settings))

	if data, ok := cache.Get(key); ok {
		var out pipeline.Output
		err := json.Unmarshal(data, &out)
		if err == nil {
			logger.Info("Cache hit", "fingerprint", tables.Fingerprint, "regions", len(out.Results))
			return &out, true, nil
		}
		logger.Warn("Ignoring unreadable cache entry", "key", key, "error", err)
	}

	out, err := pipeline.Compute(ctx, tables, logger)
	if err != nil {
		return nil, false, err
	}
	data, err := json.Marshal(out)
	if err == nil {
		err = cache.Set(key, data)
	}
	if err != nil {
		logger.Warn("Failed to cache run output", "error", err)
	}
	return out, false, nil
}

// joinGeometry loads the outlines and attaches them to the results.
func joinGeometry(store *storage.Storage, cfg *models.Config, results []models.RegionResult, logger *slog.Logger) ([]models.MapResult, error) {
	geomPath := cfg.TablePath(cfg.Geometry)
	data, err := store.ReadFile(geomPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load geometry %s: %w", geomPath, err)
	}
	shapes, err := geo.LoadShapes(data, cfg.GeometryCode, cfg.GeometryName)
	if err != nil {
		return nil, err
	}

	mapped, err := render.Join(results, shapes)
	if err != nil {
		return nil, fmt.Errorf("failed to compute ratios: %w", err)
	}

	drawn := make(map[string]bool, len(mapped))
	for _, m := range mapped {
		drawn[m.CodeReg] = true
	}
	for _, r := range results {
		if !drawn[r.CodeReg] {
			logger.Warn("Region has no outline", "code", r.CodeReg, "name", r.NameReg)
		}
	}
	logger.Info("Joined geometry", "shapes", len(shapes), "mapped", len(mapped))
	return mapped, nil
}

func writeMaps(store *storage.Storage, runDir string, mapped []models.MapResult, opts render.SVGOptions, logger *slog.Logger) ([]string, error) {
	var files []string

	var svg bytes.Buffer
	err := render.WriteSVG(&svg, mapped, opts)
	switch {
	case errors.Is(err, render.ErrNoGeometry):
		logger.Warn("No region could be drawn, skipping svg")
	case err != nil:
		return nil, err
	default:
		p := filepath.Join(runDir, svgFile)
		if err := store.SaveFile(p, svg.Bytes()); err != nil {
			return nil, err
		}
		files = append(files, p)
	}

	var gj bytes.Buffer
	if err := render.WriteGeoJSON(&gj, mapped); err != nil {
		return nil, err
	}
	p := filepath.Join(runDir, geojsonFile)
	if err := store.SaveFile(p, gj.Bytes()); err != nil {
		return nil, err
	}
	files = append(files, p)

	logger.Info("Wrote map", "dir", runDir, "files", len(files))
	return files, nil
}

// writeRunFiles saves the run summary next to the map files and lists the run
// in the output directory index. Failures are logged, not returned: the
// results are already computed and printed regardless.
func writeRunFiles(store *storage.Storage, outputDir, runName string, out *pipeline.Output, mapped []models.MapResult, runID int64, files []string, started time.Time, logger *slog.Logger) []string {
	runDir := rundir.Dir(outputDir, runName)

	summary := manifest.Build(out, mapped, runID, time.Now())
	summary.Files = files
	summaryPath, err := manifest.Save(summary, store, runDir)
	if err != nil {
		logger.Warn("Failed to write run summary", "error", err)
	} else {
		files = append(files, summaryPath)
	}

	if err := rundir.UpdateIndex(store, outputDir, rundir.RunInfo{
		Name:        runName,
		RunID:       runID,
		Created:     started,
		Fingerprint: out.Fingerprint,
		Regions:     len(out.Results),
		Excluded:    out.ExcludedRows(),
		Files:       files,
	}); err != nil {
		logger.Warn("Failed to update run index", "error", err)
	}
	if err := rundir.GenerateFieldsReference(store, outputDir); err != nil {
		logger.Warn("Failed to generate FIELDS.yaml reference", "error", err)
	}
	return files
}

func recordRun(dbPath, runUUID, runDir string, out *pipeline.Output, mapped []models.MapResult, logger *slog.Logger) (int64, error) {
	database, err := db.Open(dbPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	prev, err := database.FindRunByFingerprint(out.Fingerprint)
	if err != nil {
		return 0, err
	}
	if prev != nil {
		logger.Info("Inputs unchanged since an earlier run", "run_id", prev.RunID, "created", prev.CreatedAt)
	}

	ratios := make(map[string]float64, len(mapped))
	for _, m := range mapped {
		ratios[m.CodeReg] = m.Ratio
	}

	runID, err := database.RecordRun(&db.Run{
		RunUUID:        runUUID,
		Fingerprint:    out.Fingerprint,
		ReferendumRows: out.ReferendumRows,
		DroppedRows:    out.DroppedRows,
		JoinedRows:     out.JoinedRows,
		ExcludedRows:   out.ExcludedRows(),
		OutputDir:      runDir,
	}, out.Results, ratios, out.Excluded)
	if err != nil {
		return 0, err
	}
	logger.Info("Recorded run", "run_id", runID, "db", database.Path())
	return runID, nil
}
