// Package pipeline wires the stages of one run: load, merge areas, merge
// referendum, aggregate.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dtnitsch/referendum-map/models"
	"github.com/dtnitsch/referendum-map/pkg/loader"
	"github.com/dtnitsch/referendum-map/pkg/mapreduce"
	"github.com/dtnitsch/referendum-map/pkg/merge"
)

// Output is everything a run produced. Nothing in it is shared with another run.
type Output struct {
	Fingerprint    string
	ReferendumRows int
	DroppedRows    int
	Areas          []models.AreaRecord
	JoinedRows     int
	Excluded       []models.ExcludedCode
	Results        []models.RegionResult
}

// ExcludedRows sums the rows of every excluded department code.
func (o *Output) ExcludedRows() int {
	n := 0
	for _, ex := range o.Excluded {
		n += ex.Rows
	}
	return n
}

// Run loads the tables and computes the per-region results.
func Run(ctx context.Context, l *loader.Loader, logger *slog.Logger) (*Output, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tables, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return Compute(ctx, tables, logger)
}

// Compute runs the merge and aggregation stages over already loaded tables.
func Compute(ctx context.Context, tables *loader.Tables, logger *slog.Logger) (*Output, error) {
	if logger == nil {
		logger = slog.Default()
	}

	areas, err := merge.MergeAreas(tables.Regions, tables.Departments)
	if err != nil {
		return nil, fmt.Errorf("failed to merge regions and departments: %w", err)
	}
	logger.Info("Merged areas", "departments", len(tables.Departments), "areas", len(areas))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	joined, err := merge.MergeReferendum(tables.Referendum, areas)
	if err != nil {
		return nil, fmt.Errorf("failed to merge referendum and areas: %w", err)
	}
	excluded, err := merge.Excluded(tables.Referendum, areas)
	if err != nil {
		return nil, fmt.Errorf("failed to list excluded codes: %w", err)
	}
	logger.Info("Merged referendum", "rows", len(tables.Referendum), "joined", len(joined), "excluded_codes", len(excluded))
	for _, ex := range excluded {
		logger.Debug("Excluded department code", "code", ex.Code, "name", ex.Name, "rows", ex.Rows)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results, err := mapreduce.AggregateByRegion(joined)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by region: %w", err)
	}
	logger.Info("Aggregated results", "regions", len(results))

	return &Output{
		Fingerprint:    tables.Fingerprint,
		ReferendumRows: len(tables.Referendum),
		DroppedRows:    tables.Dropped,
		Areas:          areas,
		JoinedRows:     len(joined),
		Excluded:       excluded,
		Results:        results,
	}, nil
}
