// Package render joins region results with their outlines, computes Choice A's
// ratio and draws the choropleth.
package render

import (
	"fmt"

	"github.com/dtnitsch/referendum-map/models"
	"github.com/dtnitsch/referendum-map/pkg/geo"
)

// ComputationError reports a region whose ratio is undefined.
type ComputationError struct {
	CodeReg string
	NameReg string
	Reason  string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("region %s (%s): %s", e.CodeReg, e.NameReg, e.Reason)
}

func (e *ComputationError) Unwrap() error {
	return models.ErrComputation
}

// Ratio returns ChoiceA / (ChoiceA + ChoiceB).
func Ratio(r models.RegionResult) (float64, error) {
	expressed := r.Expressed()
	if expressed <= 0 {
		return 0, &ComputationError{
			CodeReg: r.CodeReg,
			NameReg: r.NameReg,
			Reason:  "no ballots expressed for either choice",
		}
	}
	return float64(r.ChoiceA) / float64(expressed), nil
}

// Join matches results with shapes on region code and annotates every match
// with its ratio. Results without a shape, and shapes without a result, are
// left out. Output follows the order of results.
func Join(results []models.RegionResult, shapes []geo.Shape) ([]models.MapResult, error) {
	byCode := make(map[string]geo.Shape, len(shapes))
	for _, s := range shapes {
		byCode[s.Code] = s
	}

	out := make([]models.MapResult, 0, len(results))
	for _, r := range results {
		shape, ok := byCode[r.CodeReg]
		if !ok {
			continue
		}
		ratio, err := Ratio(r)
		if err != nil {
			return nil, err
		}
		out = append(out, models.MapResult{
			RegionResult: r,
			Geometry:     shape.Geometry,
			Ratio:        ratio,
		})
	}
	return out, nil
}
