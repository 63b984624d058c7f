package mapreduce

import (
	"fmt"
	"io"
	"sort"

	"github.com/dtnitsch/referendum-map/models"
)

// RankedRegion is a region with Choice A's share of the expressed ballots.
type RankedRegion struct {
	CodeReg string
	NameReg string
	Ratio   float64
}

// RankRegions returns up to n regions ordered by descending ratio, ties broken
// by code. Regions without expressed ballots are skipped.
func RankRegions(results []models.RegionResult, n int) []RankedRegion {
	ranked := make([]RankedRegion, 0, len(results))
	for _, r := range results {
		expressed := r.Expressed()
		if expressed <= 0 {
			continue
		}
		ranked = append(ranked, RankedRegion{
			CodeReg: r.CodeReg,
			NameReg: r.NameReg,
			Ratio:   float64(r.ChoiceA) / float64(expressed),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Ratio != ranked[j].Ratio {
			return ranked[i].Ratio > ranked[j].Ratio
		}
		return ranked[i].CodeReg < ranked[j].CodeReg
	})

	limit := n
	if limit < 0 || len(ranked) < limit {
		limit = len(ranked)
	}
	return ranked[:limit]
}

// TopRegions formats the ranking as "name:percent" strings
// (e.g., "Île-de-France:54.05%").
func TopRegions(results []models.RegionResult, n int) []string {
	ranked := RankRegions(results, n)
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = fmt.Sprintf("%s:%.2f%%", r.NameReg, r.Ratio*100)
	}
	return out
}

// PrintTopRegions writes the ranking to w as a numbered list.
func PrintTopRegions(w io.Writer, results []models.RegionResult, n int) {
	for i, r := range RankRegions(results, n) {
		fmt.Fprintf(w, "%d. %s: %.2f%%\n", i+1, r.NameReg, r.Ratio*100)
	}
}
