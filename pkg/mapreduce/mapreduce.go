// Package mapreduce aggregates joined referendum lines into per-region tallies.
package mapreduce

import (
	"fmt"
	"sort"

	"github.com/dtnitsch/referendum-map/models"
)

// Tally is a set of partial region results keyed by region code.
type Tally map[string]models.RegionResult

// Map turns joined lines into a tally. Lines of the same region are summed.
func Map(joined []models.JoinedRecord) (Tally, error) {
	tally := make(Tally)
	for _, j := range joined {
		partial := models.RegionResult{
			CodeReg:     j.Area.CodeReg,
			NameReg:     j.Area.NameReg,
			Registered:  j.Referendum.Registered,
			Abstentions: j.Referendum.Abstentions,
			Null:        j.Referendum.Null,
			ChoiceA:     j.Referendum.ChoiceA,
			ChoiceB:     j.Referendum.ChoiceB,
		}
		if err := tally.add(partial); err != nil {
			return nil, err
		}
	}
	return tally, nil
}

// Reduce merges intermediate tallies into one.
func Reduce(intermediate []Tally) (Tally, error) {
	final := make(Tally)
	for _, t := range intermediate {
		for _, partial := range t {
			if err := final.add(partial); err != nil {
				return nil, err
			}
		}
	}
	return final, nil
}

func (t Tally) add(partial models.RegionResult) error {
	acc, ok := t[partial.CodeReg]
	if !ok {
		t[partial.CodeReg] = partial
		return nil
	}
	if acc.NameReg != partial.NameReg {
		return fmt.Errorf("region %s named both %q and %q: %w",
			partial.CodeReg, acc.NameReg, partial.NameReg, models.ErrInconsistentRegion)
	}
	t[partial.CodeReg] = acc.Add(partial)
	return nil
}

// Results returns the tally as a slice ordered by region code.
func (t Tally) Results() []models.RegionResult {
	out := make([]models.RegionResult, 0, len(t))
	for _, r := range t {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CodeReg < out[j].CodeReg
	})
	return out
}

// AggregateByRegion sums the vote counts of joined lines per region, one row
// per region code present in the input, ordered by code. Each department is
// mapped to its own tally and the tallies are reduced into the regions.
func AggregateByRegion(joined []models.JoinedRecord) ([]models.RegionResult, error) {
	intermediate := make([]Tally, 0)
	for _, lines := range groupByDepartment(joined) {
		tally, err := Map(lines)
		if err != nil {
			return nil, err
		}
		intermediate = append(intermediate, tally)
	}

	final, err := Reduce(intermediate)
	if err != nil {
		return nil, err
	}
	return final.Results(), nil
}

// groupByDepartment splits joined lines by department code, keeping the order
// in which departments first appear.
func groupByDepartment(joined []models.JoinedRecord) [][]models.JoinedRecord {
	index := make(map[string]int)
	var groups [][]models.JoinedRecord
	for _, j := range joined {
		i, ok := index[j.Area.CodeDep]
		if !ok {
			i = len(groups)
			index[j.Area.CodeDep] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], j)
	}
	return groups
}

// Totals sums every count column of results.
func Totals(results []models.RegionResult) models.RegionResult {
	total := models.RegionResult{NameReg: "Total"}
	for _, r := range results {
		total = total.Add(r)
	}
	return total
}
