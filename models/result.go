package models

import "github.com/twpayne/go-geom"

// RatioDefinition documents how MapResult.Ratio is computed. Stored alongside
// every run so numbers from different builds stay comparable.
const RatioDefinition = "choice_a / (choice_a + choice_b)"

// RegionResult holds the vote counts of one region summed over its towns.
type RegionResult struct {
	CodeReg     string `json:"code_reg" yaml:"code_reg"`
	NameReg     string `json:"name_reg" yaml:"name_reg"`
	Registered  int64  `json:"registered" yaml:"registered"`
	Abstentions int64  `json:"abstentions" yaml:"abstentions"`
	Null        int64  `json:"null" yaml:"null"`
	ChoiceA     int64  `json:"choice_a" yaml:"choice_a"`
	ChoiceB     int64  `json:"choice_b" yaml:"choice_b"`
}

// Expressed returns the ballots cast for either choice.
func (r RegionResult) Expressed() int64 {
	return r.ChoiceA + r.ChoiceB
}

// Add returns the field-wise sum of r and o. Identity fields come from r.
func (r RegionResult) Add(o RegionResult) RegionResult {
	r.Registered += o.Registered
	r.Abstentions += o.Abstentions
	r.Null += o.Null
	r.ChoiceA += o.ChoiceA
	r.ChoiceB += o.ChoiceB
	return r
}

// MapResult is a region result joined with its geometry and annotated with
// Choice A's share of the expressed ballots.
type MapResult struct {
	RegionResult `yaml:",inline"`
	Geometry geom.T  `json:"-" yaml:"-"`
	Ratio    float64 `json:"ratio" yaml:"ratio"`
}
