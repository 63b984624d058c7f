package models

// ReferendumRecord is one town or precinct line of the results file.
// The counts are not checked against each other.
type ReferendumRecord struct {
	DepartmentCode string `json:"department_code" yaml:"department_code"`
	DepartmentName string `json:"department_name" yaml:"department_name"`
	TownCode       string `json:"town_code" yaml:"town_code"`
	TownName       string `json:"town_name" yaml:"town_name"`
	Registered     int64  `json:"registered" yaml:"registered"`
	Abstentions    int64  `json:"abstentions" yaml:"abstentions"`
	Null           int64  `json:"null" yaml:"null"`
	ChoiceA        int64  `json:"choice_a" yaml:"choice_a"`
	ChoiceB        int64  `json:"choice_b" yaml:"choice_b"`
}

// JoinedRecord is a referendum line matched to its area. Referendum.DepartmentCode
// holds the normalized code, equal to Area.CodeDep.
type JoinedRecord struct {
	Referendum ReferendumRecord `json:"referendum" yaml:"referendum"`
	Area       AreaRecord       `json:"area" yaml:"area"`
}

// ExcludedCode is a department code of the referendum table that matched no
// area, with the number of rows it carried.
type ExcludedCode struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
	Rows int    `json:"rows" yaml:"rows"`
}
