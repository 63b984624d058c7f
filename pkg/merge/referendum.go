package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dtnitsch/referendum-map/models"
)

// codeWidth is the width of department codes in the area table.
const codeWidth = 2

// NormalizeDepartmentCode left-pads single character codes with "0" so that
// "1" matches "01". Longer codes are returned unchanged.
func NormalizeDepartmentCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("empty department code: %w", models.ErrMalformedCode)
	}
	if n := len([]rune(code)); n < codeWidth {
		code = strings.Repeat("0", codeWidth-n) + code
	}
	return code, nil
}

// MergeReferendum matches every referendum line to its area on the normalized
// department code. Lines without an area (overseas territories, citizens
// abroad) are left out. A malformed code fails the whole merge.
func MergeReferendum(referendum []models.ReferendumRecord, areas []models.AreaRecord) ([]models.JoinedRecord, error) {
	byDep := indexAreas(areas)

	joined := make([]models.JoinedRecord, 0, len(referendum))
	for i, rec := range referendum {
		code, err := NormalizeDepartmentCode(rec.DepartmentCode)
		if err != nil {
			return nil, fmt.Errorf("referendum row %d (town %q): %w", i+1, rec.TownName, err)
		}
		area, ok := byDep[code]
		if !ok {
			continue
		}
		rec.DepartmentCode = code
		joined = append(joined, models.JoinedRecord{Referendum: rec, Area: area})
	}
	return joined, nil
}

// Excluded lists the normalized department codes MergeReferendum leaves out,
// sorted by code, with the number of rows each carried.
func Excluded(referendum []models.ReferendumRecord, areas []models.AreaRecord) ([]models.ExcludedCode, error) {
	byDep := indexAreas(areas)

	counts := make(map[string]*models.ExcludedCode)
	for i, rec := range referendum {
		code, err := NormalizeDepartmentCode(rec.DepartmentCode)
		if err != nil {
			return nil, fmt.Errorf("referendum row %d (town %q): %w", i+1, rec.TownName, err)
		}
		if _, ok := byDep[code]; ok {
			continue
		}
		ex, ok := counts[code]
		if !ok {
			ex = &models.ExcludedCode{Code: code, Name: rec.DepartmentName}
			counts[code] = ex
		}
		ex.Rows++
	}

	out := make([]models.ExcludedCode, 0, len(counts))
	for _, ex := range counts {
		out = append(out, *ex)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func indexAreas(areas []models.AreaRecord) map[string]models.AreaRecord {
	byDep := make(map[string]models.AreaRecord, len(areas))
	for _, a := range areas {
		byDep[a.CodeDep] = a
	}
	return byDep
}
