// Package merge joins the referendum tables on their administrative codes.
// Every join is an inner join projected onto named fields.
package merge

import (
	"fmt"

	"github.com/dtnitsch/referendum-map/models"
)

// MergeAreas attaches each department to its region. Departments whose
// region code is unknown are dropped. Output keeps department order.
func MergeAreas(regions []models.RegionRecord, departments []models.DepartmentRecord) ([]models.AreaRecord, error) {
	byCode := make(map[string]models.RegionRecord, len(regions))
	for _, r := range regions {
		if _, dup := byCode[r.Code]; dup {
			return nil, fmt.Errorf("region %q: %w", r.Code, models.ErrDuplicateKey)
		}
		byCode[r.Code] = r
	}

	seen := make(map[string]struct{}, len(departments))
	areas := make([]models.AreaRecord, 0, len(departments))
	for _, d := range departments {
		if _, dup := seen[d.Code]; dup {
			return nil, fmt.Errorf("department %q: %w", d.Code, models.ErrDuplicateKey)
		}
		seen[d.Code] = struct{}{}

		region, ok := byCode[d.RegionCode]
		if !ok {
			continue
		}
		areas = append(areas, models.AreaRecord{
			CodeReg: region.Code,
			NameReg: region.Name,
			CodeDep: d.Code,
			NameDep: d.Name,
		})
	}
	return areas, nil
}
