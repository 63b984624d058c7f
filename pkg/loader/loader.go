// Package loader reads the referendum, region and department tables into
// typed records.
package loader

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dtnitsch/referendum-map/models"
	"github.com/dtnitsch/referendum-map/pkg/storage"
)

var errEmpty = errors.New("empty value")

// Tables is the loaded input of one pipeline run.
type Tables struct {
	Referendum  []models.ReferendumRecord
	Regions     []models.RegionRecord
	Departments []models.DepartmentRecord

	// Dropped counts referendum rows skipped because a field was empty.
	Dropped int
	// Fingerprint identifies the raw bytes of the three files.
	Fingerprint string
}

// Loader reads tables through a Storage using the layout in Config.
type Loader struct {
	store  *storage.Storage
	cfg    *models.Config
	logger *slog.Logger
}

// New creates a Loader. A nil logger falls back to slog.Default().
func New(store *storage.Storage, cfg *models.Config, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{store: store, cfg: cfg, logger: logger}
}

func (l *Loader) read(tc models.TableConfig) ([]byte, error) {
	path := l.cfg.TablePath(tc.Path)
	data, err := l.store.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return data, nil
}

// LoadAll reads the three tables and fingerprints their content.
func (l *Loader) LoadAll() (*Tables, error) {
	regData, err := l.read(l.cfg.Regions)
	if err != nil {
		return nil, err
	}
	depData, err := l.read(l.cfg.Departments)
	if err != nil {
		return nil, err
	}
	refData, err := l.read(l.cfg.Referendum)
	if err != nil {
		return nil, err
	}

	regions, err := ParseRegions(regData, l.cfg)
	if err != nil {
		return nil, err
	}
	departments, err := ParseDepartments(depData, l.cfg)
	if err != nil {
		return nil, err
	}
	referendum, dropped, err := ParseReferendum(refData, l.cfg)
	if err != nil {
		return nil, err
	}

	l.logger.Info("Loaded tables",
		"regions", len(regions),
		"departments", len(departments),
		"referendum", len(referendum),
		"dropped", dropped)

	return &Tables{
		Referendum:  referendum,
		Regions:     regions,
		Departments: departments,
		Dropped:     dropped,
		Fingerprint: Fingerprint(regData, depData, refData),
	}, nil
}

// LoadAreas reads only the regions and departments tables.
func (l *Loader) LoadAreas() ([]models.RegionRecord, []models.DepartmentRecord, error) {
	regData, err := l.read(l.cfg.Regions)
	if err != nil {
		return nil, nil, err
	}
	depData, err := l.read(l.cfg.Departments)
	if err != nil {
		return nil, nil, err
	}

	regions, err := ParseRegions(regData, l.cfg)
	if err != nil {
		return nil, nil, err
	}
	departments, err := ParseDepartments(depData, l.cfg)
	if err != nil {
		return nil, nil, err
	}
	return regions, departments, nil
}

// Fingerprint hashes the per-file hashes so that moving bytes between files
// changes the result.
func Fingerprint(files ...[]byte) string {
	var joined []byte
	for _, f := range files {
		joined = append(joined, contentHash(f)...)
		joined = append(joined, '\n')
	}
	return contentHash(joined)
}

// contentHash returns the hex sha256 of data.
func contentHash(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// ParseRegions decodes a regions table.
func ParseRegions(data []byte, cfg *models.Config) ([]models.RegionRecord, error) {
	t, err := parseTable("regions", data, cfg.Encoding, cfg.Regions,
		[]string{models.FieldCode, models.FieldName})
	if err != nil {
		return nil, err
	}

	out := make([]models.RegionRecord, 0, len(t.rows))
	for _, r := range t.rows {
		rec := models.RegionRecord{
			Code: t.value(r, models.FieldCode),
			Name: t.value(r, models.FieldName),
		}
		if rec.Code == "" {
			return nil, t.rowError(r, models.FieldCode, models.ErrMalformedCode)
		}
		out = append(out, rec)
	}
	return out, nil
}

// ParseDepartments decodes a departments table.
func ParseDepartments(data []byte, cfg *models.Config) ([]models.DepartmentRecord, error) {
	t, err := parseTable("departments", data, cfg.Encoding, cfg.Departments,
		[]string{models.FieldCode, models.FieldRegionCode, models.FieldName})
	if err != nil {
		return nil, err
	}

	out := make([]models.DepartmentRecord, 0, len(t.rows))
	for _, r := range t.rows {
		rec := models.DepartmentRecord{
			Code:       t.value(r, models.FieldCode),
			RegionCode: t.value(r, models.FieldRegionCode),
			Name:       t.value(r, models.FieldName),
		}
		if rec.Code == "" {
			return nil, t.rowError(r, models.FieldCode, models.ErrMalformedCode)
		}
		out = append(out, rec)
	}
	return out, nil
}

var referendumFields = []string{
	models.FieldDepartmentCode,
	models.FieldDepartmentName,
	models.FieldTownCode,
	models.FieldTownName,
	models.FieldRegistered,
	models.FieldAbstentions,
	models.FieldNull,
	models.FieldChoiceA,
	models.FieldChoiceB,
}

// ParseReferendum decodes the results table. With cfg.DropIncomplete, rows
// with an empty field are skipped and counted instead of failing the load.
func ParseReferendum(data []byte, cfg *models.Config) ([]models.ReferendumRecord, int, error) {
	t, err := parseTable("referendum", data, cfg.Encoding, cfg.Referendum, referendumFields)
	if err != nil {
		return nil, 0, err
	}

	out := make([]models.ReferendumRecord, 0, len(t.rows))
	dropped := 0
	for _, r := range t.rows {
		if field, ok := t.firstEmpty(r, referendumFields); ok {
			if cfg.DropIncomplete {
				dropped++
				continue
			}
			return nil, 0, t.rowError(r, field, errEmpty)
		}

		rec := models.ReferendumRecord{
			DepartmentCode: t.value(r, models.FieldDepartmentCode),
			DepartmentName: t.value(r, models.FieldDepartmentName),
			TownCode:       t.value(r, models.FieldTownCode),
			TownName:       t.value(r, models.FieldTownName),
		}
		counts := []struct {
			field string
			dst   *int64
		}{
			{models.FieldRegistered, &rec.Registered},
			{models.FieldAbstentions, &rec.Abstentions},
			{models.FieldNull, &rec.Null},
			{models.FieldChoiceA, &rec.ChoiceA},
			{models.FieldChoiceB, &rec.ChoiceB},
		}
		for _, c := range counts {
			n, err := strconv.ParseInt(t.value(r, c.field), 10, 64)
			if err != nil {
				return nil, 0, t.rowError(r, c.field, err)
			}
			*c.dst = n
		}
		out = append(out, rec)
	}
	return out, dropped, nil
}

func (t *table) firstEmpty(r row, fields []string) (string, bool) {
	for _, f := range fields {
		if t.value(r, f) == "" {
			return f, true
		}
	}
	return "", false
}

func (t *table) rowError(r row, field string, err error) error {
	return &ParseError{Table: t.name, Line: r.line, Column: t.headers[field], Err: err}
}
