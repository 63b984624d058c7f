package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when --config is not given.
const DefaultConfigFile = "refmap.yaml"

// TableConfig describes one delimited input file.
type TableConfig struct {
	Path      string `yaml:"path"`
	Delimiter string `yaml:"delimiter"`
	// Columns maps a logical field name to the header found in the file.
	Columns map[string]string `yaml:"columns,omitempty"`
}

// Config holds runtime configuration. Values come from a YAML file and may be
// overridden by CLI flags.
type Config struct {
	DataDir     string      `yaml:"data_dir"`
	Encoding    string      `yaml:"encoding"`
	Referendum  TableConfig `yaml:"referendum"`
	Regions     TableConfig `yaml:"regions"`
	Departments TableConfig `yaml:"departments"`

	Geometry     string `yaml:"geometry"`
	GeometryCode string `yaml:"geometry_code_property"`
	GeometryName string `yaml:"geometry_name_property"`

	// DropIncomplete skips referendum rows with an empty required field
	// instead of failing the run.
	DropIncomplete bool `yaml:"drop_incomplete"`

	OutputDir string `yaml:"output_dir"`
	DBPath    string `yaml:"db_path"`
}

// Field names used as keys of TableConfig.Columns.
const (
	FieldCode           = "code"
	FieldName           = "name"
	FieldRegionCode     = "region_code"
	FieldDepartmentCode = "department_code"
	FieldDepartmentName = "department_name"
	FieldTownCode       = "town_code"
	FieldTownName       = "town_name"
	FieldRegistered     = "registered"
	FieldAbstentions    = "abstentions"
	FieldNull           = "null"
	FieldChoiceA        = "choice_a"
	FieldChoiceB        = "choice_b"
)

// DefaultConfig returns the settings matching the reference dataset layout.
func DefaultConfig() *Config {
	return &Config{
		DataDir:  "data",
		Encoding: "utf-8",
		Referendum: TableConfig{
			Path:      "referendum.csv",
			Delimiter: ";",
			Columns: map[string]string{
				FieldDepartmentCode: "Department code",
				FieldDepartmentName: "Department name",
				FieldTownCode:       "Town code",
				FieldTownName:       "Town name",
				FieldRegistered:     "Registered",
				FieldAbstentions:    "Abstentions",
				FieldNull:           "Null",
				FieldChoiceA:        "Choice A",
				FieldChoiceB:        "Choice B",
			},
		},
		Regions: TableConfig{
			Path:      "regions.csv",
			Delimiter: ",",
			Columns: map[string]string{
				FieldCode: "code",
				FieldName: "name",
			},
		},
		Departments: TableConfig{
			Path:      "departments.csv",
			Delimiter: ",",
			Columns: map[string]string{
				FieldCode:       "code",
				FieldRegionCode: "region_code",
				FieldName:       "name",
			},
		},
		Geometry:     "regions.geojson",
		GeometryCode: "code",
		GeometryName: "nom",
		OutputDir:    "refmap-results",
		DBPath:       "refmap.db",
	}
}

// LoadConfig reads a YAML config on top of the defaults. A missing file is not
// an error; the defaults are returned.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.merge(&fileCfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// merge copies every non-zero value of o into c. Column maps are merged key by
// key so a config file can rename a single header.
func (c *Config) merge(o *Config) {
	setString(&c.DataDir, o.DataDir)
	setString(&c.Encoding, o.Encoding)
	mergeTable(&c.Referendum, o.Referendum)
	mergeTable(&c.Regions, o.Regions)
	mergeTable(&c.Departments, o.Departments)
	setString(&c.Geometry, o.Geometry)
	setString(&c.GeometryCode, o.GeometryCode)
	setString(&c.GeometryName, o.GeometryName)
	setString(&c.OutputDir, o.OutputDir)
	setString(&c.DBPath, o.DBPath)
	if o.DropIncomplete {
		c.DropIncomplete = true
	}
}

func mergeTable(dst *TableConfig, src TableConfig) {
	setString(&dst.Path, src.Path)
	setString(&dst.Delimiter, src.Delimiter)
	for field, header := range src.Columns {
		if dst.Columns == nil {
			dst.Columns = make(map[string]string)
		}
		dst.Columns[field] = header
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate checks values that cannot be caught while loading.
func (c *Config) Validate() error {
	for name, t := range map[string]TableConfig{
		"referendum":  c.Referendum,
		"regions":     c.Regions,
		"departments": c.Departments,
	} {
		if t.Path == "" {
			return fmt.Errorf("config: %s.path is required", name)
		}
		if len([]rune(t.Delimiter)) != 1 {
			return fmt.Errorf("config: %s.delimiter must be a single character, got %q", name, t.Delimiter)
		}
	}
	switch c.Encoding {
	case "utf-8", "latin1", "windows-1252":
	default:
		return fmt.Errorf("config: unsupported encoding %q (use utf-8, latin1 or windows-1252)", c.Encoding)
	}
	return nil
}

// TablePath resolves a table path against DataDir unless it is absolute.
func (c *Config) TablePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.DataDir == "" {
		return p
	}
	return filepath.Join(c.DataDir, p)
}
