package areas

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/referendum-map/internal/common"
	"github.com/dtnitsch/referendum-map/models"
	"github.com/dtnitsch/referendum-map/pkg/loader"
	"github.com/dtnitsch/referendum-map/pkg/merge"
	"github.com/dtnitsch/referendum-map/pkg/storage"
)

// AreasAction prints the department to region table the referendum is joined on.
func AreasAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	regions, departments, err := loader.New(storage.New(""), cfg, logger).LoadAreas()
	if err != nil {
		return err
	}
	areas, err := merge.MergeAreas(regions, departments)
	if err != nil {
		return fmt.Errorf("failed to merge regions and departments: %w", err)
	}
	logger.Info("Merged areas", "regions", len(regions), "departments", len(departments), "areas", len(areas))

	switch strings.ToLower(c.String("format")) {
	case "yaml":
		data, err := yaml.Marshal(areas)
		if err != nil {
			return fmt.Errorf("failed to marshal areas: %w", err)
		}
		fmt.Print(string(data))
	case "json":
		data, err := json.MarshalIndent(areas, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal areas: %w", err)
		}
		fmt.Println(string(data))
	case "", "table":
		writeTable(os.Stdout, areas)
	default:
		return fmt.Errorf("unknown format: %s (use: table, json, or yaml)", c.String("format"))
	}
	return nil
}

func writeTable(w io.Writer, areas []models.AreaRecord) {
	fmt.Fprintf(w, "%-6s %-30s %-6s %-30s\n", "Dep", "Department", "Reg", "Region")
	fmt.Fprintln(w, strings.Repeat("-", 76))
	for _, a := range areas {
		fmt.Fprintf(w, "%-6s %-30s %-6s %-30s\n", a.CodeDep, a.NameDep, a.CodeReg, a.NameReg)
	}
	fmt.Fprintf(w, "\nTotal: %d departments in %d regions\n", len(areas), regionCount(areas))
}

// regionCount counts the regions that own at least one department.
func regionCount(areas []models.AreaRecord) int {
	seen := make(map[string]struct{}, len(areas))
	for _, a := range areas {
		seen[a.CodeReg] = struct{}{}
	}
	return len(seen)
}
