package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/referendum-map/internal/common"
	dbpkg "github.com/dtnitsch/referendum-map/pkg/db"
)

func openDatabase(c *cli.Context) (*dbpkg.DB, error) {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	database, err := dbpkg.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

func RunsAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	// Print table header
	fmt.Printf("%-6s %-20s %-10s %-8s %-8s %-8s %-8s %-30s\n",
		"ID", "Created", "Input", "Rows", "Joined", "Excluded", "Regions", "Output Dir")
	fmt.Println(strings.Repeat("-", 110))

	for _, r := range runs {
		fmt.Printf("%-6d %-20s %-10s %-8d %-8d %-8d %-8d %-30s\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			shortFingerprint(r.Fingerprint),
			r.ReferendumRows,
			r.JoinedRows,
			r.ExcludedRows,
			r.RegionCount,
			r.OutputDir,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	fmt.Printf("\nTip: Use 'refmap db run <id>' to see details\n")

	return nil
}

// RunAction shows details for a specific run
func RunAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return err
	}

	run, err := database.GetRunByID(runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	results, err := database.GetRunResults(runID)
	if err != nil {
		return err
	}
	excluded, err := database.GetExcludedCodes(runID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %d (%s)\n", run.RunID, run.RunUUID)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Created:     %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Directory:   %s\n", run.OutputDir)
	fmt.Printf("Input:       %s\n", run.Fingerprint)
	fmt.Printf("Rows:        %d read (%d dropped), %d joined, %d excluded\n",
		run.ReferendumRows, run.DroppedRows, run.JoinedRows, run.ExcludedRows)
	fmt.Printf("Ratio:       %s\n", run.RatioDefinition)

	if len(excluded) > 0 {
		fmt.Printf("\nExcluded codes (%d):\n", len(excluded))
		fmt.Println(strings.Repeat("-", 60))
		for _, ex := range excluded {
			fmt.Printf("  %-4s %-30s %d rows\n", ex.Code, ex.Name, ex.Rows)
		}
	}

	fmt.Printf("\nRegions (%d):\n", len(results))
	fmt.Println(strings.Repeat("-", 60))
	for _, r := range results {
		ratio := "-"
		if r.Ratio.Valid {
			ratio = common.FormatRatio(r.Ratio.Float64)
		}
		fmt.Printf("  %-4s %-30s A %s / B %s  %s\n",
			r.CodeReg, r.NameReg, common.FormatCount(r.ChoiceA), common.FormatCount(r.ChoiceB), ratio)
	}

	if run.OutputDir != "" {
		summaries, _ := filepath.Glob(filepath.Join(run.OutputDir, "summary-*.yaml"))
		if len(summaries) > 0 {
			fmt.Printf("\nTip: cat %s\n", summaries[0])
		} else if _, err := os.Stat(run.OutputDir); err != nil {
			fmt.Printf("\nOutput directory %s no longer exists\n", run.OutputDir)
		}
	}

	return nil
}
