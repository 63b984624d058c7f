package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/referendum-map/internal/areas"
	dbcmd "github.com/dtnitsch/referendum-map/internal/db"
	"github.com/dtnitsch/referendum-map/internal/run"
	"github.com/dtnitsch/referendum-map/models"
	"github.com/dtnitsch/referendum-map/pkg/help"
)

// tableFlags select where the input tables are read from.
func tableFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "data-dir",
			Usage: "Directory holding referendum.csv, regions.csv, departments.csv and the geometry",
		},
		&cli.StringFlag{
			Name:  "encoding",
			Usage: "Input encoding: utf-8, latin1, or windows-1252",
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "refmap",
		Usage: "Aggregate referendum results by region and draw them as a map",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML config file",
				Value: models.DefaultConfigFile,
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "SQLite database recording runs",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log errors",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log debug details such as every excluded department code",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Load the tables, aggregate by region and write the map",
				Action: run.RunAction,
				Flags: append(tableFlags(),
					&cli.StringFlag{
						Name:  "geometry",
						Usage: "GeoJSON file with one feature per region",
					},
					&cli.BoolFlag{
						Name:  "drop-incomplete",
						Usage: "Skip referendum rows with an empty field instead of failing",
					},
					&cli.StringFlag{
						Name:  "output-dir",
						Usage: "Directory receiving one folder per run",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: table, json, yaml, or csv",
						Value: "table",
					},
					&cli.StringFlag{
						Name:  "fields",
						Usage: "Comma separated region fields for json, yaml and csv (e.g. code,name,ratio)",
					},
					&cli.BoolFlag{
						Name:  "no-map",
						Usage: "Skip the geometry join and map files",
					},
					&cli.BoolFlag{
						Name:  "no-labels",
						Usage: "Do not print ratios on the map",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Map title",
					},
					&cli.IntFlag{
						Name:  "width",
						Usage: "Map width in pixels",
					},
					&cli.BoolFlag{
						Name:  "no-db",
						Usage: "Do not record the run in the database",
					},
					&cli.StringFlag{
						Name:  "cache-dir",
						Usage: "Directory caching computed results by input fingerprint",
						Value: ".refmap-cache",
					},
					&cli.BoolFlag{
						Name:  "no-cache",
						Usage: "Always recompute",
					},
					&cli.StringFlag{
						Name:  "max-age",
						Usage: "Ignore cached results older than this duration (0 keeps them forever)",
						Value: "0s",
					},
				),
			},
			{
				Name:   "areas",
				Usage:  "Print the department to region table",
				Action: areas.AreasAction,
				Flags: append(tableFlags(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: table, json, or yaml",
						Value: "table",
					},
				),
			},
			{
				Name:  "db",
				Usage: "Inspect recorded runs",
				Subcommands: []*cli.Command{
					{
						Name:   "runs",
						Usage:  "List runs, most recent first",
						Action: dbcmd.RunsAction,
						Flags: []cli.Flag{
							&cli.IntFlag{
								Name:  "limit",
								Usage: "Maximum number of runs (0 for all)",
								Value: 20,
							},
						},
					},
					{
						Name:      "run",
						Usage:     "Show a run (latest when no ID is given)",
						ArgsUsage: "[run_id]",
						Action:    dbcmd.RunAction,
					},
				},
			},
			{
				Name:  "quickstart",
				Usage: "Print a short guide",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
