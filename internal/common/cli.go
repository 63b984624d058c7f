package common

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/referendum-map/models"
)

// NewLogger returns the JSON logger every command writes to stderr.
// --quiet keeps errors only and --verbose adds debug records.
func NewLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("verbose") {
		logLevel = slog.LevelDebug
	}
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// LoadConfig reads --config (or refmap.yaml) and applies the flags that
// override it.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	path := c.String("config")
	if path == "" {
		path = models.DefaultConfigFile
	}
	cfg, err := models.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if c.IsSet("data-dir") {
		cfg.DataDir = c.String("data-dir")
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("encoding") {
		cfg.Encoding = c.String("encoding")
	}
	if c.IsSet("geometry") {
		cfg.Geometry = c.String("geometry")
	}
	if c.IsSet("drop-incomplete") {
		cfg.DropIncomplete = c.Bool("drop-incomplete")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
