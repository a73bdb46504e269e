package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"klothdash/internal/config"
	"klothdash/internal/dataset"
	apierrors "klothdash/internal/errors"
	"klothdash/internal/infrastructure"
	"klothdash/internal/services"
)

// rootOptions are the flags shared by every subcommand
type rootOptions struct {
	configFile string
	dataDir    string
	snapshot   string
	facts      string
	sheet      string
	verbose    bool
	noColor    bool
}

// reportEnv is built once per invocation before a subcommand runs
type reportEnv struct {
	cfg     *config.Config
	paths   *config.Paths
	logger  *slog.Logger
	service *services.DashboardService
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	env := &reportEnv{}

	cmd := &cobra.Command{
		Use:   "klothreport",
		Short: "Summarize and export KLOTH collection data",
		Long: `klothreport reads the aggregated snapshot and daily fact workbooks the
dashboard serves, prints the headline figures for a filtered view, and
writes filtered views to CSV or XLSX.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.noColor {
				color.NoColor = true
			}
			return env.setup(opts, cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "directory holding the source workbooks")
	cmd.PersistentFlags().StringVar(&opts.snapshot, "snapshot", "", "aggregated snapshot workbook")
	cmd.PersistentFlags().StringVar(&opts.facts, "facts", "", "daily fact workbook")
	cmd.PersistentFlags().StringVar(&opts.sheet, "sheet", "", "sheet holding the daily facts")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(newSummaryCmd(env))
	cmd.AddCommand(newExportCmd(env))
	cmd.AddCommand(newSourcesCmd(env))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// setup loads configuration, applies flag overrides and builds the service
func (e *reportEnv) setup(opts *rootOptions, stderr io.Writer) error {
	cfg, err := config.LoadFrom(opts.configFile)
	if err != nil {
		return fmt.Errorf("klothreport: %w", err)
	}
	if opts.dataDir != "" {
		cfg.Sources.SnapshotPath = rebase(cfg.Sources.SnapshotPath, cfg.Sources.DataDir)
		cfg.Sources.FactPath = rebase(cfg.Sources.FactPath, cfg.Sources.DataDir)
		cfg.Sources.DataDir = opts.dataDir
	}
	if opts.snapshot != "" {
		cfg.Sources.SnapshotPath = opts.snapshot
	}
	if opts.facts != "" {
		cfg.Sources.FactPath = opts.facts
	}
	if opts.sheet != "" {
		cfg.Sources.FactSheet = opts.sheet
	}

	logCfg := cfg.Logging
	logCfg.Output = "console"
	logCfg.Format = "text"
	logCfg.Level = "warn"
	if opts.verbose {
		logCfg.Level = "debug"
	}
	logger, err := infrastructure.NewLogger(logCfg, stderr)
	if err != nil {
		return fmt.Errorf("klothreport: %w", err)
	}

	paths, err := cfg.GetPaths()
	if err != nil {
		return fmt.Errorf("klothreport: %w", err)
	}
	if opts.verbose {
		paths.LogPathResolution(logger)
	}

	store := dataset.NewStore(dataset.Sources{
		SnapshotPath: paths.SnapshotFile,
		FactPath:     paths.FactFile,
		FactSheet:    cfg.Sources.FactSheet,
	}, dataset.NewLoader(logger, nil), nil, logger)

	e.cfg = cfg
	e.paths = paths
	e.logger = logger
	e.service = services.NewDashboardService(store, cfg.Dashboard, nil, logger)
	return nil
}

// rebase makes path relative to dir when it lies inside dir, so that a
// --data-dir override moves the configured sources along with it
func rebase(path, dir string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

// loadError marks a source that could not be read as a data source failure
func loadError(view string, err error) error {
	if errors.Is(err, dataset.ErrMissingSourceFile) || errors.Is(err, dataset.ErrMissingSheet) {
		return apierrors.NewAppError(apierrors.ErrTypeDataSource, "cannot load "+view, err).
			WithContext("view", view)
	}
	return err
}
