package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"klothdash/internal/files"
	"klothdash/internal/validation"
)

func newSourcesCmd(env *reportEnv) *cobra.Command {
	var pattern string

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the workbooks in the data directory",
		Long: `sources lists the spreadsheet and CSV files found in the data directory,
newest first, and marks the ones configured as the snapshot and fact sources.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			validator := validation.NewFileValidator(env.logger)
			if err := validator.ValidateDataDirectory(env.paths.DataDir); err != nil {
				return fmt.Errorf("klothreport: %w", err)
			}
			discovery := files.NewDiscovery(env.paths.DataDir)

			var (
				found []files.FileInfo
				err   error
			)
			if pattern != "" {
				found, err = discovery.FindFilesByPattern("", pattern)
			} else {
				found, err = discovery.FindWorkbooks("")
			}
			if err != nil {
				return fmt.Errorf("listing %s: %w", env.paths.DataDir, err)
			}

			out := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintln(out, color.YellowString("No workbooks in %s", env.paths.DataDir))
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tBYTES\tMODIFIED\tROLE")
			for _, f := range found {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
					f.Name,
					f.Size,
					f.ModTime.Format("2006-01-02 15:04"),
					env.role(f.Path))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			for _, p := range []string{env.paths.SnapshotFile, env.paths.FactFile} {
				if err := validator.ValidateSourceFile(p); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("unusable source: %v", err))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pattern, "pattern", "", "only list files matching this glob")
	return cmd
}

// role names the source a path is configured as, or "-"
func (e *reportEnv) role(path string) string {
	switch filepath.Clean(path) {
	case filepath.Clean(e.paths.SnapshotFile):
		return color.GreenString("snapshot")
	case filepath.Clean(e.paths.FactFile):
		return color.GreenString("facts")
	}
	return "-"
}
