package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"klothdash/internal/exporter"
	"klothdash/internal/services"
	"klothdash/internal/validation"
)

func newExportCmd(env *reportEnv) *cobra.Command {
	filters := &filterFlags{}
	var (
		format string
		output string
		bom    bool
	)

	cmd := &cobra.Command{
		Use:   "export {snapshot|facts}",
		Short: "Write a filtered view to CSV or XLSX",
		Long: `Write the rows of the snapshot or daily fact view that pass the filter
flags. Columns use the source workbook headers; fact exports add the
resolved state. Output goes to stdout unless --output names a file.`,
		Args:      viewArg,
		ValidArgs: viewNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := exporter.ParseFormat(format)
			if err != nil {
				return fmt.Errorf("klothreport: %w", err)
			}

			var table exporter.Table
			switch args[0] {
			case services.ViewSnapshot:
				q := filters.snapshotQuery(cmd)
				if err := validateQuery(env, q); err != nil {
					return err
				}
				table, err = env.service.SnapshotExport(ctx, q)
			case services.ViewFacts:
				q := filters.factQuery(cmd)
				if err := validateQuery(env, q); err != nil {
					return err
				}
				table, err = env.service.FactExport(ctx, q)
			}
			if err != nil {
				return fmt.Errorf("klothreport: %w", loadError(args[0], err))
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				if err := validation.NewFileValidator(env.logger).ValidateOutputFile(output); err != nil {
					return fmt.Errorf("klothreport: %w", err)
				}
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("klothreport: %w", err)
				}
				defer file.Close()
				w = file
			}

			if err := env.service.WriteExport(ctx, w, args[0], f, table, exporter.Options{BOM: bom}); err != nil {
				return fmt.Errorf("klothreport: %w", err)
			}
			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", table.Len(), output)
			}
			return nil
		},
	}

	filters.register(cmd.Flags())
	cmd.Flags().StringVarP(&format, "format", "f", string(exporter.FormatCSV), "output format: csv or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&bom, "bom", false, "prefix CSV output with a UTF-8 byte order mark")
	return cmd
}
