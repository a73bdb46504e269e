package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"klothdash/internal/presentation"
	"klothdash/internal/services"
)

var (
	colorBold   = color.New(color.Bold)
	colorGreen  = color.New(color.FgGreen)
	colorYellow = color.New(color.FgYellow)
)

func newSummaryCmd(env *reportEnv) *cobra.Command {
	filters := &filterFlags{}

	cmd := &cobra.Command{
		Use:       "summary {snapshot|facts}",
		Short:     "Print the KPI cards of a filtered view",
		Long:      "Print the headline metrics and the top locations of the snapshot or daily fact view after applying the filter flags.",
		Args:      viewArg,
		ValidArgs: viewNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			switch args[0] {
			case services.ViewSnapshot:
				q := filters.snapshotQuery(cmd)
				if err := validateQuery(env, q); err != nil {
					return err
				}
				dash, err := env.service.Snapshot(ctx, q)
				if err != nil {
					return fmt.Errorf("klothreport: %w", loadError(args[0], err))
				}
				chart, _ := dash.Chart(presentation.ChartAcceptableByLocation)
				printSummary(out, "Snapshot", dash.RecordCount, dash.Metrics, chart, env.service.Formatter())

			case services.ViewFacts:
				q := filters.factQuery(cmd)
				if err := validateQuery(env, q); err != nil {
					return err
				}
				dash, err := env.service.Facts(ctx, q)
				if err != nil {
					return fmt.Errorf("klothreport: %w", loadError(args[0], err))
				}
				chart, _ := dash.Chart(presentation.ChartTopLocations)
				printSummary(out, "Daily facts", dash.RecordCount, dash.Metrics, chart, env.service.Formatter())
			}
			return nil
		},
	}

	filters.register(cmd.Flags())
	return cmd
}

func printSummary(w io.Writer, title string, records int, metrics []presentation.Metric, ranked presentation.Chart, f *presentation.Formatter) {
	fmt.Fprintf(w, "%s (%s records)\n\n", colorBold.Sprint(title), f.Count(records))

	for _, m := range metrics {
		fmt.Fprintf(w, "  %-32s %s\n", m.Label, colorGreen.Sprint(m.Display))
	}

	if ranked.ID == "" {
		return
	}
	fmt.Fprintf(w, "\n%s\n", colorBold.Sprint(ranked.Title))
	if ranked.Empty {
		fmt.Fprintf(w, "  %s\n", colorYellow.Sprint(ranked.Notice))
		return
	}
	for i, name := range ranked.Categories {
		var v float64
		if len(ranked.Series) > 0 && i < len(ranked.Series[0].Values) {
			v = ranked.Series[0].Values[i]
		}
		fmt.Fprintf(w, "  %2d. %-28s %s\n", i+1, name, f.KG(v))
	}
}
