package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	apierrors "klothdash/internal/errors"
	"klothdash/internal/middleware"
	"klothdash/internal/services"
	api "klothdash/pkg/contracts/api/v1"
)

// filterFlags mirror the dashboard query parameters
type filterFlags struct {
	states    []string
	sites     []string
	weeks     []string
	months    []string
	days      []string
	name      string
	location  string
	address   string
	from      string
	to        string
	accMin    float64
	accMax    float64
	weightMin float64
	weightMax float64
	topN      int
}

func (f *filterFlags) register(fs *pflag.FlagSet) {
	fs.StringArrayVar(&f.states, "state", nil, "state or territory (repeatable)")
	fs.StringArrayVar(&f.sites, "site", nil, "site or contract id (repeatable)")
	fs.StringArrayVar(&f.weeks, "week", nil, "week label, facts only (repeatable)")
	fs.StringArrayVar(&f.months, "month", nil, "month label, facts only (repeatable)")
	fs.StringArrayVar(&f.days, "day", nil, "day of week, facts only (repeatable)")
	fs.StringVar(&f.name, "name", "", "location name contains, snapshot only")
	fs.StringVar(&f.location, "location", "", "location name contains, facts only")
	fs.StringVar(&f.address, "address", "", "site address contains")
	fs.StringVar(&f.from, "from", "", "first date YYYY-MM-DD, facts only")
	fs.StringVar(&f.to, "to", "", "last date YYYY-MM-DD, facts only")
	fs.Float64Var(&f.accMin, "acc-min", 0, "minimum acceptable kg, snapshot only")
	fs.Float64Var(&f.accMax, "acc-max", 0, "maximum acceptable kg, snapshot only")
	fs.Float64Var(&f.weightMin, "weight-min", 0, "minimum daily weight kg, facts only")
	fs.Float64Var(&f.weightMax, "weight-max", 0, "maximum daily weight kg, facts only")
	fs.IntVar(&f.topN, "top-n", 0, "number of locations in ranked charts (default from config)")
}

// selected drops blank values. Values are taken whole, so they may
// contain commas.
func selected(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// changed returns v when the flag was set, nil otherwise
func changed(cmd *cobra.Command, name string, v float64) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

func (f *filterFlags) snapshotQuery(cmd *cobra.Command) api.SnapshotQuery {
	return api.SnapshotQuery{
		States:        selected(f.states),
		Sites:         selected(f.sites),
		Name:          f.name,
		Address:       f.address,
		AcceptableMin: changed(cmd, "acc-min", f.accMin),
		AcceptableMax: changed(cmd, "acc-max", f.accMax),
		TopN:          f.topN,
	}
}

func (f *filterFlags) factQuery(cmd *cobra.Command) api.FactQuery {
	return api.FactQuery{
		States:    selected(f.states),
		Sites:     selected(f.sites),
		Weeks:     selected(f.weeks),
		Months:    selected(f.months),
		Days:      selected(f.days),
		Location:  f.location,
		Address:   f.address,
		From:      f.from,
		To:        f.to,
		WeightMin: changed(cmd, "weight-min", f.weightMin),
		WeightMax: changed(cmd, "weight-max", f.weightMax),
		TopN:      f.topN,
	}
}

// viewArg validates the positional view name
func viewArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	return cobra.OnlyValidArgs(cmd, args)
}

var viewNames = []string{services.ViewSnapshot, services.ViewFacts}

// validateQuery applies the same struct rules the HTTP API enforces and
// lists every failing flag
func validateQuery(env *reportEnv, q interface{}) error {
	err := middleware.NewValidationMiddleware(env.logger).ValidateStruct(q)
	if err == nil {
		return nil
	}

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		if details, ok := apiErr.Details.(apierrors.ValidationErrors); ok {
			msgs := make([]string, 0, len(details.Errors))
			for _, fe := range details.Errors {
				msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
			}
			return fmt.Errorf("invalid filters: %s", strings.Join(msgs, "; "))
		}
	}
	return fmt.Errorf("invalid filters: %w", err)
}
