package presentation

import (
	"sort"

	"klothdash/internal/aggregate"
	"klothdash/internal/filter"
	"klothdash/pkg/contracts/domain"
)

// SnapshotOptions are the choices offered by the snapshot filter controls
type SnapshotOptions struct {
	States     []string     `json:"states"`
	Sites      []string     `json:"sites"`
	Acceptable filter.Range `json:"acceptable"`
}

// FactOptions are the choices offered by the fact filter controls
type FactOptions struct {
	States []string        `json:"states"`
	Sites  []string        `json:"sites"`
	Weeks  []string        `json:"weeks"`
	Months []string        `json:"months"`
	Days   []string        `json:"days"`
	Weight filter.Range    `json:"weight"`
	From   domain.NullDate `json:"from"`
	To     domain.NullDate `json:"to"`
}

// SnapshotOptionsFor lists the filter choices of an unfiltered snapshot. The
// acceptable range spans [0, max(largest value, 1)].
func SnapshotOptionsFor(rows []domain.AggregatedRecord) SnapshotOptions {
	return SnapshotOptions{
		States:     distinct(rows, snapState),
		Sites:      distinct(rows, snapSite),
		Acceptable: AcceptableBounds(rows),
	}
}

// AcceptableBounds is the acceptable-KG slider range of rows
func AcceptableBounds(rows []domain.AggregatedRecord) filter.Range {
	return sliderRange(rows, snapAcceptable)
}

// FactOptionsFor lists the filter choices of an unfiltered fact table.
// Months are ordered by month start, days by the calendar week.
func FactOptionsFor(rows []domain.FactRecord) FactOptions {
	opts := FactOptions{
		States: distinct(rows, factState),
		Sites:  distinct(rows, factSite),
		Weeks:  distinct(rows, func(r domain.FactRecord) string { return r.WeekLabel }),
		Months: months(rows),
		Days:   days(rows),
		Weight: sliderRange(rows, factWeight),
	}
	for _, r := range rows {
		if !r.Date.Valid {
			continue
		}
		if !opts.From.Valid || r.Date.Before(opts.From) {
			opts.From = r.Date
		}
		if !opts.To.Valid || opts.To.Before(r.Date) {
			opts.To = r.Date
		}
	}
	return opts
}

// distinct returns the sorted non-empty values of key
func distinct[T any](rows []T, key func(T) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range rows {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sliderRange[T any](rows []T, value func(T) float64) filter.Range {
	hi := 1.0
	for _, r := range rows {
		if v := value(r); v > hi {
			hi = v
		}
	}
	return filter.Range{Lo: 0, Hi: hi}
}

func months(rows []domain.FactRecord) []string {
	start := make(map[string]domain.NullDate)
	for _, r := range rows {
		if r.MonthText == "" {
			continue
		}
		cur, ok := start[r.MonthText]
		if !ok || r.MonthStart.Before(cur) || (!cur.Valid && r.MonthStart.Valid) {
			start[r.MonthText] = r.MonthStart
		}
	}
	out := make([]string, 0, len(start))
	for m := range start {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := start[out[i]], start[out[j]]
		switch {
		case a.Valid && b.Valid && !a.Time.Equal(b.Time):
			return a.Time.Before(b.Time)
		case a.Valid != b.Valid:
			return a.Valid
		}
		return out[i] < out[j]
	})
	return out
}

func days(rows []domain.FactRecord) []string {
	grid := aggregate.Pivot(rows, factAll, factDay, func(domain.FactRecord) float64 { return 0 }, domain.Weekdays)
	out := make([]string, 0, len(grid.Columns))
	for _, d := range grid.Columns {
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}
