package presentation

import (
	"fmt"

	"klothdash/internal/aggregate"
	"klothdash/pkg/contracts/domain"
)

// Snapshot chart ids
const (
	ChartAcceptableByLocation = "acceptable_by_location"
	ChartAcceptableShare      = "acceptable_share_by_state"
	ChartStateComparison      = "acceptable_vs_rejected_by_state"
)

// SnapshotView is the filtered snapshot to present
type SnapshotView struct {
	Rows    []domain.AggregatedRecord
	Missing []string
	TopN    int
}

// SnapshotDashboard is the presentation of a filtered snapshot
type SnapshotDashboard struct {
	RecordCount int                       `json:"record_count"`
	TopN        int                       `json:"top_n"`
	Metrics     []Metric                  `json:"metrics"`
	Charts      []Chart                   `json:"charts"`
	Rows        []domain.AggregatedRecord `json:"rows,omitempty"`
}

// Metric returns the metric with id
func (d SnapshotDashboard) Metric(id string) (Metric, bool) {
	return findMetric(d.Metrics, id)
}

// Chart returns the chart with id
func (d SnapshotDashboard) Chart(id string) (Chart, bool) {
	return findChart(d.Charts, id)
}

var (
	snapState      = func(r domain.AggregatedRecord) string { return r.StateTerritory }
	snapLocation   = func(r domain.AggregatedRecord) string { return r.LocationName }
	snapSite       = func(r domain.AggregatedRecord) string { return r.SiteContractID }
	snapAcceptable = func(r domain.AggregatedRecord) float64 { return r.TotalAcceptableKG }
	snapRejected   = func(r domain.AggregatedRecord) float64 { return r.TotalRejectedKG }
)

// Snapshot builds the snapshot dashboard. Rows are not included; callers
// attach them when asked to.
func (b *Builder) Snapshot(view SnapshotView) (SnapshotDashboard, error) {
	if err := validateTopN(view.TopN); err != nil {
		return SnapshotDashboard{}, err
	}
	rows := view.Rows

	totalAcc := aggregate.Sum(rows, snapAcceptable)
	totalRej := aggregate.Sum(rows, snapRejected)
	sites := aggregate.DistinctCount(rows, snapSite)

	metrics := []Metric{
		b.kgMetric("total_acceptable", "Total Acceptable (KG)", totalAcc),
		b.kgMetric("total_rejected", "Total Rejected (KG)", totalRej),
		b.rateMetric("acceptance_rate", "Acceptance Rate", aggregate.AcceptanceRate(totalAcc, totalRej)),
		b.countMetric("unique_sites", "# Unique Sites", sites),
		b.kgMetric("avg_acceptable_per_site", "Avg Acceptable / Site (KG)", aggregate.Mean(totalAcc, sites)),
	}
	metrics = append(metrics, b.topMetrics("top_state", "Top State/FT", "Top State Acceptable (KG)",
		aggregate.ArgMax(rows, snapState, snapAcceptable))...)
	metrics = append(metrics, b.topMetrics("top_location", "Top Location", "Top Location Acceptable (KG)",
		aggregate.ArgMax(rows, snapLocation, snapAcceptable))...)

	return SnapshotDashboard{
		RecordCount: len(rows),
		TopN:        view.TopN,
		Metrics:     metrics,
		Charts: []Chart{
			b.acceptableByLocation(view),
			b.acceptableShare(view),
			b.stateComparison(view),
		},
	}, nil
}

func (b *Builder) acceptableByLocation(view SnapshotView) Chart {
	title := fmt.Sprintf("Acceptable Collection by Location (Top %d)", view.TopN)
	if col, ok := firstMissing(view.Missing, domain.ColLocationName, domain.ColTotalAcceptable); ok {
		return missingChart(ChartAcceptableByLocation, ChartBar, title, col)
	}
	groups := aggregate.GroupSum(view.Rows, snapLocation, snapAcceptable, aggregate.ByValueDesc)
	top, _ := aggregate.TopN(groups, view.TopN)
	return groupChart(ChartAcceptableByLocation, ChartBar, title, domain.ColLocationName, domain.ColTotalAcceptable, top)
}

func (b *Builder) acceptableShare(view SnapshotView) Chart {
	title := "Share of Acceptable Collection by State / Federal Territory"
	if col, ok := firstMissing(view.Missing, domain.ColStateTerritory, domain.ColTotalAcceptable); ok {
		return missingChart(ChartAcceptableShare, ChartPie, title, col)
	}
	groups := aggregate.GroupSum(view.Rows, snapState, snapAcceptable, aggregate.ByValueDesc)
	return groupChart(ChartAcceptableShare, ChartPie, title, domain.ColStateTerritory, domain.ColTotalAcceptable, groups)
}

func (b *Builder) stateComparison(view SnapshotView) Chart {
	title := "Accepted (KG) by State / Federal Territory"
	if col, ok := firstMissing(view.Missing, domain.ColStateTerritory, domain.ColTotalAcceptable, domain.ColTotalRejected); ok {
		return missingChart(ChartStateComparison, ChartStackedBar, title, col)
	}
	groups := aggregate.GroupSums(view.Rows, snapState, snapAcceptable, snapRejected)
	return stackedChart(ChartStateComparison, title, domain.ColStateTerritory,
		[]string{domain.ColTotalAcceptable, domain.ColTotalRejected}, groups)
}

func findMetric(metrics []Metric, id string) (Metric, bool) {
	for _, m := range metrics {
		if m.ID == id {
			return m, true
		}
	}
	return Metric{}, false
}

func findChart(charts []Chart, id string) (Chart, bool) {
	for _, c := range charts {
		if c.ID == id {
			return c, true
		}
	}
	return Chart{}, false
}
