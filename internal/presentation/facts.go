package presentation

import (
	"fmt"

	"klothdash/internal/aggregate"
	"klothdash/pkg/contracts/domain"
)

// Fact chart ids
const (
	ChartWeightOverTime     = "weight_over_time"
	ChartWeightByDayOfWeek  = "weight_by_day_of_week"
	ChartTopLocations       = "top_locations_by_weight"
	ChartLocationDayHeatmap = "location_day_heatmap"
)

// FactView is the filtered fact table to present
type FactView struct {
	Rows    []domain.FactRecord
	Missing []string
	TopN    int
}

// FactDashboard is the presentation of filtered daily facts
type FactDashboard struct {
	RecordCount int                 `json:"record_count"`
	TopN        int                 `json:"top_n"`
	Metrics     []Metric            `json:"metrics"`
	Charts      []Chart             `json:"charts"`
	Rows        []domain.FactRecord `json:"rows,omitempty"`
}

// Metric returns the metric with id
func (d FactDashboard) Metric(id string) (Metric, bool) {
	return findMetric(d.Metrics, id)
}

// Chart returns the chart with id
func (d FactDashboard) Chart(id string) (Chart, bool) {
	return findChart(d.Charts, id)
}

var (
	factLocation = func(r domain.FactRecord) string { return r.LocationName }
	factState    = func(r domain.FactRecord) string { return r.StateTerritory }
	factSite     = func(r domain.FactRecord) string { return r.Site }
	factDay      = func(r domain.FactRecord) string { return r.DayOfWeek }
	factDate     = func(r domain.FactRecord) string { return r.Date.String() }
	factWeight   = func(r domain.FactRecord) float64 { return r.WeightKG }
	factAll      = func(domain.FactRecord) string { return "" }
)

// Facts builds the daily fact dashboard
func (b *Builder) Facts(view FactView) (FactDashboard, error) {
	if err := validateTopN(view.TopN); err != nil {
		return FactDashboard{}, err
	}
	rows := view.Rows
	dated := datedFacts(rows)

	total := aggregate.Sum(rows, factWeight)
	days := aggregate.DistinctCount(dated, factDate)

	metrics := []Metric{
		b.kgMetric("total_weight", "Total Weight (KG)", total),
		b.countMetric("unique_sites", "# Unique Sites", aggregate.DistinctCount(rows, factSite)),
		b.countMetric("days_with_data", "Days with Data", days),
		b.kgMetric("avg_daily_weight", "Avg Daily Weight (KG)", aggregate.Mean(aggregate.Sum(dated, factWeight), days)),
	}
	metrics = append(metrics, b.topMetrics("top_location", "Top Location", "Top Location Weight (KG)",
		aggregate.ArgMax(rows, factLocation, factWeight))...)
	metrics = append(metrics, b.topMetrics("top_state", "Top State/FT", "Top State Weight (KG)",
		aggregate.ArgMax(rows, factState, factWeight))...)

	return FactDashboard{
		RecordCount: len(rows),
		TopN:        view.TopN,
		Metrics:     metrics,
		Charts: []Chart{
			b.weightOverTime(view, dated),
			b.weightByDayOfWeek(view),
			b.topLocations(view),
			b.locationDayHeatmap(view),
		},
	}, nil
}

func (b *Builder) weightOverTime(view FactView, dated []domain.FactRecord) Chart {
	title := "Daily Weight (KG)"
	if col, ok := firstMissing(view.Missing, domain.ColFactDate, domain.ColFactWeightKG); ok {
		return missingChart(ChartWeightOverTime, ChartLine, title, col)
	}
	groups := aggregate.GroupSum(dated, factDate, factWeight, aggregate.ByKeyAsc)
	return groupChart(ChartWeightOverTime, ChartLine, title, domain.ColFactDate, domain.ColFactWeightKG, groups)
}

func (b *Builder) weightByDayOfWeek(view FactView) Chart {
	title := "Weight (KG) by Day of Week"
	if col, ok := firstMissing(view.Missing, domain.ColFactDayOfWeek, domain.ColFactWeightKG); ok {
		return missingChart(ChartWeightByDayOfWeek, ChartBar, title, col)
	}
	grid := aggregate.Pivot(view.Rows, factAll, factDay, factWeight, domain.Weekdays)
	groups := make([]aggregate.Group, len(grid.Columns))
	for j, day := range grid.Columns {
		groups[j] = aggregate.Group{Key: day, Value: grid.Cells[0][j]}
	}
	return groupChart(ChartWeightByDayOfWeek, ChartBar, title, domain.ColFactDayOfWeek, domain.ColFactWeightKG, groups)
}

func (b *Builder) topLocations(view FactView) Chart {
	title := fmt.Sprintf("Top %d Locations by Weight (KG)", view.TopN)
	if col, ok := firstMissing(view.Missing, domain.ColFactLocationName, domain.ColFactWeightKG); ok {
		return missingChart(ChartTopLocations, ChartBar, title, col)
	}
	top, _ := aggregate.TopN(aggregate.GroupSum(view.Rows, factLocation, factWeight, aggregate.ByValueDesc), view.TopN)
	return groupChart(ChartTopLocations, ChartBar, title, domain.ColFactLocationName, domain.ColFactWeightKG, top)
}

func (b *Builder) locationDayHeatmap(view FactView) Chart {
	title := fmt.Sprintf("Weight (KG) by Location and Day of Week (Top %d)", view.TopN)
	if col, ok := firstMissing(view.Missing, domain.ColFactLocationName, domain.ColFactDayOfWeek, domain.ColFactWeightKG); ok {
		return missingChart(ChartLocationDayHeatmap, ChartHeatmap, title, col)
	}
	top, _ := aggregate.TopN(aggregate.GroupSum(view.Rows, factLocation, factWeight, aggregate.ByValueDesc), view.TopN)
	grid := aggregate.Pivot(view.Rows, factLocation, factDay, factWeight, domain.Weekdays).RestrictRows(aggregate.Keys(top))
	return heatmapChart(ChartLocationDayHeatmap, title, domain.ColFactDayOfWeek, domain.ColFactLocationName, grid)
}

func datedFacts(rows []domain.FactRecord) []domain.FactRecord {
	out := make([]domain.FactRecord, 0, len(rows))
	for _, r := range rows {
		if r.Date.Valid {
			out = append(out, r)
		}
	}
	return out
}
