package presentation

import (
	"fmt"

	"klothdash/internal/aggregate"
)

// ChartKind names the rendering a chart expects
type ChartKind string

const (
	ChartBar        ChartKind = "bar"
	ChartPie        ChartKind = "pie"
	ChartStackedBar ChartKind = "stacked_bar"
	ChartLine       ChartKind = "line"
	ChartHeatmap    ChartKind = "heatmap"
)

// Notices shown in place of an empty chart
const (
	NoticeNoRows        = "No data for the current filters."
	noticeMissingColumn = "No data: column %q is missing from the source."
)

// Metric is one summary card
type Metric struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Text    string  `json:"text,omitempty"`
	Display string  `json:"display"`
}

// Series is one named value sequence aligned with a chart's categories
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Chart is a renderer-agnostic chart specification. Bar, pie, line and
// stacked charts use Categories and Series; heatmaps use Grid.
type Chart struct {
	ID         string                `json:"id"`
	Kind       ChartKind             `json:"kind"`
	Title      string                `json:"title"`
	XLabel     string                `json:"x_label,omitempty"`
	YLabel     string                `json:"y_label,omitempty"`
	Categories []string              `json:"categories"`
	Series     []Series              `json:"series"`
	Grid       *aggregate.PivotTable `json:"grid,omitempty"`
	Empty      bool                  `json:"empty"`
	Notice     string                `json:"notice,omitempty"`
}

func groupChart(id string, kind ChartKind, title, xLabel, yLabel string, groups []aggregate.Group) Chart {
	values := make([]float64, len(groups))
	for i, g := range groups {
		values[i] = g.Value
	}
	c := Chart{
		ID:         id,
		Kind:       kind,
		Title:      title,
		XLabel:     xLabel,
		YLabel:     yLabel,
		Categories: aggregate.Keys(groups),
		Series:     []Series{{Name: yLabel, Values: values}},
	}
	if len(groups) == 0 {
		c.markEmpty(NoticeNoRows)
	}
	return c
}

func stackedChart(id, title, xLabel string, names []string, groups []aggregate.MultiGroup) Chart {
	c := Chart{
		ID:         id,
		Kind:       ChartStackedBar,
		Title:      title,
		XLabel:     xLabel,
		Categories: make([]string, len(groups)),
		Series:     make([]Series, len(names)),
	}
	for j, name := range names {
		c.Series[j] = Series{Name: name, Values: make([]float64, len(groups))}
	}
	for i, g := range groups {
		c.Categories[i] = g.Key
		for j := range names {
			c.Series[j].Values[i] = g.Values[j]
		}
	}
	if len(groups) == 0 {
		c.markEmpty(NoticeNoRows)
	}
	return c
}

func heatmapChart(id, title, xLabel, yLabel string, grid aggregate.PivotTable) Chart {
	c := Chart{
		ID:         id,
		Kind:       ChartHeatmap,
		Title:      title,
		XLabel:     xLabel,
		YLabel:     yLabel,
		Categories: grid.Columns,
		Series:     []Series{},
		Grid:       &grid,
	}
	if grid.IsEmpty() {
		c.markEmpty(NoticeNoRows)
	}
	return c
}

// missingChart is a placeholder for a chart whose source column is absent
func missingChart(id string, kind ChartKind, title, column string) Chart {
	c := Chart{ID: id, Kind: kind, Title: title, Categories: []string{}, Series: []Series{}}
	c.markEmpty(fmt.Sprintf(noticeMissingColumn, column))
	return c
}

func (c *Chart) markEmpty(notice string) {
	c.Empty = true
	c.Notice = notice
}

// firstMissing returns the first of required that is listed in missing
func firstMissing(missing []string, required ...string) (string, bool) {
	set := make(map[string]struct{}, len(missing))
	for _, m := range missing {
		set[m] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; ok {
			return r, true
		}
	}
	return "", false
}
