package exporter

import (
	"klothdash/pkg/contracts/domain"
)

// Table is a view ready for export. Records hold the text form used by CSV;
// Cells hold typed values for workbooks.
type Table struct {
	Name    string
	Sheet   string
	Headers []string
	Records [][]string
	Cells   [][]any
}

// Len returns the number of data rows
func (t Table) Len() int {
	return len(t.Records)
}

// SnapshotTable converts snapshot rows using the snapshot column headers
func SnapshotTable(rows []domain.AggregatedRecord) Table {
	t := Table{
		Name:    "kloth_snapshot_filtered",
		Sheet:   "Snapshot",
		Headers: domain.SnapshotColumns,
		Records: make([][]string, 0, len(rows)),
		Cells:   make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Records = append(t.Records, []string{
			r.SiteContractID,
			r.LocationName,
			r.SiteAddress,
			r.StateTerritory,
			formatFloat(r.TotalAcceptableKG),
			formatFloat(r.TotalRejectedKG),
		})
		t.Cells = append(t.Cells, []any{
			r.SiteContractID,
			r.LocationName,
			r.SiteAddress,
			r.StateTerritory,
			r.TotalAcceptableKG,
			r.TotalRejectedKG,
		})
	}
	return t
}

// FactHeaders are the fact sheet columns followed by the derived state
func FactHeaders() []string {
	headers := make([]string, 0, len(domain.FactColumns)+1)
	headers = append(headers, domain.FactColumns...)
	return append(headers, domain.ColStateTerritory)
}

// FactTable converts fact rows using the fact sheet headers plus the
// derived state column
func FactTable(rows []domain.FactRecord) Table {
	t := Table{
		Name:    "kloth_facts_filtered",
		Sheet:   domain.DefaultFactSheet,
		Headers: FactHeaders(),
		Records: make([][]string, 0, len(rows)),
		Cells:   make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Records = append(t.Records, []string{
			r.WeekLabel,
			formatDate(r.Date),
			r.LocationName,
			r.Site,
			r.SiteAddress,
			formatFloat(r.WeightKG),
			formatDate(r.MonthStart),
			r.MonthText,
			r.DayOfWeek,
			r.StateTerritory,
		})
		t.Cells = append(t.Cells, []any{
			r.WeekLabel,
			dateCell(r.Date),
			r.LocationName,
			r.Site,
			r.SiteAddress,
			r.WeightKG,
			dateCell(r.MonthStart),
			r.MonthText,
			r.DayOfWeek,
			r.StateTerritory,
		})
	}
	return t
}
