package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"klothdash/pkg/contracts/domain"
)

// WriteWorkbook saves a workbook with one sheet holding header and rows and
// returns its path
func WriteWorkbook(t *testing.T, path, sheet string, header []string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	writeSheet(t, f, sheet, header, rows)
	require.NoError(t, f.SaveAs(path))
	return path
}

// AddSheet appends a sheet to an existing workbook
func AddSheet(t *testing.T, path, sheet string, header []string, rows [][]any) {
	t.Helper()

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.NewSheet(sheet)
	require.NoError(t, err)
	writeSheet(t, f, sheet, header, rows)
	require.NoError(t, f.Save())
}

func writeSheet(t *testing.T, f *excelize.File, sheet string, header []string, rows [][]any) {
	t.Helper()

	for c, h := range header {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
}

// WriteCSV saves header and rows as a CSV file and returns its path
func WriteCSV(t *testing.T, path string, header []string, rows [][]string) string {
	t.Helper()

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	w := csv.NewWriter(file)
	require.NoError(t, w.Write(header))
	require.NoError(t, w.WriteAll(rows))
	return path
}

// WriteSnapshotWorkbook saves records as a snapshot workbook in dir
func WriteSnapshotWorkbook(t *testing.T, dir string, records []domain.AggregatedRecord) string {
	t.Helper()

	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			r.SiteContractID,
			r.LocationName,
			r.SiteAddress,
			r.StateTerritory,
			r.TotalAcceptableKG,
			r.TotalRejectedKG,
		})
	}
	return WriteWorkbook(t, filepath.Join(dir, "aggregated.xlsx"), "Summary", domain.SnapshotColumns, rows)
}

// WriteFactWorkbook saves records on the fact sheet of a workbook in dir.
// Dates are stored as spreadsheet date cells.
func WriteFactWorkbook(t *testing.T, dir, sheet string, records []domain.FactRecord) string {
	t.Helper()

	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			r.WeekLabel,
			dateCell(r.Date),
			r.LocationName,
			r.Site,
			r.SiteAddress,
			r.WeightKG,
			dateCell(r.MonthStart),
			r.MonthText,
			r.DayOfWeek,
		})
	}
	return WriteWorkbook(t, filepath.Join(dir, "facts.xlsx"), sheet, domain.FactColumns, rows)
}

func dateCell(d domain.NullDate) any {
	if !d.Valid {
		return nil
	}
	return d.Time
}

// Date returns a valid NullDate for y-m-d
func Date(y int, m time.Month, d int) domain.NullDate {
	return domain.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// SampleSnapshot returns a small snapshot spanning three states
func SampleSnapshot() []domain.AggregatedRecord {
	return []domain.AggregatedRecord{
		{SiteContractID: "S1", LocationName: "Alpha Mall", SiteAddress: "1 Main St", StateTerritory: "NSW", TotalAcceptableKG: 100, TotalRejectedKG: 10},
		{SiteContractID: "S2", LocationName: "Beta Plaza", SiteAddress: "2 High St", StateTerritory: "VIC", TotalAcceptableKG: 50, TotalRejectedKG: 0},
		{SiteContractID: "S3", LocationName: "Gamma Centre", SiteAddress: "3 Bay Rd", StateTerritory: "NSW", TotalAcceptableKG: 30, TotalRejectedKG: 5},
		{SiteContractID: "S4", LocationName: "Delta Depot", SiteAddress: "4 Port Rd", StateTerritory: "QLD", TotalAcceptableKG: 20, TotalRejectedKG: 20},
	}
}

// SampleFacts returns one week of facts for the SampleSnapshot sites plus
// one site missing from the snapshot
func SampleFacts() []domain.FactRecord {
	fact := func(day int, weekday, location, site string, kg float64) domain.FactRecord {
		return domain.FactRecord{
			WeekLabel:    "Week 32",
			Date:         Date(2024, time.August, day),
			LocationName: location,
			Site:         site,
			SiteAddress:  location + " address",
			WeightKG:     kg,
			MonthStart:   Date(2024, time.August, 1),
			MonthText:    "August 2024",
			DayOfWeek:    weekday,
		}
	}
	return []domain.FactRecord{
		fact(5, "Monday", "Alpha Mall", "S1", 12),
		fact(5, "Monday", "Beta Plaza", "S2", 8),
		fact(6, "Tuesday", "Alpha Mall", "S1", 3),
		fact(7, "Wednesday", "Gamma Centre", "S3", 5),
		fact(10, "Saturday", "Epsilon Hub", "S9", 7),
	}
}
