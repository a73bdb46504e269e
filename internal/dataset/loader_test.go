package dataset

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klothdash/internal/shared/testutil"
	"klothdash/pkg/contracts/domain"
)

func newTestLoader(t *testing.T) *Loader {
	logger, _ := testutil.NewTestLogger(t)
	return NewLoader(logger, nil)
}

func TestLoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteSnapshotWorkbook(t, dir, testutil.SampleSnapshot())

	table, err := newTestLoader(t).LoadSnapshot(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 4, table.Len())
	assert.Empty(t, table.Missing)
	assert.Equal(t, domain.SnapshotColumns, table.Columns)
	assert.Equal(t, testutil.SampleSnapshot(), table.Rows)
	assert.Equal(t, "Summary", table.Sheet)
}

func TestLoadSnapshotCoercion(t *testing.T) {
	dir := t.TempDir()
	header := []string{" site contract id ", "Location Name", "State/Federal Territory", "Total Acceptable (KG)", "Total Rejected (KG)"}
	rows := [][]any{
		{1001, "Alpha", "NSW", "1,234.5", "n/a"},
		{"S2", "Beta", "VIC", nil, 7},
		{nil, nil, nil, nil, nil},
	}
	path := testutil.WriteWorkbook(t, filepath.Join(dir, "snap.xlsx"), "Data", header, rows)

	table, err := newTestLoader(t).LoadSnapshot(context.Background(), path)
	require.NoError(t, err)

	require.Equal(t, 2, table.Len(), "blank rows are skipped")
	assert.Equal(t, []string{domain.ColSiteAddress}, table.Missing)

	first := table.Rows[0]
	assert.Equal(t, "1001", first.SiteContractID)
	assert.Equal(t, 1234.5, first.TotalAcceptableKG)
	assert.Equal(t, 0.0, first.TotalRejectedKG)
	assert.Equal(t, "", first.SiteAddress)

	second := table.Rows[1]
	assert.Equal(t, 0.0, second.TotalAcceptableKG)
	assert.Equal(t, 7.0, second.TotalRejectedKG)
}

func TestLoadSnapshotFromCSV(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteCSV(t, filepath.Join(dir, "snap.csv"),
		[]string{"\ufeffSite Contract ID", "Location Name", "Site Address", "State/Federal Territory", "Total Acceptable (KG)", "Total Rejected (KG)"},
		[][]string{{"S1", "Alpha", "1 Main", "NSW", "10", "1"}})

	table, err := newTestLoader(t).LoadSnapshot(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "S1", table.Rows[0].SiteContractID)
	assert.Empty(t, table.Missing)
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.xlsx")

	_, err := newTestLoader(t).LoadSnapshot(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingSourceFile))

	var missing *MissingSourceFileError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, path, missing.Path)
}

func TestLoadFacts(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFactWorkbook(t, dir, domain.DefaultFactSheet, testutil.SampleFacts())
	lookup := NewStateLookup(testutil.SampleSnapshot())

	table, err := newTestLoader(t).LoadFacts(context.Background(), path, "", lookup)
	require.NoError(t, err)

	require.Equal(t, 5, table.Len())
	assert.Empty(t, table.Missing)
	assert.Equal(t, domain.DefaultFactSheet, table.Sheet)

	first := table.Rows[0]
	assert.Equal(t, "2024-08-05", first.Date.String())
	assert.Equal(t, "2024-08-01", first.MonthStart.String())
	assert.Equal(t, "NSW", first.StateTerritory)
	assert.Equal(t, 12.0, first.WeightKG)
	assert.Equal(t, "Monday", first.DayOfWeek)

	last := table.Rows[4]
	assert.Equal(t, "S9", last.Site)
	assert.Equal(t, domain.UnknownState, last.StateTerritory)
}

func TestLoadFactsLogsUnmatchedSites(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFactWorkbook(t, dir, domain.DefaultFactSheet, testutil.SampleFacts())
	logger, handler := testutil.NewTestLogger(t)

	_, err := NewLoader(logger, nil).LoadFacts(context.Background(), path, "", NewStateLookup(testutil.SampleSnapshot()))
	require.NoError(t, err)

	assert.True(t, handler.ContainsMessage("fact rows without snapshot state"))
	assert.True(t, handler.ContainsAttr("rows", int64(1)))
	assert.True(t, handler.ContainsAttr("snapshot_sites", int64(4)))
}

func TestLoadFactsCoercion(t *testing.T) {
	dir := t.TempDir()
	header := []string{"Name", "Date", "LocationName", "Site", "WeightKG", "Day of Week"}
	rows := [][]any{
		{"Week 1", "2024-08-05", "Alpha", "S1", "5", "MONDAY"},
		{"Week 1", "not a date", "Alpha", "S1", "x", "funday"},
		{"Week 1", 45510, "Beta", "S2", 2.5, " tuesday "},
	}
	path := testutil.WriteWorkbook(t, filepath.Join(dir, "facts.xlsx"), "Fact", header, rows)

	table, err := newTestLoader(t).LoadFacts(context.Background(), path, "Fact", NewStateLookup(nil))
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	assert.ElementsMatch(t, []string{domain.ColFactSiteAddress, domain.ColFactMonthStart, domain.ColFactMonthText}, table.Missing)

	assert.Equal(t, "2024-08-05", table.Rows[0].Date.String())
	assert.Equal(t, "Monday", table.Rows[0].DayOfWeek)
	assert.False(t, table.Rows[0].MonthStart.Valid)

	assert.False(t, table.Rows[1].Date.Valid)
	assert.Equal(t, 0.0, table.Rows[1].WeightKG)
	assert.Equal(t, "funday", table.Rows[1].DayOfWeek)

	assert.Equal(t, "2024-08-06", table.Rows[2].Date.String())
	assert.Equal(t, 2.5, table.Rows[2].WeightKG)
	assert.Equal(t, "Tuesday", table.Rows[2].DayOfWeek)

	for _, r := range table.Rows {
		assert.Equal(t, domain.UnknownState, r.StateTerritory)
	}
}

func TestLoadFactsMissingSheet(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFactWorkbook(t, dir, "Daily", testutil.SampleFacts())

	_, err := newTestLoader(t).LoadFacts(context.Background(), path, "Fact", StateLookup{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingSheet))

	var missing *MissingSheetError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Fact", missing.Sheet)
	assert.Equal(t, []string{"Daily"}, missing.Available)
}

func TestLoadFactsSheetNameIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFactWorkbook(t, dir, "FACT", testutil.SampleFacts())

	table, err := newTestLoader(t).LoadFacts(context.Background(), path, "Fact", StateLookup{})
	require.NoError(t, err)
	assert.Equal(t, "FACT", table.Sheet)
}

func TestLoadFactsNamedSheetAmongOthers(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteSnapshotWorkbook(t, dir, testutil.SampleSnapshot())
	testutil.AddSheet(t, path, "Fact", []string{"Site", "WeightKG"}, [][]any{{"S2", 4}})

	table, err := newTestLoader(t).LoadFacts(context.Background(), path, "Fact", NewStateLookup(testutil.SampleSnapshot()))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "VIC", table.Rows[0].StateTerritory)
}

func TestLoadCancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteSnapshotWorkbook(t, dir, testutil.SampleSnapshot())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestLoader(t).LoadSnapshot(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"45509", "2024-08-05"},
		{"45509.75", "2024-08-05"},
		{"2024-08-05", "2024-08-05"},
		{"2024-08-05 13:45:00", "2024-08-05"},
		{"05/08/2024", "2024-08-05"},
		{"", ""},
		{"-3", ""},
		{"soon", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDate(tt.raw).String())
		})
	}
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 1234.5, parseNumber(" 1,234.5 "))
	assert.Equal(t, -2.0, parseNumber("-2"))
	assert.Equal(t, 0.0, parseNumber(""))
	assert.Equal(t, 0.0, parseNumber("NaN"))
	assert.Equal(t, 0.0, parseNumber("Inf"))
	assert.Equal(t, 0.0, parseNumber("12kg"))
}

func TestStateLookup(t *testing.T) {
	lookup := NewStateLookup([]domain.AggregatedRecord{
		{SiteContractID: "S1", StateTerritory: "NSW"},
		{SiteContractID: "S1", StateTerritory: "VIC"},
		{SiteContractID: "", StateTerritory: "QLD"},
		{SiteContractID: "S2", StateTerritory: "WA"},
	})

	assert.Equal(t, 2, lookup.Len())
	assert.Equal(t, "NSW", lookup.Resolve("S1"), "first occurrence wins")
	assert.Equal(t, "WA", lookup.Resolve("S2"))
	assert.Equal(t, domain.UnknownState, lookup.Resolve("S3"))
	assert.Equal(t, domain.UnknownState, StateLookup{}.Resolve("S1"))
}

func TestLoaderClock(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteSnapshotWorkbook(t, dir, testutil.SampleSnapshot())

	loader := newTestLoader(t)
	fixed := time.Date(2024, 8, 5, 9, 0, 0, 0, time.UTC)
	loader.now = func() time.Time { return fixed }

	table, err := loader.LoadSnapshot(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, fixed, table.LoadedAt)
}
