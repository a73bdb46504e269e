package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klothdash/internal/dataset"
	"klothdash/internal/shared/testutil"
	"klothdash/pkg/contracts/domain"
)

func factsWithStates() []domain.FactRecord {
	lookup := dataset.NewStateLookup(testutil.SampleSnapshot())
	facts := testutil.SampleFacts()
	for i := range facts {
		facts[i].StateTerritory = lookup.Resolve(facts[i].Site)
	}
	return facts
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"csv", FormatCSV, false},
		{" XLSX ", FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	assert.Equal(t, "kloth_snapshot_filtered.csv", FormatCSV.Filename(SnapshotTable(nil)))
	assert.Equal(t, "kloth_facts_filtered.xlsx", FormatXLSX.Filename(FactTable(nil)))
	assert.Contains(t, FormatCSV.ContentType(), "text/csv")
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "100", formatFloat(100))
	assert.Equal(t, "0.1", formatFloat(0.1))
	assert.Equal(t, "1234.5", formatFloat(1234.5))
	assert.Equal(t, "-3.25", formatFloat(-3.25))
}

func TestWriteCSV(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	e := New(logger)

	var buf bytes.Buffer
	require.NoError(t, e.Write(&buf, FormatCSV, SnapshotTable(testutil.SampleSnapshot()), Options{}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Site Contract ID,Location Name,Site Address,State/Federal Territory,Total Acceptable (KG),Total Rejected (KG)", lines[0])
	assert.Equal(t, "S1,Alpha Mall,1 Main St,NSW,100,10", lines[1])
}

func TestWriteCSVWithBOM(t *testing.T) {
	e := New(nil)

	var buf bytes.Buffer
	require.NoError(t, e.Write(&buf, FormatCSV, SnapshotTable(nil), Options{BOM: true}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))
	assert.Equal(t, string(utf8BOM)+strings.Join(domain.SnapshotColumns, ",")+"\n", buf.String())
}

func TestWriteCSVQuotesFields(t *testing.T) {
	rows := []domain.AggregatedRecord{{SiteContractID: "S1", LocationName: "Mall, \"East\"", SiteAddress: "Line 1\nLine 2"}}

	var buf bytes.Buffer
	require.NoError(t, New(nil).Write(&buf, FormatCSV, SnapshotTable(rows), Options{}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Mall, \"East\"", records[1][1])
	assert.Equal(t, "Line 1\nLine 2", records[1][2])
}

func TestStreamWriterCounts(t *testing.T) {
	var buf bytes.Buffer
	stream, err := NewCSVWriter(nil).NewStreamWriter(&buf, []string{"a"}, false)
	require.NoError(t, err)

	require.NoError(t, stream.WriteRecord([]string{"1"}))
	require.NoError(t, stream.WriteRecord([]string{"2"}))
	require.NoError(t, stream.Flush())

	assert.Equal(t, 2, stream.Count())
	assert.Equal(t, "a\n1\n2\n", buf.String())
}

func writeTo(t *testing.T, path string, format Format, table Table, opts Options) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, New(nil).Write(&buf, format, table, opts))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestSnapshotRoundTrip(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	loader := dataset.NewLoader(logger, nil)
	rows := testutil.SampleSnapshot()
	rows[0].TotalAcceptableKG = 1234.56

	for _, format := range []Format{FormatCSV, FormatXLSX} {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "snapshot."+string(format))
			writeTo(t, path, format, SnapshotTable(rows), Options{BOM: true})

			table, err := loader.LoadSnapshot(context.Background(), path)
			require.NoError(t, err)
			assert.Empty(t, table.Missing)
			assert.Equal(t, rows, table.Rows)
		})
	}
}

func TestFactRoundTrip(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	loader := dataset.NewLoader(logger, nil)
	lookup := dataset.NewStateLookup(testutil.SampleSnapshot())
	rows := factsWithStates()

	for _, format := range []Format{FormatCSV, FormatXLSX} {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "facts."+string(format))
			writeTo(t, path, format, FactTable(rows), Options{})

			table, err := loader.LoadFacts(context.Background(), path, domain.DefaultFactSheet, lookup)
			require.NoError(t, err)
			assert.Empty(t, table.Missing)
			require.Equal(t, len(rows), table.Len())
			assert.Equal(t, rows, table.Rows)
		})
	}
}
