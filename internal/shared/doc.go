// Package shared groups code used by several dashboard packages that does not
// belong to one layer. It currently holds only the testutil subpackage.
//
// # Test Utilities
//
// testutil provides:
//
//   - BufferedSlogHandler and NewTestLogger, a slog handler that records
//     entries in memory, with AssertLogContains and AssertNoErrors
//   - excelize workbook fixtures: WriteWorkbook, AddSheet and WriteCSV for
//     arbitrary sheets, WriteSnapshotWorkbook and WriteFactWorkbook for the
//     two dashboard sources, and SampleSnapshot / SampleFacts as seed data
//
// Example usage:
//
//	func TestLoadSnapshot(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    path := testutil.WriteSnapshotWorkbook(t, t.TempDir(), testutil.SampleSnapshot())
//
//	    table, err := dataset.NewLoader(logger, nil).LoadSnapshot(context.Background(), path)
//	    require.NoError(t, err)
//	    assert.Len(t, table.Rows, 4)
//	    testutil.AssertNoErrors(t, handler)
//	}
package shared
