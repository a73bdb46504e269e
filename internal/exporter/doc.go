// Package exporter writes filtered views as delimited text or workbooks.
//
// CSVWriter handles headers, streaming and the optional UTF-8 BOM that
// spreadsheet programs use to detect the encoding. SnapshotTable and
// FactTable convert rows into export tables with the source column
// headers, so an exported file loads back through the dataset loader.
//
// Example usage:
//
//	table := exporter.SnapshotTable(rows)
//	err := exporter.New(logger).Write(w, exporter.FormatCSV, table, exporter.Options{BOM: true})
package exporter
