package exporter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for formats other than CSV and XLSX
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat accepts "csv" or "xlsx" in any case; blank means CSV
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename returns the download name of t in format f
func (f Format) Filename(t Table) string {
	return t.Name + "." + string(f)
}

// Options configures an export
type Options struct {
	// BOM prefixes CSV output with a UTF-8 byte order mark
	BOM bool
}

// Exporter writes tables in any supported format
type Exporter struct {
	csv    *CSVWriter
	logger *slog.Logger
}

// New creates an exporter
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		csv:    NewCSVWriter(logger),
		logger: logger.With(slog.String("component", "exporter")),
	}
}

// Write encodes t to w
func (e *Exporter) Write(w io.Writer, format Format, t Table, opts Options) error {
	var err error
	switch format {
	case FormatCSV:
		err = e.csv.WriteCSV(w, WriteOptions{Headers: t.Headers, Records: t.Records, BOMPrefix: opts.BOM})
	case FormatXLSX:
		err = writeXLSX(w, t)
	default:
		err = fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		e.logger.Error("export failed",
			slog.String("table", t.Name),
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return err
	}

	e.logger.Debug("export written",
		slog.String("table", t.Name),
		slog.String("format", string(format)),
		slog.Int("rows", t.Len()))
	return nil
}
