package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"klothdash/internal/infrastructure"
	"klothdash/pkg/contracts/domain"
)

const (
	sourceSnapshot = "snapshot"
	sourceFacts    = "facts"
)

// Loader reads the snapshot workbook and the fact sheet into typed tables
type Loader struct {
	logger  *slog.Logger
	metrics *infrastructure.DashboardMetrics
	now     func() time.Time
}

// NewLoader creates a new Loader. metrics may be nil.
func NewLoader(logger *slog.Logger, metrics *infrastructure.DashboardMetrics) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:  logger.With(slog.String("component", "dataset_loader")),
		metrics: metrics,
		now:     time.Now,
	}
}

// LoadSnapshot reads the first sheet of the snapshot workbook (or a CSV export of it)
func (l *Loader) LoadSnapshot(ctx context.Context, path string) (*Table[domain.AggregatedRecord], error) {
	start := l.now()
	table, err := l.loadSnapshot(ctx, path)
	infrastructure.RecordDatasetLoad(ctx, l.metrics, sourceSnapshot, table.Len(), time.Since(start), err)
	return table, err
}

func (l *Loader) loadSnapshot(ctx context.Context, path string) (*Table[domain.AggregatedRecord], error) {
	rows, sheet, err := readRows(ctx, path, "")
	if err != nil {
		return nil, err
	}

	table := &Table[domain.AggregatedRecord]{
		Source:   path,
		Sheet:    sheet,
		LoadedAt: l.now(),
	}
	if len(rows) == 0 {
		table.Missing = append([]string(nil), domain.SnapshotColumns...)
		l.logger.WarnContext(ctx, "snapshot workbook is empty", slog.String("path", path))
		return table, nil
	}

	idx := indexHeader(rows[0])
	table.Columns, table.Missing = idx.partition(domain.SnapshotColumns)

	records := make([]domain.AggregatedRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		records = append(records, domain.AggregatedRecord{
			SiteContractID:    parseText(idx.cell(row, domain.ColSiteContractID)),
			LocationName:      parseText(idx.cell(row, domain.ColLocationName)),
			SiteAddress:       parseText(idx.cell(row, domain.ColSiteAddress)),
			StateTerritory:    parseText(idx.cell(row, domain.ColStateTerritory)),
			TotalAcceptableKG: parseNumber(idx.cell(row, domain.ColTotalAcceptable)),
			TotalRejectedKG:   parseNumber(idx.cell(row, domain.ColTotalRejected)),
		})
	}
	table.Rows = records

	l.logSchema(ctx, sourceSnapshot, table.Source, table.Sheet, len(records), table.Missing)
	return table, nil
}

// LoadFacts reads the fact sheet and derives each row's state through lookup.
// An empty sheet name selects domain.DefaultFactSheet.
func (l *Loader) LoadFacts(ctx context.Context, path, sheet string, lookup StateLookup) (*Table[domain.FactRecord], error) {
	start := l.now()
	table, err := l.loadFacts(ctx, path, sheet, lookup)
	infrastructure.RecordDatasetLoad(ctx, l.metrics, sourceFacts, table.Len(), time.Since(start), err)
	return table, err
}

func (l *Loader) loadFacts(ctx context.Context, path, sheet string, lookup StateLookup) (*Table[domain.FactRecord], error) {
	if sheet == "" {
		sheet = domain.DefaultFactSheet
	}
	rows, sheet, err := readRows(ctx, path, sheet)
	if err != nil {
		return nil, err
	}

	table := &Table[domain.FactRecord]{
		Source:   path,
		Sheet:    sheet,
		LoadedAt: l.now(),
	}
	if len(rows) == 0 {
		table.Missing = append([]string(nil), domain.FactColumns...)
		l.logger.WarnContext(ctx, "fact sheet is empty", slog.String("path", path), slog.String("sheet", sheet))
		return table, nil
	}

	idx := indexHeader(rows[0])
	table.Columns, table.Missing = idx.partition(domain.FactColumns)
	weekdays := newWeekdayNormalizer()

	records := make([]domain.FactRecord, 0, len(rows)-1)
	unmatched := 0
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		site := parseText(idx.cell(row, domain.ColFactSite))
		state := lookup.Resolve(site)
		if state == domain.UnknownState {
			unmatched++
		}
		records = append(records, domain.FactRecord{
			WeekLabel:      parseText(idx.cell(row, domain.ColFactWeek)),
			Date:           parseDate(idx.cell(row, domain.ColFactDate)),
			LocationName:   parseText(idx.cell(row, domain.ColFactLocationName)),
			Site:           site,
			SiteAddress:    parseText(idx.cell(row, domain.ColFactSiteAddress)),
			WeightKG:       parseNumber(idx.cell(row, domain.ColFactWeightKG)),
			MonthStart:     parseDate(idx.cell(row, domain.ColFactMonthStart)),
			MonthText:      parseText(idx.cell(row, domain.ColFactMonthText)),
			DayOfWeek:      weekdays.normalize(parseText(idx.cell(row, domain.ColFactDayOfWeek))),
			StateTerritory: state,
		})
	}
	table.Rows = records

	if unmatched > 0 {
		l.logger.DebugContext(ctx, "fact rows without snapshot state",
			slog.Int("rows", unmatched),
			slog.Int("snapshot_sites", lookup.Len()),
			slog.String("state", domain.UnknownState))
	}
	l.logSchema(ctx, sourceFacts, table.Source, table.Sheet, len(records), table.Missing)
	return table, nil
}

func (l *Loader) logSchema(ctx context.Context, source, path, sheet string, rows int, missing []string) {
	if len(missing) > 0 {
		l.logger.WarnContext(ctx, "source is missing expected columns",
			slog.String("source", source),
			slog.String("path", path),
			slog.Any("missing", missing))
	}
	l.logger.InfoContext(ctx, "source loaded",
		slog.String("source", source),
		slog.String("path", path),
		slog.String("sheet", sheet),
		slog.Int("rows", rows))
}

// readRows returns all rows of the requested sheet, header first. CSV files
// have a single implicit sheet. An empty sheet selects the first one.
func readRows(ctx context.Context, path, sheet string) ([][]string, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", &MissingSourceFileError{Path: path}
		}
		return nil, "", fmt.Errorf("stat %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		rows, err := readCSV(path)
		return rows, sheet, err
	}
	return readWorkbook(path, sheet)
}

func readWorkbook(path, sheet string) ([][]string, string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	name, ok := resolveSheet(sheets, sheet)
	if !ok {
		return nil, "", &MissingSheetError{Path: path, Sheet: sheet, Available: sheets}
	}

	// raw values keep date cells as serial numbers regardless of number format
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, "", fmt.Errorf("read sheet %q of %s: %w", name, path, err)
	}
	return rows, name, nil
}

// resolveSheet picks the sheet by exact name, then by case-insensitive name.
// An empty request selects the first sheet.
func resolveSheet(sheets []string, want string) (string, bool) {
	if len(sheets) == 0 {
		return "", false
	}
	if want == "" {
		return sheets[0], true
	}
	for _, s := range sheets {
		if s == want {
			return s, true
		}
	}
	for _, s := range sheets {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(want)) {
			return s, true
		}
	}
	return "", false
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv %s: %w", path, err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
