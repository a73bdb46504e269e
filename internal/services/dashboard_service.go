package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"klothdash/internal/aggregate"
	"klothdash/internal/config"
	"klothdash/internal/dataset"
	apierrors "klothdash/internal/errors"
	"klothdash/internal/exporter"
	"klothdash/internal/filter"
	"klothdash/internal/infrastructure"
	"klothdash/internal/presentation"
	api "klothdash/pkg/contracts/api/v1"
	"klothdash/pkg/contracts/domain"
)

// Views named in metrics and spans
const (
	ViewSnapshot = "snapshot"
	ViewFacts    = "facts"
)

// DatasetStore serves the loaded tables
type DatasetStore interface {
	Snapshot(ctx context.Context) (*dataset.SnapshotTable, error)
	Facts(ctx context.Context) (*dataset.FactTable, error)
}

// DashboardService runs filter, aggregation and presentation over the
// cached tables. It holds no mutable state of its own.
type DashboardService struct {
	store    DatasetStore
	builder  *presentation.Builder
	exporter *exporter.Exporter
	limits   config.DashboardConfig
	metrics  *infrastructure.DashboardMetrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewDashboardService creates a new dashboard service. metrics may be nil.
func NewDashboardService(store DatasetStore, limits config.DashboardConfig, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if limits.TopNDefault == 0 {
		limits.TopNDefault = config.DefaultTopN
	}
	return &DashboardService{
		store:    store,
		builder:  presentation.NewBuilder(),
		exporter: exporter.New(logger),
		limits:   limits,
		metrics:  metrics,
		tracer:   otel.Tracer("klothdash/services"),
		logger:   logger.With(slog.String("component", "dashboard_service")),
	}
}

// Formatter returns the formatter used for KPI text
func (s *DashboardService) Formatter() *presentation.Formatter {
	return s.builder.Formatter()
}

// FilteredSnapshot loads the snapshot and applies the query's filters
func (s *DashboardService) FilteredSnapshot(ctx context.Context, q api.SnapshotQuery) (*dataset.SnapshotTable, []domain.AggregatedRecord, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.filter_snapshot")
	defer span.End()

	table, err := s.store.Snapshot(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, nil, err
	}

	criteria := SnapshotCriteria(q)
	active := criteria.ActiveCount()
	criteria.Acceptable = acceptableWithin(q, presentation.AcceptableBounds(table.Rows))
	rows := criteria.Apply(table.Rows)
	span.SetAttributes(
		attribute.Int("filter.active", active),
		attribute.Int("rows.total", table.Len()),
		attribute.Int("rows.filtered", len(rows)),
	)
	return table, rows, nil
}

// Snapshot builds the snapshot dashboard for q
func (s *DashboardService) Snapshot(ctx context.Context, q api.SnapshotQuery) (presentation.SnapshotDashboard, error) {
	start := time.Now()
	table, rows, err := s.FilteredSnapshot(ctx, q)
	if err != nil {
		return presentation.SnapshotDashboard{}, err
	}

	topN, err := s.topN(q.TopN)
	if err != nil {
		return presentation.SnapshotDashboard{}, err
	}

	_, span := s.tracer.Start(ctx, "dashboard.present_snapshot")
	dash, err := s.builder.Snapshot(presentation.SnapshotView{
		Rows:    rows,
		Missing: table.Missing,
		TopN:    topN,
	})
	span.End()
	if err != nil {
		return presentation.SnapshotDashboard{}, err
	}

	if q.IncludeRows {
		dash.Rows = capRows(rows, s.limits.MaxRows)
	}

	infrastructure.RecordDashboardQuery(ctx, s.metrics, ViewSnapshot, len(rows))
	s.logger.DebugContext(ctx, "snapshot dashboard built",
		slog.Int("rows", len(rows)),
		slog.Int("top_n", dash.TopN),
		slog.Duration("duration", time.Since(start)))
	return dash, nil
}

// SnapshotOptions returns the snapshot filter choices over the full table
func (s *DashboardService) SnapshotOptions(ctx context.Context) (presentation.SnapshotOptions, error) {
	table, err := s.store.Snapshot(ctx)
	if err != nil {
		return presentation.SnapshotOptions{}, err
	}
	return presentation.SnapshotOptionsFor(table.Rows), nil
}

// FilteredFacts loads the fact table and applies the query's filters
func (s *DashboardService) FilteredFacts(ctx context.Context, q api.FactQuery) (*dataset.FactTable, []domain.FactRecord, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.filter_facts")
	defer span.End()

	criteria, err := FactCriteria(q)
	if err != nil {
		return nil, nil, err
	}

	table, err := s.store.Facts(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, nil, err
	}

	rows := criteria.Apply(table.Rows)
	span.SetAttributes(
		attribute.Int("filter.active", criteria.ActiveCount()),
		attribute.Int("rows.total", table.Len()),
		attribute.Int("rows.filtered", len(rows)),
	)
	return table, rows, nil
}

// Facts builds the daily fact dashboard for q
func (s *DashboardService) Facts(ctx context.Context, q api.FactQuery) (presentation.FactDashboard, error) {
	start := time.Now()
	table, rows, err := s.FilteredFacts(ctx, q)
	if err != nil {
		return presentation.FactDashboard{}, err
	}

	topN, err := s.topN(q.TopN)
	if err != nil {
		return presentation.FactDashboard{}, err
	}

	_, span := s.tracer.Start(ctx, "dashboard.present_facts")
	dash, err := s.builder.Facts(presentation.FactView{
		Rows:    rows,
		Missing: table.Missing,
		TopN:    topN,
	})
	span.End()
	if err != nil {
		return presentation.FactDashboard{}, err
	}

	if q.IncludeRows {
		dash.Rows = capRows(rows, s.limits.MaxRows)
	}

	infrastructure.RecordDashboardQuery(ctx, s.metrics, ViewFacts, len(rows))
	s.logger.DebugContext(ctx, "fact dashboard built",
		slog.Int("rows", len(rows)),
		slog.Int("top_n", dash.TopN),
		slog.Duration("duration", time.Since(start)))
	return dash, nil
}

// FactOptions returns the fact filter choices over the full table
func (s *DashboardService) FactOptions(ctx context.Context) (presentation.FactOptions, error) {
	table, err := s.store.Facts(ctx)
	if err != nil {
		return presentation.FactOptions{}, err
	}
	return presentation.FactOptionsFor(table.Rows), nil
}

// SnapshotExport returns the filtered snapshot as an export table
func (s *DashboardService) SnapshotExport(ctx context.Context, q api.SnapshotQuery) (exporter.Table, error) {
	_, rows, err := s.FilteredSnapshot(ctx, q)
	if err != nil {
		return exporter.Table{}, err
	}
	return exporter.SnapshotTable(rows), nil
}

// FactExport returns the filtered facts as an export table
func (s *DashboardService) FactExport(ctx context.Context, q api.FactQuery) (exporter.Table, error) {
	_, rows, err := s.FilteredFacts(ctx, q)
	if err != nil {
		return exporter.Table{}, err
	}
	return exporter.FactTable(rows), nil
}

// WriteExport encodes t to w and records the export
func (s *DashboardService) WriteExport(ctx context.Context, w io.Writer, view string, format exporter.Format, t exporter.Table, opts exporter.Options) error {
	ctx, span := s.tracer.Start(ctx, "dashboard.export", trace.WithAttributes(
		attribute.String("view", view),
		attribute.String("format", string(format)),
		attribute.Int("rows", t.Len()),
	))
	defer span.End()

	if err := s.exporter.Write(w, format, t, opts); err != nil {
		infrastructure.RecordError(ctx, err)
		return apierrors.NewExportError(fmt.Sprintf("failed to write %s export", format), err).
			WithContext("view", view).
			WithContext("format", string(format))
	}
	infrastructure.RecordExport(ctx, s.metrics, view, string(format), t.Len())
	s.logger.InfoContext(ctx, "export written",
		slog.String("view", view),
		slog.String("format", string(format)),
		slog.Int("rows", t.Len()))
	return nil
}

// topN resolves an unset top-n to the configured default and enforces the
// configured bounds
func (s *DashboardService) topN(requested int) (int, error) {
	if requested == 0 {
		return s.limits.TopNDefault, nil
	}
	lo, hi := s.limits.TopNMin, s.limits.TopNMax
	if lo == 0 {
		lo = config.MinTopN
	}
	if hi == 0 {
		hi = config.MaxTopN
	}
	if requested < lo || requested > hi {
		return 0, fmt.Errorf("%w: got %d, want %d..%d", aggregate.ErrInvalidTopN, requested, lo, hi)
	}
	return requested, nil
}

// SnapshotCriteria maps a snapshot query to filter criteria. A range bound
// that was not supplied is open.
func SnapshotCriteria(q api.SnapshotQuery) filter.SnapshotCriteria {
	return filter.SnapshotCriteria{
		States:        q.States,
		Sites:         q.Sites,
		LocationQuery: q.Name,
		AddressQuery:  q.Address,
		Acceptable:    openRange(q.AcceptableMin, q.AcceptableMax),
	}
}

// FactCriteria maps a fact query to filter criteria
func FactCriteria(q api.FactQuery) (filter.FactCriteria, error) {
	dates, err := dateRange(q.From, q.To)
	if err != nil {
		return filter.FactCriteria{}, err
	}
	return filter.FactCriteria{
		States:        q.States,
		Sites:         q.Sites,
		Weeks:         q.Weeks,
		Months:        q.Months,
		Days:          q.Days,
		LocationQuery: q.Location,
		AddressQuery:  q.Address,
		Weight:        openRange(q.WeightMin, q.WeightMax),
		Dates:         dates,
	}, nil
}

// acceptableWithin fills the acceptable bounds q leaves out with the slider
// bounds, so rows below zero stay hidden unless asked for
func acceptableWithin(q api.SnapshotQuery, bounds filter.Range) *filter.Range {
	r := bounds
	if q.AcceptableMin != nil {
		r.Lo = *q.AcceptableMin
	}
	if q.AcceptableMax != nil {
		r.Hi = *q.AcceptableMax
	}
	return &r
}

func openRange(lo, hi *float64) *filter.Range {
	if lo == nil && hi == nil {
		return nil
	}
	r := &filter.Range{Lo: math.Inf(-1), Hi: math.Inf(1)}
	if lo != nil {
		r.Lo = *lo
	}
	if hi != nil {
		r.Hi = *hi
	}
	return r
}

func dateRange(from, to string) (*filter.DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	var r filter.DateRange
	var err error
	if from != "" {
		if r.Start, err = time.Parse(domain.DateLayout, from); err != nil {
			return nil, apierrors.ErrValidation(api.ParamFrom, fmt.Sprintf("%s must be a date in YYYY-MM-DD form", api.ParamFrom))
		}
	}
	if to != "" {
		if r.End, err = time.Parse(domain.DateLayout, to); err != nil {
			return nil, apierrors.ErrValidation(api.ParamTo, fmt.Sprintf("%s must be a date in YYYY-MM-DD form", api.ParamTo))
		}
	}
	return &r, nil
}

func capRows[T any](rows []T, max int) []T {
	if max > 0 && len(rows) > max {
		return rows[:max]
	}
	if rows == nil {
		return []T{}
	}
	return rows
}
