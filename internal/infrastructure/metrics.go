package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DashboardMetrics holds the application-specific instruments
type DashboardMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Dataset metrics
	DatasetLoadsTotal   metric.Int64Counter
	DatasetLoadDuration metric.Float64Histogram
	DatasetRows         metric.Int64Gauge
	DatasetCacheHits    metric.Int64Counter
	DatasetCacheMisses  metric.Int64Counter

	// Dashboard metrics
	DashboardQueriesTotal metric.Int64Counter
	DashboardFilteredRows metric.Int64Histogram
	ExportRowsTotal       metric.Int64Counter

	// System metrics
	SystemErrors metric.Int64Counter
}

// CreateDashboardMetrics creates the application-specific instruments on meter
func CreateDashboardMetrics(meter metric.Meter) (*DashboardMetrics, error) {
	var m DashboardMetrics
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.DatasetLoadsTotal, err = meter.Int64Counter(
		"dataset_loads_total",
		metric.WithDescription("Total number of source file loads"),
	); err != nil {
		return nil, err
	}

	if m.DatasetLoadDuration, err = meter.Float64Histogram(
		"dataset_load_duration_seconds",
		metric.WithDescription("Source file load duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.DatasetRows, err = meter.Int64Gauge(
		"dataset_rows",
		metric.WithDescription("Rows in the most recently loaded version of a source"),
	); err != nil {
		return nil, err
	}

	if m.DatasetCacheHits, err = meter.Int64Counter(
		"dataset_cache_hits_total",
		metric.WithDescription("Total number of dataset cache hits"),
	); err != nil {
		return nil, err
	}

	if m.DatasetCacheMisses, err = meter.Int64Counter(
		"dataset_cache_misses_total",
		metric.WithDescription("Total number of dataset cache misses"),
	); err != nil {
		return nil, err
	}

	if m.DashboardQueriesTotal, err = meter.Int64Counter(
		"dashboard_queries_total",
		metric.WithDescription("Total number of dashboard queries"),
	); err != nil {
		return nil, err
	}

	if m.DashboardFilteredRows, err = meter.Int64Histogram(
		"dashboard_filtered_rows",
		metric.WithDescription("Rows remaining after filters were applied"),
	); err != nil {
		return nil, err
	}

	if m.ExportRowsTotal, err = meter.Int64Counter(
		"export_rows_total",
		metric.WithDescription("Total number of rows written to exports"),
	); err != nil {
		return nil, err
	}

	if m.SystemErrors, err = meter.Int64Counter(
		"system_errors_total",
		metric.WithDescription("Total number of system errors"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordDatasetLoad records one source load
func RecordDatasetLoad(ctx context.Context, metrics *DashboardMetrics, source string, rows int, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("status", status),
	)

	metrics.DatasetLoadsTotal.Add(ctx, 1, attrs)
	metrics.DatasetLoadDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		metrics.SystemErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("component", "dataset"),
			attribute.String("error.type", fmt.Sprintf("%T", err)),
		))
		return
	}
	metrics.DatasetRows.Record(ctx, int64(rows), metric.WithAttributes(attribute.String("source", source)))

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("dataset.loaded", trace.WithAttributes(
			attribute.String("source", source),
			attribute.Int("rows", rows),
			attribute.Float64("duration_seconds", duration.Seconds()),
		))
	}
}

// RecordCacheLookup records a dataset cache hit or miss
func RecordCacheLookup(ctx context.Context, metrics *DashboardMetrics, cache string, hit bool) {
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("cache", cache))
	if hit {
		metrics.DatasetCacheHits.Add(ctx, 1, attrs)
		return
	}
	metrics.DatasetCacheMisses.Add(ctx, 1, attrs)
}

// RecordDashboardQuery records one dashboard query and its filtered row count
func RecordDashboardQuery(ctx context.Context, metrics *DashboardMetrics, view string, filteredRows int) {
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("view", view))
	metrics.DashboardQueriesTotal.Add(ctx, 1, attrs)
	metrics.DashboardFilteredRows.Record(ctx, int64(filteredRows), attrs)
}

// RecordExport records rows written by an export
func RecordExport(ctx context.Context, metrics *DashboardMetrics, view, format string, rows int) {
	if metrics == nil {
		return
	}
	metrics.ExportRowsTotal.Add(ctx, int64(rows), metric.WithAttributes(
		attribute.String("view", view),
		attribute.String("format", format),
	))
}

// RecordHTTPRequest records a completed HTTP request
func RecordHTTPRequest(ctx context.Context, metrics *DashboardMetrics, method, route string, status int, duration time.Duration) {
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	metrics.HTTPRequestsTotal.Add(ctx, 1, attrs)
	metrics.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}
