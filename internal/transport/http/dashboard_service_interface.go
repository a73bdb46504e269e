package http

import (
	"context"
	"io"

	"klothdash/internal/exporter"
	"klothdash/internal/presentation"
	api "klothdash/pkg/contracts/api/v1"
)

// DashboardServiceInterface defines the dashboard operations served over HTTP
type DashboardServiceInterface interface {
	Snapshot(ctx context.Context, q api.SnapshotQuery) (presentation.SnapshotDashboard, error)
	SnapshotOptions(ctx context.Context) (presentation.SnapshotOptions, error)
	SnapshotExport(ctx context.Context, q api.SnapshotQuery) (exporter.Table, error)

	Facts(ctx context.Context, q api.FactQuery) (presentation.FactDashboard, error)
	FactOptions(ctx context.Context) (presentation.FactOptions, error)
	FactExport(ctx context.Context, q api.FactQuery) (exporter.Table, error)

	WriteExport(ctx context.Context, w io.Writer, view string, format exporter.Format, t exporter.Table, opts exporter.Options) error
}
