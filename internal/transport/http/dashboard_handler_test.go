package http

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"klothdash/internal/config"
	"klothdash/internal/dataset"
	apierrors "klothdash/internal/errors"
	"klothdash/internal/exporter"
	"klothdash/internal/presentation"
	"klothdash/internal/services"
	"klothdash/internal/shared/testutil"
	api "klothdash/pkg/contracts/api/v1"
	"klothdash/pkg/contracts/domain"
)

// MockDashboardService is a mock implementation of DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Snapshot(ctx context.Context, q api.SnapshotQuery) (presentation.SnapshotDashboard, error) {
	args := m.Called(q)
	return args.Get(0).(presentation.SnapshotDashboard), args.Error(1)
}

func (m *MockDashboardService) SnapshotOptions(ctx context.Context) (presentation.SnapshotOptions, error) {
	args := m.Called()
	return args.Get(0).(presentation.SnapshotOptions), args.Error(1)
}

func (m *MockDashboardService) SnapshotExport(ctx context.Context, q api.SnapshotQuery) (exporter.Table, error) {
	args := m.Called(q)
	return args.Get(0).(exporter.Table), args.Error(1)
}

func (m *MockDashboardService) Facts(ctx context.Context, q api.FactQuery) (presentation.FactDashboard, error) {
	args := m.Called(q)
	return args.Get(0).(presentation.FactDashboard), args.Error(1)
}

func (m *MockDashboardService) FactOptions(ctx context.Context) (presentation.FactOptions, error) {
	args := m.Called()
	return args.Get(0).(presentation.FactOptions), args.Error(1)
}

func (m *MockDashboardService) FactExport(ctx context.Context, q api.FactQuery) (exporter.Table, error) {
	args := m.Called(q)
	return args.Get(0).(exporter.Table), args.Error(1)
}

func (m *MockDashboardService) WriteExport(ctx context.Context, w io.Writer, view string, format exporter.Format, t exporter.Table, opts exporter.Options) error {
	args := m.Called(view, format, t, opts)
	if err := args.Error(0); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s,%d", format, t.Len())
	return err
}

func newTestRouter(t *testing.T, svc DashboardServiceInterface) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	h := NewDashboardHandler(svc, logger, apierrors.NewErrorHandler(logger, false))
	r := chi.NewRouter()
	r.Mount("/api", h.Routes(nil))
	return r
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestGetSnapshot_ParsesQuery(t *testing.T) {
	svc := new(MockDashboardService)
	min, max := 10.0, 500.0
	want := api.SnapshotQuery{
		States:        []string{"Johor", "Selangor"},
		Sites:         []string{"S1"},
		Name:          "mall",
		Address:       "jalan",
		AcceptableMin: &min,
		AcceptableMax: &max,
		TopN:          5,
		IncludeRows:   true,
	}
	svc.On("Snapshot", want).Return(presentation.SnapshotDashboard{RecordCount: 2, TopN: 5}, nil)

	rec := get(t, newTestRouter(t, svc),
		"/api/snapshot?state=Johor&state=Selangor&state=&site=S1&name=mall&address=jalan&acc_min=10&acc_max=500&top_n=5&rows=true")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(2), body["record_count"])
	svc.AssertExpectations(t)
}

func TestGetSnapshot_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"top_n below range", "top_n=2", "top_n"},
		{"top_n above range", "top_n=51", "top_n"},
		{"top_n not a number", "top_n=ten", "top_n"},
		{"acc_min not a number", "acc_min=abc", "acc_min"},
		{"rows not a bool", "rows=perhaps", "rows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			rec := get(t, newTestRouter(t, svc), "/api/snapshot?"+tt.query)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, apierrors.TypeValidation, body["type"])

			errs, ok := body["errors"].([]interface{})
			require.True(t, ok, "validation problems list the failing fields")
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.field, errs[0].(map[string]interface{})["field"])
			svc.AssertNotCalled(t, "Snapshot", mock.Anything)
		})
	}
}

func TestGetFacts_ParsesQuery(t *testing.T) {
	svc := new(MockDashboardService)
	wmin := 1.5
	want := api.FactQuery{
		Weeks:     []string{"Week 32"},
		Months:    []string{"August 2024"},
		Days:      []string{"Monday", "Friday"},
		Location:  "hub",
		From:      "2024-08-01",
		To:        "2024-08-31",
		WeightMin: &wmin,
	}
	svc.On("Facts", want).Return(presentation.FactDashboard{RecordCount: 3, TopN: 10}, nil)

	rec := get(t, newTestRouter(t, svc),
		"/api/facts?week=Week+32&month=August+2024&day=Monday&day=Friday&location=hub&from=2024-08-01&to=2024-08-31&weight_min=1.5")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), decode(t, rec)["record_count"])
	svc.AssertExpectations(t)
}

func TestGetFacts_BadDate(t *testing.T) {
	svc := new(MockDashboardService)
	rec := get(t, newTestRouter(t, svc), "/api/facts?from=01/08/2024")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.TypeValidation, decode(t, rec)["type"])
}

func TestLoadErrorsAreServiceUnavailable(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("SnapshotOptions").Return(presentation.SnapshotOptions{},
		fmt.Errorf("load snapshot: %w", &dataset.MissingSourceFileError{Path: "/data/aggregated_kloth_data.xlsx"}))
	svc.On("FactOptions").Return(presentation.FactOptions{},
		&dataset.MissingSheetError{Path: "/data/kloth_daily_facts.xlsx", Sheet: "Fact", Available: []string{"Sheet1"}})

	router := newTestRouter(t, svc)

	rec := get(t, router, "/api/snapshot/options")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, apierrors.TypeMissingSource, body["type"])
	assert.Equal(t, "/data/aggregated_kloth_data.xlsx", body["path"])

	rec = get(t, router, "/api/facts/options")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, apierrors.TypeMissingSheet, body["type"])
	assert.Equal(t, "Fact", body["sheet"])
}

func TestExportCSV(t *testing.T) {
	svc := new(MockDashboardService)
	table := exporter.SnapshotTable(testutil.SampleSnapshot())
	svc.On("SnapshotExport", api.SnapshotQuery{States: []string{"NSW"}}).Return(table, nil)
	svc.On("WriteExport", services.ViewSnapshot, exporter.FormatCSV, table, exporter.Options{BOM: true}).Return(nil)

	rec := get(t, newTestRouter(t, svc), "/api/snapshot/export.csv?state=NSW&bom=true&format=xlsx")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="kloth_snapshot_filtered.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "4", rec.Header().Get("X-Row-Count"))
	assert.Equal(t, "csv,4", rec.Body.String())
	svc.AssertExpectations(t)
}

func TestExportFormats(t *testing.T) {
	svc := new(MockDashboardService)
	table := exporter.FactTable(testutil.SampleFacts())
	svc.On("FactExport", api.FactQuery{}).Return(table, nil)
	svc.On("WriteExport", services.ViewFacts, exporter.FormatXLSX, table, exporter.Options{}).Return(nil)

	router := newTestRouter(t, svc)

	rec := get(t, router, "/api/facts/export?format=xlsx")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, exporter.FormatXLSX.ContentType(), rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "kloth_facts_filtered.xlsx")

	rec = get(t, router, "/api/facts/export?format=pdf")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.TypeValidation, decode(t, rec)["type"])
}

func TestExportFailureIsProblem(t *testing.T) {
	svc := new(MockDashboardService)
	table := exporter.SnapshotTable(nil)
	svc.On("SnapshotExport", api.SnapshotQuery{}).Return(table, nil)
	svc.On("WriteExport", services.ViewSnapshot, exporter.FormatCSV, table, exporter.Options{}).
		Return(apierrors.NewExportError("failed to write csv export", fmt.Errorf("disk full")))

	rec := get(t, newTestRouter(t, svc), "/api/snapshot/export")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, apierrors.TypeExportFailed, decode(t, rec)["type"])
}

// End to end over real workbooks
func TestDashboardRoutesWithService(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	sources := dataset.Sources{
		SnapshotPath: testutil.WriteSnapshotWorkbook(t, t.TempDir(), testutil.SampleSnapshot()),
		FactPath:     testutil.WriteFactWorkbook(t, t.TempDir(), domain.DefaultFactSheet, testutil.SampleFacts()),
	}
	store := dataset.NewStore(sources, dataset.NewLoader(logger, nil), nil, logger)
	svc := services.NewDashboardService(store, config.DashboardConfig{TopNDefault: 10}, nil, logger)
	router := newTestRouter(t, svc)

	rec := get(t, router, "/api/snapshot?state=NSW")
	require.Equal(t, http.StatusOK, rec.Code)
	var dash presentation.SnapshotDashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.Equal(t, 2, dash.RecordCount)
	metric, ok := dash.Metric("total_acceptable")
	require.True(t, ok)
	assert.Equal(t, 130.0, metric.Value)

	rec = get(t, router, "/api/facts/export.csv?day=Monday")
	require.Equal(t, http.StatusOK, rec.Code)
	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, exporter.FactHeaders(), records[0])
	assert.Equal(t, "NSW", records[1][len(records[1])-1])
}
