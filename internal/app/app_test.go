package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klothdash/internal/config"
	"klothdash/internal/dataset"
	"klothdash/internal/shared/testutil"
	api "klothdash/pkg/contracts/api/v1"
	"klothdash/pkg/contracts/domain"
)

// testConfig returns a configuration reading fixture workbooks from a temp dir
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Security.RateLimit.Enabled = false
	cfg.Logging.FilePath = ""
	cfg.Sources.DataDir = dir
	cfg.Sources.SnapshotPath = testutil.WriteSnapshotWorkbook(t, dir, testutil.SampleSnapshot())
	cfg.Sources.FactPath = testutil.WriteFactWorkbook(t, dir, domain.DefaultFactSheet, testutil.SampleFacts())
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	application, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = application.OTelProviders.Shutdown(context.Background())
	})
	return application
}

func serve(application *Application, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, req)
	return rec
}

func TestNewWiresComponents(t *testing.T) {
	cfg := testConfig(t)
	application := newTestApp(t, cfg)

	assert.NotNil(t, application.Router)
	assert.NotNil(t, application.Server)
	assert.NotNil(t, application.Store)
	assert.NotNil(t, application.DashboardService)
	assert.NotNil(t, application.HealthService)
	assert.NotNil(t, application.Metrics)
	assert.NotNil(t, application.OTelProviders.PrometheusHTTP)

	assert.Equal(t, "127.0.0.1:0", application.Server.Addr)
	assert.Equal(t, cfg.Server.ReadTimeout, application.Server.ReadTimeout)
	assert.Equal(t, cfg.Sources.SnapshotPath, application.Paths.SnapshotFile)
	assert.Equal(t, domain.DefaultFactSheet, application.Store.Sources().FactSheet)
}

func TestRoutes(t *testing.T) {
	application := newTestApp(t, testConfig(t))

	tests := []struct {
		name        string
		method      string
		target      string
		wantStatus  int
		contentType string
	}{
		{"health", http.MethodGet, "/api/health", http.StatusOK, "application/json"},
		{"liveness", http.MethodGet, "/api/health/live", http.StatusOK, "application/json"},
		{"readiness", http.MethodGet, "/api/health/ready", http.StatusOK, "application/json"},
		{"version", http.MethodGet, "/api/version", http.StatusOK, "application/json"},
		{"snapshot", http.MethodGet, "/api/snapshot?state=NSW", http.StatusOK, "application/json"},
		{"snapshot options", http.MethodGet, "/api/snapshot/options", http.StatusOK, "application/json"},
		{"facts", http.MethodGet, "/api/facts?day=Monday", http.StatusOK, "application/json"},
		{"fact options", http.MethodGet, "/api/facts/options", http.StatusOK, "application/json"},
		{"snapshot csv", http.MethodGet, "/api/snapshot/export.csv", http.StatusOK, "text/csv"},
		{"facts csv", http.MethodGet, "/api/facts/export.csv", http.StatusOK, "text/csv"},
		{"validation", http.MethodGet, "/api/snapshot?top_n=1", http.StatusBadRequest, "application/json"},
		{"unknown route", http.MethodGet, "/api/nope", http.StatusNotFound, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(application, tt.method, tt.target, nil)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), tt.contentType)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestMiddlewareChain(t *testing.T) {
	application := newTestApp(t, testConfig(t))

	t.Run("security headers", func(t *testing.T) {
		rec := serve(application, http.MethodGet, "/api/health", nil)
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	})

	t.Run("request id is echoed", func(t *testing.T) {
		rec := serve(application, http.MethodGet, "/api/health", http.Header{"X-Request-Id": {"req-123"}})
		assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	})

	t.Run("cors preflight", func(t *testing.T) {
		rec := serve(application, http.MethodOptions, "/api/snapshot", http.Header{
			"Origin":                        {"http://localhost:8080"},
			"Access-Control-Request-Method": {"GET"},
		})
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://localhost:8080", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("write methods are rejected", func(t *testing.T) {
		rec := serve(application, http.MethodPost, "/api/snapshot", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		application := newTestApp(t, testConfig(t))
		serve(application, http.MethodGet, "/api/snapshot", nil)

		rec := serve(application, http.MethodGet, "/metrics", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "http_requests_total")
		assert.Contains(t, body, "dashboard_queries_total")
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Telemetry.EnableMetrics = false
		application := newTestApp(t, cfg)

		rec := serve(application, http.MethodGet, "/metrics", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	application := newTestApp(t, cfg)

	assert.Equal(t, http.StatusOK, serve(application, http.MethodGet, "/api/health", nil).Code)
	rec := serve(application, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// scrapes bypass the limiter
	assert.Equal(t, http.StatusOK, serve(application, http.MethodGet, "/metrics", nil).Code)
}

func TestMissingSourceAtRequestTime(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sources.FactPath = filepath.Join(cfg.Sources.DataDir, "absent.xlsx")
	application := newTestApp(t, cfg)

	rec := serve(application, http.MethodGet, "/api/facts", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(application, http.MethodGet, "/api/snapshot", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "the snapshot does not depend on the fact file")

	rec = serve(application, http.MethodGet, "/api/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStartFailsOnMissingSource(t *testing.T) {
	cfg := testConfig(t)
	missing := filepath.Join(cfg.Sources.DataDir, "missing.xlsx")
	cfg.Sources.SnapshotPath = missing
	application := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := application.Start(ctx, cancel)
	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrMissingSourceFile)
	assert.Contains(t, err.Error(), missing)
	assert.Nil(t, application.listener, "nothing listens after a failed load")
	assert.ElementsMatch(t, []string{"aggregated.xlsx", "facts.xlsx"}, application.availableWorkbooks())
}

func TestStartAndStop(t *testing.T) {
	application := newTestApp(t, testConfig(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, application.Start(ctx, cancel))

	resp, err := http.Get(fmt.Sprintf("http://%s/api/health/ready", application.Addr()))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health api.HealthResponse
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Len(t, health.Sources, 2)

	require.NoError(t, application.Stop(context.Background()))
	_, err = http.Get(fmt.Sprintf("http://%s/api/health", application.Addr()))
	assert.Error(t, err)
}
