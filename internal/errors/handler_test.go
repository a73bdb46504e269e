package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klothdash/internal/aggregate"
	"klothdash/internal/dataset"
	"klothdash/internal/shared/testutil"
)

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "missing source file",
			err:        fmt.Errorf("load snapshot: %w", &dataset.MissingSourceFileError{Path: "/data/a.xlsx"}),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeMissingSource,
		},
		{
			name:       "missing sheet",
			err:        &dataset.MissingSheetError{Path: "/data/f.xlsx", Sheet: "Fact", Available: []string{"Other"}},
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeMissingSheet,
		},
		{
			name:       "invalid top-n",
			err:        fmt.Errorf("%w: got 0", aggregate.ErrInvalidTopN),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "validation api error",
			err:        ErrValidation("top_n", "top_n must be at most 50"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "app validation error",
			err:        NewAppError(ErrTypeValidation, "bad date", nil),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "app data source error",
			err:        NewAppError(ErrTypeDataSource, "cannot read", fmt.Errorf("io")),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeServiceDown,
		},
		{
			name:       "plain error mentioning not found",
			err:        fmt.Errorf("site S9 not found"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
		{
			name:       "plain error mentioning rate limit",
			err:        fmt.Errorf("upstream rate limit"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
		{
			name:       "export failure",
			err:        NewExportError("failed to write xlsx export", fmt.Errorf("disk full")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeExportFailed,
		},
		{
			name:       "deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "generic",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			req := httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
			rec := httptest.NewRecorder()
			handler.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/snapshot", body["instance"])
			assert.NotContains(t, body, "stack")
		})
	}
}

func TestErrorHandler_MissingSheetExtensions(t *testing.T) {
	handler := NewErrorHandler(slog.Default(), false)
	req := httptest.NewRequest(http.MethodGet, "/api/facts", nil)

	problem := handler.ErrorToProblem(&dataset.MissingSheetError{
		Path:      "/data/f.xlsx",
		Sheet:     "Fact",
		Available: []string{"Summary"},
	}, req)

	assert.Equal(t, "Fact", problem.Extensions["sheet"])
	assert.Equal(t, []string{"Summary"}, problem.Extensions["available_sheets"])
}

func TestErrorHandler_ValidationErrorsExtension(t *testing.T) {
	handler := NewErrorHandler(nil, false)
	req := httptest.NewRequest(http.MethodGet, "/api/snapshot?top_n=99", nil)
	rec := httptest.NewRecorder()

	handler.HandleError(rec, req, NewValidationErrors([]ValidationError{
		{Field: "top_n", Message: "top_n must be at most 50"},
	}))

	body := decodeProblem(t, rec)
	errs, ok := body["errors"].([]interface{})
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "top_n", errs[0].(map[string]interface{})["field"])
	assert.Equal(t, "VALIDATION_FAILED", body["error_code"])
}

func TestErrorHandler_NilError(t *testing.T) {
	handler := NewErrorHandler(nil, false)
	rec := httptest.NewRecorder()
	handler.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestErrorHandler_TraceID(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	req := httptest.NewRequest(http.MethodGet, "/api/facts", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-123"))
	rec := httptest.NewRecorder()
	handler.HandleError(rec, req, fmt.Errorf("boom"))

	body := decodeProblem(t, rec)
	assert.Equal(t, "req-123", body["trace_id"])
	assert.Contains(t, body, "stack")
	assert.True(t, logs.ContainsAttr("request_id", "req-123"))
	testutil.AssertLogContains(t, logs, slog.LevelError, "request failed")
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	router := RecoveryMiddleware(handler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeInternal, body["type"])
	assert.NotContains(t, body, "panic")
	assert.True(t, logs.ContainsMessage("panic recovered"))
}

func TestErrorHandler_NotFoundAndMethod(t *testing.T) {
	handler := NewErrorHandler(nil, false)

	rec := httptest.NewRecorder()
	handler.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, rec)["type"])

	rec = httptest.NewRecorder()
	handler.MethodNotAllowed(rec, httptest.NewRequest(http.MethodPost, "/api/snapshot", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, decodeProblem(t, rec)["detail"], "POST")
}
