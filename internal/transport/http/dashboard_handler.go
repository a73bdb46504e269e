package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "klothdash/internal/errors"
	"klothdash/internal/exporter"
	"klothdash/internal/middleware"
	"klothdash/internal/services"
	api "klothdash/pkg/contracts/api/v1"
)

// DashboardHandler serves the snapshot and fact dashboards with RFC 7807 errors
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    *middleware.ValidationMiddleware
	params       *middleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		service:      service,
		validator:    middleware.NewValidationMiddleware(logger),
		params:       middleware.NewQueryParamValidator(logger, errorHandler),
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes. auditLog wraps the download routes
// and may be nil.
func (h *DashboardHandler) Routes(auditLog func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	exports := func(r chi.Router) {
		if auditLog != nil {
			r.Use(auditLog)
		}
	}

	r.Route("/snapshot", func(r chi.Router) {
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/", h.GetSnapshot)
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/options", h.GetSnapshotOptions)
		r.Group(func(r chi.Router) {
			exports(r)
			r.Get("/export.csv", h.exportSnapshot(exporter.FormatCSV))
			r.Get("/export", h.exportSnapshot(""))
		})
	})

	r.Route("/facts", func(r chi.Router) {
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/", h.GetFacts)
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/options", h.GetFactOptions)
		r.Group(func(r chi.Router) {
			exports(r)
			r.Get("/export.csv", h.exportFacts(exporter.FormatCSV))
			r.Get("/export", h.exportFacts(""))
		})
	})

	return r
}

// GetSnapshot handles GET /api/snapshot
func (h *DashboardHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseSnapshotQuery(w, r)
	if !ok {
		return
	}

	dash, err := h.service.Snapshot(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, dash)
}

// GetSnapshotOptions handles GET /api/snapshot/options
func (h *DashboardHandler) GetSnapshotOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.SnapshotOptions(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, opts)
}

// GetFacts handles GET /api/facts
func (h *DashboardHandler) GetFacts(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseFactQuery(w, r)
	if !ok {
		return
	}

	dash, err := h.service.Facts(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, dash)
}

// GetFactOptions handles GET /api/facts/options
func (h *DashboardHandler) GetFactOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.FactOptions(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, opts)
}

// exportSnapshot handles the snapshot downloads. A blank fixed format
// reads the format query parameter.
func (h *DashboardHandler) exportSnapshot(fixed exporter.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := h.parseSnapshotQuery(w, r)
		if !ok {
			return
		}
		format, opts, ok := h.parseExport(w, r, fixed)
		if !ok {
			return
		}

		table, err := h.service.SnapshotExport(r.Context(), q)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		h.writeDownload(w, r, services.ViewSnapshot, format, table, opts)
	}
}

// exportFacts handles the fact downloads
func (h *DashboardHandler) exportFacts(fixed exporter.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := h.parseFactQuery(w, r)
		if !ok {
			return
		}
		format, opts, ok := h.parseExport(w, r, fixed)
		if !ok {
			return
		}

		table, err := h.service.FactExport(r.Context(), q)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		h.writeDownload(w, r, services.ViewFacts, format, table, opts)
	}
}

// writeDownload encodes the whole file before answering so that a failed
// export still gets a problem response
func (h *DashboardHandler) writeDownload(w http.ResponseWriter, r *http.Request, view string, format exporter.Format, table exporter.Table, opts exporter.Options) {
	var buf bytes.Buffer
	if err := h.service.WriteExport(r.Context(), &buf, view, format, table, opts); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(table)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Row-Count", strconv.Itoa(table.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "download interrupted",
			slog.String("view", view),
			slog.String("error", err.Error()))
	}
}

func (h *DashboardHandler) parseSnapshotQuery(w http.ResponseWriter, r *http.Request) (api.SnapshotQuery, bool) {
	values := r.URL.Query()
	q := api.SnapshotQuery{
		States:  multi(values[api.ParamState]),
		Sites:   multi(values[api.ParamSite]),
		Name:    values.Get(api.ParamName),
		Address: values.Get(api.ParamAddress),
	}

	var ok bool
	if q.AcceptableMin, ok = h.params.ValidateFloat(w, r, api.ParamAcceptableMin); !ok {
		return q, false
	}
	if q.AcceptableMax, ok = h.params.ValidateFloat(w, r, api.ParamAcceptableMax); !ok {
		return q, false
	}
	if q.TopN, ok = h.params.ValidateInt(w, r, api.ParamTopN, math.MinInt32, math.MaxInt32, 0); !ok {
		return q, false
	}
	if q.IncludeRows, ok = h.params.ValidateBool(w, r, api.ParamRows, false); !ok {
		return q, false
	}

	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return q, false
	}
	return q, true
}

func (h *DashboardHandler) parseFactQuery(w http.ResponseWriter, r *http.Request) (api.FactQuery, bool) {
	values := r.URL.Query()
	q := api.FactQuery{
		States:   multi(values[api.ParamState]),
		Sites:    multi(values[api.ParamSite]),
		Weeks:    multi(values[api.ParamWeek]),
		Months:   multi(values[api.ParamMonth]),
		Days:     multi(values[api.ParamDay]),
		Location: values.Get(api.ParamLocation),
		Address:  values.Get(api.ParamAddress),
		From:     strings.TrimSpace(values.Get(api.ParamFrom)),
		To:       strings.TrimSpace(values.Get(api.ParamTo)),
	}

	var ok bool
	if q.WeightMin, ok = h.params.ValidateFloat(w, r, api.ParamWeightMin); !ok {
		return q, false
	}
	if q.WeightMax, ok = h.params.ValidateFloat(w, r, api.ParamWeightMax); !ok {
		return q, false
	}
	if q.TopN, ok = h.params.ValidateInt(w, r, api.ParamTopN, math.MinInt32, math.MaxInt32, 0); !ok {
		return q, false
	}
	if q.IncludeRows, ok = h.params.ValidateBool(w, r, api.ParamRows, false); !ok {
		return q, false
	}

	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return q, false
	}
	return q, true
}

func (h *DashboardHandler) parseExport(w http.ResponseWriter, r *http.Request, fixed exporter.Format) (exporter.Format, exporter.Options, bool) {
	req := api.ExportRequest{Format: string(fixed)}
	if fixed == "" {
		req.Format = r.URL.Query().Get(api.ParamFormat)
	}

	var ok bool
	if req.BOM, ok = h.params.ValidateBool(w, r, api.ParamBOM, false); !ok {
		return "", exporter.Options{}, false
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return "", exporter.Options{}, false
	}

	format, err := exporter.ParseFormat(req.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(api.ParamFormat, err.Error()))
		return "", exporter.Options{}, false
	}
	return format, exporter.Options{BOM: req.BOM}, true
}

// multi returns the non-blank values of a repeated parameter
func multi(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
