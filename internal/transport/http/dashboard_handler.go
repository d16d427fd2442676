package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"bikepulse/internal/charts"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/exporter"
	"bikepulse/internal/services"
	"bikepulse/pkg/contracts/domain"
)

// maxChartSize bounds the width and height query parameters of chart requests
const maxChartSize = 2000

// DashboardHandler serves the dashboard JSON, chart and export endpoints
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes, mounted under /api
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/dataset", h.GetDataset)
	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/dashboard", h.GetDashboard)

	r.Get("/charts/{chart}.svg", h.GetChart)

	r.Get("/export/dashboard.xlsx", h.ExportWorkbook)
	r.Get("/export/{table}.csv", h.ExportCSV)

	return r
}

// GetDataset handles GET /api/dataset
func (h *DashboardHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Info(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

// GetDashboard handles GET /api/dashboard?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	dash, err := h.service.Compute(r.Context(), rng, services.SourceHTTP)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dashboard served",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("start", rng.StartString()),
		slog.String("end", rng.EndString()),
		slog.Int("days", dash.Summary.Days))

	render.JSON(w, r, dash)
}

// GetChart handles GET /api/charts/{chart}.svg
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "chart")

	rng, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	opts, err := chartOptions(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.service.RenderChart(r.Context(), name, rng, opts, &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", charts.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ExportCSV handles GET /api/export/{table}.csv
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	rng, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportCSV(r.Context(), table, rng, &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	writeAttachment(w, "text/csv; charset=utf-8", exportName(table, rng, "csv"), buf.Bytes())
}

// ExportWorkbook handles GET /api/export/dashboard.xlsx
func (h *DashboardHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportWorkbook(r.Context(), rng, &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	writeAttachment(w, exporter.XLSXContentType, exportName("dashboard", rng, "xlsx"), buf.Bytes())
}

// parseRange reads the start and end query parameters, responding with a
// 400 problem when either is malformed
func (h *DashboardHandler) parseRange(w http.ResponseWriter, r *http.Request) (domain.DateRange, bool) {
	q := r.URL.Query()
	rng, err := h.service.ParseRange(q.Get("start"), q.Get("end"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return domain.DateRange{}, false
	}
	return rng, true
}

func chartOptions(r *http.Request) (charts.Options, error) {
	var opts charts.Options
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"width", &opts.Width},
		{"height", &opts.Height},
	} {
		raw := r.URL.Query().Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxChartSize {
			return charts.Options{}, apierrors.ErrValidation(p.name,
				fmt.Sprintf("must be an integer between 1 and %d", maxChartSize))
		}
		*p.dst = v
	}
	return opts, nil
}

func exportName(table string, rng domain.DateRange, ext string) string {
	return fmt.Sprintf("bike_sharing_%s_%s_%s.%s", table, rng.StartString(), rng.EndString(), ext)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
