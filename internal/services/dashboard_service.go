package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bikepulse/internal/analytics"
	"bikepulse/internal/charts"
	"bikepulse/internal/dataset"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/exporter"
	"bikepulse/internal/infrastructure"
	"bikepulse/pkg/contracts/domain"
)

// Computation sources reported on the dashboard_computations_total metric
const (
	SourceHTTP      = "http"
	SourceWebSocket = "websocket"
	SourceCLI       = "cli"
)

// DashboardService runs the filter and aggregators over the loaded dataset.
// Every call recomputes from scratch; nothing is cached.
type DashboardService struct {
	data     *dataset.Dataset
	metrics  *infrastructure.DashboardMetrics
	csv      *exporter.CSVWriter
	workbook *exporter.WorkbookWriter
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewDashboardService creates a dashboard service over data. metrics may be
// nil.
func NewDashboardService(data *dataset.Dataset, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = infrastructure.NoopDashboardMetrics()
	}
	logger = logger.With(slog.String("service", "dashboard"))

	if data != nil {
		metrics.DatasetRecords.Record(context.Background(), int64(data.Len()))
		logger.Info("DashboardService initialized",
			slog.String("source", data.Source()),
			slog.Int("records", data.Len()))
	}

	return &DashboardService{
		data:     data,
		metrics:  metrics,
		csv:      exporter.NewCSVWriter(nil, logger),
		workbook: exporter.NewWorkbookWriter(logger),
		tracer:   otel.Tracer(infrastructure.ServiceName + ".dashboard"),
		logger:   logger,
	}
}

// Ready reports whether a dataset is attached
func (s *DashboardService) Ready() bool {
	return s.data != nil
}

// Info describes the loaded dataset
func (s *DashboardService) Info(ctx context.Context) (domain.DatasetInfo, error) {
	if s.data == nil {
		return domain.DatasetInfo{}, apierrors.NewStorageError("dataset unavailable", ErrNoDataset)
	}
	return s.data.Info(), nil
}

// ParseRange parses optional YYYY-MM-DD bounds. A blank bound defaults to the
// corresponding dataset bound. start after end is accepted and yields an
// empty dashboard.
func (s *DashboardService) ParseRange(start, end string) (domain.DateRange, error) {
	var bounds domain.DateRange
	if s.data != nil {
		bounds = s.data.Bounds()
	}

	rng := bounds
	if v := strings.TrimSpace(start); v != "" {
		t, err := domain.ParseDay(v)
		if err != nil {
			return domain.DateRange{}, apierrors.InvalidDate("start", v)
		}
		rng.Start = t
	}
	if v := strings.TrimSpace(end); v != "" {
		t, err := domain.ParseDay(v)
		if err != nil {
			return domain.DateRange{}, apierrors.InvalidDate("end", v)
		}
		rng.End = t
	}
	return rng, nil
}

// Compute filters the dataset to rng and runs every aggregator
func (s *DashboardService) Compute(ctx context.Context, rng domain.DateRange, source string) (domain.Dashboard, error) {
	if s.data == nil {
		return domain.Dashboard{}, apierrors.NewStorageError("dataset unavailable", ErrNoDataset)
	}
	if err := ctx.Err(); err != nil {
		return domain.Dashboard{}, err
	}

	ctx, span := s.tracer.Start(ctx, "dashboard.compute", trace.WithAttributes(
		attribute.String("range.start", rng.StartString()),
		attribute.String("range.end", rng.EndString()),
		attribute.String("source", source),
	))
	defer span.End()

	start := time.Now()
	dash := analytics.Compute(s.data.Records(), rng, s.data.Bounds())
	elapsed := time.Since(start)

	s.metrics.RecordComputation(ctx, source, dash.Summary.Days, elapsed)
	span.SetAttributes(attribute.Int("days", dash.Summary.Days))

	s.logger.DebugContext(ctx, "dashboard computed",
		slog.String("start", rng.StartString()),
		slog.String("end", rng.EndString()),
		slog.String("source", source),
		slog.Int("days", dash.Summary.Days),
		slog.Int64("total", dash.Summary.TotalRentals),
		slog.Duration("duration", elapsed))

	return dash, nil
}

// Records returns the dataset rows inside rng
func (s *DashboardService) Records(ctx context.Context, rng domain.DateRange) ([]domain.DailyRecord, error) {
	if s.data == nil {
		return nil, apierrors.NewStorageError("dataset unavailable", ErrNoDataset)
	}
	return analytics.Filter(s.data.Records(), rng), nil
}

// RenderChart computes the dashboard for rng and writes the named chart as SVG
func (s *DashboardService) RenderChart(ctx context.Context, name string, rng domain.DateRange, opts charts.Options, w io.Writer) error {
	if !isChart(name) {
		return apierrors.NewNotFoundError("chart "+name).
			WithContext("chart", name).
			WithContext("available", charts.Names)
	}

	dash, err := s.Compute(ctx, rng, SourceHTTP)
	if err != nil {
		return err
	}

	if err := charts.Render(name, dash, opts, w); err != nil {
		if errors.Is(err, charts.ErrUnknownChart) {
			return apierrors.NewNotFoundError("chart " + name)
		}
		infrastructure.RecordError(ctx, err)
		return apierrors.NewRenderError(fmt.Sprintf("failed to render %s chart", name), err)
	}

	s.metrics.RecordChart(ctx, name)
	return nil
}

// ExportCSV writes the named table for rng as CSV
func (s *DashboardService) ExportCSV(ctx context.Context, table string, rng domain.DateRange, w io.Writer) error {
	dash, err := s.Compute(ctx, rng, SourceHTTP)
	if err != nil {
		return err
	}

	var records []domain.DailyRecord
	if strings.EqualFold(table, exporter.TableRecords) {
		records = analytics.Filter(s.data.Records(), rng)
	}

	t, err := exporter.TableFor(table, dash, records)
	if err != nil {
		if errors.Is(err, exporter.ErrUnknownTable) {
			return apierrors.NewNotFoundError("table "+table).
				WithContext("table", table).
				WithContext("available", exporter.TableNames)
		}
		return err
	}

	if err := s.csv.Write(w, t, exporter.WriteOptions{BOMPrefix: true}); err != nil {
		return apierrors.NewRenderError("failed to write csv export", err)
	}
	s.metrics.RecordExport(ctx, t.Name, "csv")
	return nil
}

// ExportWorkbook writes every table for rng to an XLSX workbook
func (s *DashboardService) ExportWorkbook(ctx context.Context, rng domain.DateRange, w io.Writer) error {
	dash, err := s.Compute(ctx, rng, SourceHTTP)
	if err != nil {
		return err
	}

	records := analytics.Filter(s.data.Records(), rng)
	if err := s.workbook.Write(w, dash, records); err != nil {
		return apierrors.NewRenderError("failed to write workbook export", err)
	}
	s.metrics.RecordExport(ctx, "dashboard", "xlsx")
	return nil
}

func isChart(name string) bool {
	for _, n := range charts.Names {
		if n == name {
			return true
		}
	}
	return false
}
