package infrastructure

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestInitializeOTel_MetricsExposition(t *testing.T) {
	cfg := &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: "test",
		Environment:    "test",
		TraceExporter:  "none",
		EnableMetrics:  true,
		SampleRatio:    1,
	}
	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { providers.Shutdown(context.Background()) })

	metrics, err := NewDashboardMetrics(providers.Meter)
	require.NoError(t, err)
	require.NoError(t, RegisterRuntimeMetrics(providers.Meter, time.Now()))

	ctx := context.Background()
	metrics.RecordComputation(ctx, "http", 31, 2*time.Millisecond)
	metrics.RecordChart(ctx, "monthly")
	metrics.RecordExport(ctx, "seasons", "csv")
	metrics.DatasetRecords.Record(ctx, 731)

	body := scrape(t, providers.MetricsHandler())
	assert.Contains(t, body, "dashboard_computations_total")
	assert.Contains(t, body, "dashboard_compute_duration_seconds")
	assert.Contains(t, body, "chart_renders_total")
	assert.Contains(t, body, "exports_total")
	assert.Contains(t, body, "dataset_records")
	assert.Contains(t, body, "system_goroutines")
}

func TestInitializeOTel_Disabled(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{TraceExporter: "none"}, quietLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter, "a no-op meter is always available")
	assert.NotNil(t, providers.Tracer)

	rec := httptest.NewRecorder()
	providers.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_StdoutTracing(t *testing.T) {
	var spans bytes.Buffer
	cfg := &OTelConfig{
		ServiceName:   ServiceName,
		TraceExporter: "stdout",
		EnableTracing: true,
		SampleRatio:   1,
		TraceWriter:   &spans,
	}
	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)

	ctx, span := providers.Tracer.Start(context.Background(), "dashboard.compute")
	traceID := TraceIDFromContext(ctx)
	assert.Len(t, traceID, 32)
	assert.Equal(t, traceID, GetTraceID(ctx), "span trace ID is used when none is set")
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
	assert.Contains(t, spans.String(), "dashboard.compute")
}

func TestInitializeOTel_UnknownExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{EnableTracing: true, TraceExporter: "zipkin"}, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")
}

func TestNoopDashboardMetrics(t *testing.T) {
	m := NoopDashboardMetrics()
	require.NotNil(t, m)
	assert.NotPanics(t, func() {
		m.RecordComputation(context.Background(), "ws", 0, time.Millisecond)
	})

	var nilMetrics *DashboardMetrics
	assert.NotPanics(t, func() { nilMetrics.RecordChart(context.Background(), "seasons") })
}

func TestReadRuntimeStats(t *testing.T) {
	stats := ReadRuntimeStats(time.Now().Add(-time.Second))
	assert.Positive(t, stats.Goroutines)
	assert.GreaterOrEqual(t, stats.UptimeSeconds, 1.0)
}
