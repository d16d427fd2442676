package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// DashboardMetrics holds the HTTP and dashboard instruments
type DashboardMetrics struct {
	// HTTP
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Dashboard
	Computations    metric.Int64Counter
	ComputeDuration metric.Float64Histogram
	DatasetRecords  metric.Int64Gauge
	ChartRenders    metric.Int64Counter
	Exports         metric.Int64Counter
	WebSocketConns  metric.Int64UpDownCounter
}

// NoopDashboardMetrics returns instruments that record nothing
func NoopDashboardMetrics() *DashboardMetrics {
	m, _ := NewDashboardMetrics(noop.NewMeterProvider().Meter(MeterName))
	return m
}

// NewDashboardMetrics creates the application instruments on meter
func NewDashboardMetrics(meter metric.Meter) (*DashboardMetrics, error) {
	m := &DashboardMetrics{}
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
		metric.WithDescription("Number of in-flight HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.Computations, err = meter.Int64Counter(
		"dashboard_computations_total",
		metric.WithDescription("Number of filter and aggregate passes"),
	); err != nil {
		return nil, err
	}
	if m.ComputeDuration, err = meter.Float64Histogram(
		"dashboard_compute_duration_seconds",
		metric.WithDescription("Duration of one filter and aggregate pass"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.DatasetRecords, err = meter.Int64Gauge(
		"dataset_records",
		metric.WithDescription("Number of daily records loaded"),
	); err != nil {
		return nil, err
	}
	if m.ChartRenders, err = meter.Int64Counter(
		"chart_renders_total",
		metric.WithDescription("Number of SVG charts rendered"),
	); err != nil {
		return nil, err
	}
	if m.Exports, err = meter.Int64Counter(
		"exports_total",
		metric.WithDescription("Number of CSV and XLSX exports written"),
	); err != nil {
		return nil, err
	}
	if m.WebSocketConns, err = meter.Int64UpDownCounter(
		"websocket_connections",
		metric.WithDescription("Number of open dashboard WebSocket connections"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordComputation records one dashboard pass over days filtered records
func (m *DashboardMetrics) RecordComputation(ctx context.Context, source string, days int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.Bool("empty", days == 0),
	)
	m.Computations.Add(ctx, 1, attrs)
	m.ComputeDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordChart counts a rendered chart
func (m *DashboardMetrics) RecordChart(ctx context.Context, chart string) {
	if m == nil {
		return
	}
	m.ChartRenders.Add(ctx, 1, metric.WithAttributes(attribute.String("chart", chart)))
}

// RecordExport counts an export by table and format
func (m *DashboardMetrics) RecordExport(ctx context.Context, table, format string) {
	if m == nil {
		return
	}
	m.Exports.Add(ctx, 1, metric.WithAttributes(
		attribute.String("table", table),
		attribute.String("format", format),
	))
}

// RecordWebSocketConn moves the open connection gauge by delta
func (m *DashboardMetrics) RecordWebSocketConn(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.WebSocketConns.Add(ctx, delta)
}

// RuntimeStats is a snapshot of Go runtime figures for health reports
type RuntimeStats struct {
	Goroutines    int     `json:"goroutines"`
	HeapAllocMB   float64 `json:"heap_alloc_mb"`
	SysMB         float64 `json:"sys_mb"`
	NumGC         uint32  `json:"num_gc"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// ReadRuntimeStats samples the runtime
func ReadRuntimeStats(start time.Time) RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return RuntimeStats{
		Goroutines:    runtime.NumGoroutine(),
		HeapAllocMB:   float64(mem.HeapAlloc) / (1 << 20),
		SysMB:         float64(mem.Sys) / (1 << 20),
		NumGC:         mem.NumGC,
		UptimeSeconds: time.Since(start).Seconds(),
	}
}

// RegisterRuntimeMetrics exports runtime gauges that are sampled at scrape time
func RegisterRuntimeMetrics(meter metric.Meter, start time.Time) error {
	goroutines, err := meter.Int64ObservableGauge(
		"system_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return err
	}
	heap, err := meter.Int64ObservableGauge(
		"system_memory_usage_bytes",
		metric.WithDescription("Heap memory in use"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return err
	}
	uptime, err := meter.Float64ObservableGauge(
		"system_process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		o.ObserveInt64(goroutines, int64(runtime.NumGoroutine()))
		o.ObserveInt64(heap, int64(mem.HeapAlloc))
		o.ObserveFloat64(uptime, time.Since(start).Seconds())
		return nil
	}, goroutines, heap, uptime)
	return err
}
